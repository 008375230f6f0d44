package domain

import (
	"time"

	"github.com/skywardair/customer-analytics/times"
)

// RFM segment labels, in decision-rule order.
const (
	SegmentChampions = "Champions"
	SegmentLoyal     = "Loyal"
	SegmentAtRisk    = "At Risk"
	SegmentDormant   = "Dormant"
	SegmentPotential = "Potential"
)

// Segments lists all segment labels.
var Segments = []string{
	SegmentChampions,
	SegmentLoyal,
	SegmentAtRisk,
	SegmentDormant,
	SegmentPotential,
}

// FlightActivityRecord is one row per customer per calendar period.
// Immutable once ingested.
type FlightActivityRecord struct {
	LoyaltyNumber int64   `json:"loyalty_number"`
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	TotalFlights  int64   `json:"total_flights"`
	Distance      float64 `json:"distance"`
}

// ActivityDate returns the first day of the record's period.
func (r FlightActivityRecord) ActivityDate() time.Time {
	return times.MonthStart(r.Year, r.Month)
}

// LoyaltyHistoryRecord is one row per customer. The cancellation fields are
// nil for active members.
type LoyaltyHistoryRecord struct {
	LoyaltyNumber     int64   `json:"loyalty_number"`
	Province          string  `json:"province"`
	City              string  `json:"city"`
	Gender            string  `json:"gender"`
	Education         string  `json:"education"`
	LoyaltyCard       string  `json:"loyalty_card"`
	CLV               float64 `json:"clv"`
	EnrollmentYear    int     `json:"enrollment_year"`
	EnrollmentMonth   int     `json:"enrollment_month"`
	CancellationYear  *int    `json:"cancellation_year"`
	CancellationMonth *int    `json:"cancellation_month"`
}

// IsCancelled reports whether the membership has a cancellation date.
func (r LoyaltyHistoryRecord) IsCancelled() bool {
	return r.CancellationYear != nil && r.CancellationMonth != nil
}

// EnrollmentDate returns the first day of the enrollment period.
func (r LoyaltyHistoryRecord) EnrollmentDate() time.Time {
	return times.MonthStart(r.EnrollmentYear, r.EnrollmentMonth)
}

// CancellationDate returns the first day of the cancellation period. Valid
// only when IsCancelled is true.
func (r LoyaltyHistoryRecord) CancellationDate() time.Time {
	return times.MonthStart(*r.CancellationYear, *r.CancellationMonth)
}

// CustomerFeatureRow is the derived feature-table row, one per customer
// present in the loyalty history set.
type CustomerFeatureRow struct {
	LoyaltyNumber int64   `json:"loyalty_number" bigquery:"loyalty_number"`
	Province      string  `json:"province" bigquery:"province"`
	City          string  `json:"city" bigquery:"city"`
	Gender        string  `json:"gender" bigquery:"gender"`
	Education     string  `json:"education" bigquery:"education"`
	LoyaltyCard   string  `json:"loyalty_card" bigquery:"loyalty_card"`
	CLV           float64 `json:"clv" bigquery:"clv"`
	IsCancelled   bool    `json:"is_cancelled" bigquery:"is_cancelled"`
	TenureMonths  int     `json:"tenure_months" bigquery:"tenure_months"`
	Recency       int     `json:"recency" bigquery:"recency"`
	Frequency     int64   `json:"frequency" bigquery:"frequency"`
	Monetary      float64 `json:"monetary" bigquery:"monetary"`
	RScore        int     `json:"r_score" bigquery:"r_score"`
	FScore        int     `json:"f_score" bigquery:"f_score"`
	MScore        int     `json:"m_score" bigquery:"m_score"`
	RFMSegment    string  `json:"rfm_segment" bigquery:"rfm_segment"`
}

// ScoredCustomerRow is a feature row with the external classifier's output
// attached. ChurnScore is probability times CLV, a dollar-weighted urgency
// ranking rather than a probability.
type ScoredCustomerRow struct {
	CustomerFeatureRow
	ChurnProbability float64 `json:"churn_probability" bigquery:"churn_probability"`
	ChurnScore       float64 `json:"churn_score" bigquery:"churn_score"`
}
