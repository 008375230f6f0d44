package aggregation

import (
	etldomain "github.com/skywardair/customer-analytics/etl/domain"
)

// KPIs is the scalar tile block for a customer set.
type KPIs struct {
	Customers          int     `json:"customers"`
	AvgCLV             float64 `json:"avg_clv"`
	MedianCLV          float64 `json:"median_clv"`
	CancellationRate   float64 `json:"cancellation_rate"`
	RetentionRate      float64 `json:"retention_rate"`
	AvgRecencyMonths   float64 `json:"avg_recency_months"`
	AvgRecencyDays     float64 `json:"avg_recency_days"`
	AvgFrequency       float64 `json:"avg_frequency"`
	AvgMonetary        float64 `json:"avg_monetary"`
	AvgTenureMonths    float64 `json:"avg_tenure_months"`
	AvgChurnScore      float64 `json:"avg_churn_score"`
	HighValueCustomers int     `json:"high_value_customers"`
	HighValueThreshold float64 `json:"high_value_clv_threshold"`
}

// ComputeKPIs derives the scalar KPI block. The high-value threshold is the
// 75th CLV percentile of this set, recomputed per call.
func ComputeKPIs(rows []etldomain.ScoredCustomerRow) KPIs {
	if len(rows) == 0 {
		return KPIs{}
	}

	clvs := column(rows, clvOf)
	cancellation := cancellationRate(rows)

	// Months-to-days is a display approximation carried over from the
	// reporting layer.
	avgRecencyMonths := mean(column(rows, recencyOf))

	threshold := quantile(0.75, clvs)

	highValue := 0
	for _, r := range rows {
		if r.CLV >= threshold {
			highValue++
		}
	}

	return KPIs{
		Customers:          len(rows),
		AvgCLV:             mean(clvs),
		MedianCLV:          quantile(0.5, clvs),
		CancellationRate:   finite(cancellation),
		RetentionRate:      finite(1 - cancellation),
		AvgRecencyMonths:   avgRecencyMonths,
		AvgRecencyDays:     finite(avgRecencyMonths * 30),
		AvgFrequency:       mean(column(rows, frequencyOf)),
		AvgMonetary:        mean(column(rows, monetaryOf)),
		AvgTenureMonths:    mean(column(rows, tenureOf)),
		AvgChurnScore:      mean(column(rows, churnScoreOf)),
		HighValueCustomers: highValue,
		HighValueThreshold: threshold,
	}
}
