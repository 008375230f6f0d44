// Package features derives the per-customer RFM feature table from a batch
// of flight activity and loyalty history records. The computation is pure:
// given the same records and reference date it produces identical rows, so a
// full recompute per batch is always safe.
package features

import (
	"sort"
	"time"

	"github.com/skywardair/customer-analytics/etl/domain"
	"github.com/skywardair/customer-analytics/times"
)

// customerActivity accumulates a single customer's flight activity.
type customerActivity struct {
	frequency     int64
	monetary      float64
	latestFlight  time.Time
	hasQualifying bool
}

// MaxActivityDate returns the latest (year, month) period across all
// activity records. It is the recency reference point for the batch.
func MaxActivityDate(activity []domain.FlightActivityRecord) time.Time {
	var max time.Time
	for _, r := range activity {
		if d := r.ActivityDate(); d.After(max) {
			max = d
		}
	}

	return max
}

// Build produces exactly one feature row per distinct customer in the
// history set. The reference date is passed explicitly rather than derived
// from ambient state; callers normally pass MaxActivityDate of the batch.
//
// Customers present in history but absent from activity receive the recency
// sentinel, frequency 0 and monetary 0. Customers present in activity but
// absent from history are dropped: history is the entity of record for
// demographics.
func Build(
	activity []domain.FlightActivityRecord,
	history []domain.LoyaltyHistoryRecord,
	reference time.Time,
) ([]domain.CustomerFeatureRow, error) {
	if len(activity) == 0 {
		return nil, domain.ErrNoActivityRecords
	}

	if len(history) == 0 {
		return nil, domain.ErrNoHistoryRecords
	}

	perCustomer := make(map[int64]*customerActivity)

	for _, r := range activity {
		a, ok := perCustomer[r.LoyaltyNumber]
		if !ok {
			a = &customerActivity{}
			perCustomer[r.LoyaltyNumber] = a
		}

		a.frequency += r.TotalFlights

		// Periods with zero flights are excluded from the monetary sum and
		// do not count as activity for recency.
		if r.TotalFlights > 0 {
			a.monetary += r.Distance

			if d := r.ActivityDate(); !a.hasQualifying || d.After(a.latestFlight) {
				a.latestFlight = d
				a.hasQualifying = true
			}
		}
	}

	// History is the customer universe. Deduplicate on loyalty number,
	// first occurrence wins.
	seen := make(map[int64]struct{}, len(history))
	universe := make([]domain.LoyaltyHistoryRecord, 0, len(history))

	for _, h := range history {
		if _, ok := seen[h.LoyaltyNumber]; ok {
			continue
		}

		seen[h.LoyaltyNumber] = struct{}{}
		universe = append(universe, h)
	}

	// First pass: recency for customers with qualifying activity, tracking
	// the maximum finite recency so the sentinel is strictly worse than any
	// observed value in this batch.
	recencies := make(map[int64]int, len(universe))
	maxFiniteRecency := 0

	for _, h := range universe {
		a, ok := perCustomer[h.LoyaltyNumber]
		if !ok || !a.hasQualifying {
			continue
		}

		recency := times.MonthsDiff(reference, a.latestFlight)
		recencies[h.LoyaltyNumber] = recency

		if recency > maxFiniteRecency {
			maxFiniteRecency = recency
		}
	}

	sentinel := maxFiniteRecency + 1

	// Second pass: assemble rows and the frequency/monetary vectors for
	// batch-relative quintile binning.
	rows := make([]domain.CustomerFeatureRow, 0, len(universe))
	frequencies := make([]float64, 0, len(universe))
	monetaries := make([]float64, 0, len(universe))

	for _, h := range universe {
		var (
			frequency int64
			monetary  float64
		)

		if a, ok := perCustomer[h.LoyaltyNumber]; ok {
			frequency = a.frequency
			monetary = a.monetary
		}

		recency, ok := recencies[h.LoyaltyNumber]
		if !ok {
			recency = sentinel
		}

		tenureEnd := reference
		if h.IsCancelled() {
			tenureEnd = h.CancellationDate()
		}

		tenureMonths := times.MonthsDiff(tenureEnd, h.EnrollmentDate())
		if tenureMonths < 0 {
			tenureMonths = 0
		}

		rows = append(rows, domain.CustomerFeatureRow{
			LoyaltyNumber: h.LoyaltyNumber,
			Province:      h.Province,
			City:          h.City,
			Gender:        h.Gender,
			Education:     h.Education,
			LoyaltyCard:   h.LoyaltyCard,
			CLV:           h.CLV,
			IsCancelled:   h.IsCancelled(),
			TenureMonths:  tenureMonths,
			Recency:       recency,
			Frequency:     frequency,
			Monetary:      monetary,
		})

		frequencies = append(frequencies, float64(frequency))
		monetaries = append(monetaries, monetary)
	}

	fBounds := QuintileBounds(frequencies)
	mBounds := QuintileBounds(monetaries)

	for i := range rows {
		rows[i].RScore = RScore(rows[i].Recency)
		rows[i].FScore = QuintileScore(float64(rows[i].Frequency), fBounds)
		rows[i].MScore = QuintileScore(rows[i].Monetary, mBounds)
		rows[i].RFMSegment = Segment(rows[i].RScore, rows[i].FScore, rows[i].MScore)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].LoyaltyNumber < rows[j].LoyaltyNumber
	})

	return rows, nil
}
