package features

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/skywardair/customer-analytics/etl/domain"
)

// RScore bands recency (in months) into 5 ordinal tiers using fixed cut
// points; the most recent activity scores highest. Recencies beyond the last
// cut point, including the zero-activity sentinel, land in the lowest band.
func RScore(recency int) int {
	switch {
	case recency <= 1:
		return 5
	case recency <= 3:
		return 4
	case recency <= 6:
		return 3
	case recency <= 12:
		return 2
	default:
		return 1
	}
}

// QuintileBounds returns the 20/40/60/80th percentile boundaries of values.
// The boundaries are batch-relative: two batches produce different score
// boundaries even for identical raw values.
func QuintileBounds(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	bounds := make([]float64, 4)
	for i, p := range []float64{0.2, 0.4, 0.6, 0.8} {
		bounds[i] = stat.Quantile(p, stat.Empirical, sorted, nil)
	}

	return bounds
}

// QuintileScore maps a value onto 1..5 given quintile boundaries; values on
// a boundary fall into the lower bin.
func QuintileScore(value float64, bounds []float64) int {
	for i, b := range bounds {
		if value <= b {
			return i + 1
		}
	}

	return 5
}

// Segment applies the RFM segment decision rule. The first matching branch
// wins; every (r, f, m) triple in [1,5]^3 matches exactly one branch.
func Segment(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return domain.SegmentChampions
	case r >= 3 && f >= 3:
		return domain.SegmentLoyal
	case r <= 2 && f >= 3:
		return domain.SegmentAtRisk
	case r <= 2 && f <= 2:
		return domain.SegmentDormant
	default:
		return domain.SegmentPotential
	}
}
