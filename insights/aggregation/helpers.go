package aggregation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
)

// finite coerces non-finite numbers to 0 before serialization.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return finite(stat.Mean(values, nil))
}

// quantile returns the p-quantile of values; 0 for an empty slice.
func quantile(p float64, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return finite(stat.Quantile(p, stat.Empirical, sorted, nil))
}

func cancellationRate(rows []etldomain.ScoredCustomerRow) float64 {
	if len(rows) == 0 {
		return 0
	}

	cancelled := 0
	for _, r := range rows {
		if r.IsCancelled {
			cancelled++
		}
	}

	return float64(cancelled) / float64(len(rows))
}

func column(rows []etldomain.ScoredCustomerRow, get func(etldomain.ScoredCustomerRow) float64) []float64 {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = get(r)
	}

	return values
}

func clvOf(r etldomain.ScoredCustomerRow) float64       { return r.CLV }
func recencyOf(r etldomain.ScoredCustomerRow) float64   { return float64(r.Recency) }
func frequencyOf(r etldomain.ScoredCustomerRow) float64 { return float64(r.Frequency) }
func monetaryOf(r etldomain.ScoredCustomerRow) float64  { return r.Monetary }
func tenureOf(r etldomain.ScoredCustomerRow) float64    { return float64(r.TenureMonths) }
func churnScoreOf(r etldomain.ScoredCustomerRow) float64 {
	return r.ChurnScore
}
func churnProbabilityOf(r etldomain.ScoredCustomerRow) float64 {
	return r.ChurnProbability
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}

	return finite(total)
}

// groupBy partitions rows by a categorical key, preserving no particular
// group order; callers sort the resulting summaries.
func groupBy(rows []etldomain.ScoredCustomerRow, key func(etldomain.ScoredCustomerRow) string) map[string][]etldomain.ScoredCustomerRow {
	groups := make(map[string][]etldomain.ScoredCustomerRow)
	for _, r := range rows {
		groups[key(r)] = append(groups[key(r)], r)
	}

	return groups
}
