package aggregation

import (
	"math"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
)

// DriverMetric compares one metric's average between churned and retained
// customers.
type DriverMetric struct {
	Metric        string  `json:"metric"`
	ChurnedAvg    float64 `json:"churned_avg"`
	RetainedAvg   float64 `json:"retained_avg"`
	DifferencePct float64 `json:"difference_pct"`
}

// CorrelationDrivers contrasts cancelled and retained customers metric by
// metric, plus each group's segment mix.
type CorrelationDrivers struct {
	Metrics                     []DriverMetric     `json:"metrics"`
	ChurnedSegmentDistribution  map[string]float64 `json:"churned_segment_distribution"`
	RetainedSegmentDistribution map[string]float64 `json:"retained_segment_distribution"`
	ChurnedCustomers            int                `json:"churned_customers"`
	RetainedCustomers           int                `json:"retained_customers"`
}

var driverMetrics = []struct {
	name string
	get  func(etldomain.ScoredCustomerRow) float64
}{
	{"recency_months", recencyOf},
	{"frequency", frequencyOf},
	{"monetary", monetaryOf},
	{"tenure_months", tenureOf},
	{"clv", clvOf},
	{"churn_probability", churnProbabilityOf},
}

// ComputeCorrelationDrivers splits the set into cancelled vs retained and
// reports per-metric averages with percentage difference. The difference is
// defined as 0 when the retained average is 0.
func ComputeCorrelationDrivers(rows []etldomain.ScoredCustomerRow) CorrelationDrivers {
	var churned, retained []etldomain.ScoredCustomerRow

	for _, r := range rows {
		if r.IsCancelled {
			churned = append(churned, r)
		} else {
			retained = append(retained, r)
		}
	}

	metrics := make([]DriverMetric, 0, len(driverMetrics))

	for _, m := range driverMetrics {
		churnedAvg := mean(column(churned, m.get))
		retainedAvg := mean(column(retained, m.get))

		differencePct := 0.0
		if retainedAvg != 0 {
			differencePct = (churnedAvg - retainedAvg) / math.Abs(retainedAvg) * 100
		}

		metrics = append(metrics, DriverMetric{
			Metric:        m.name,
			ChurnedAvg:    churnedAvg,
			RetainedAvg:   retainedAvg,
			DifferencePct: finite(differencePct),
		})
	}

	return CorrelationDrivers{
		Metrics:                     metrics,
		ChurnedSegmentDistribution:  segmentDistribution(churned),
		RetainedSegmentDistribution: segmentDistribution(retained),
		ChurnedCustomers:            len(churned),
		RetainedCustomers:           len(retained),
	}
}

func segmentDistribution(rows []etldomain.ScoredCustomerRow) map[string]float64 {
	distribution := make(map[string]float64)
	if len(rows) == 0 {
		return distribution
	}

	for _, r := range rows {
		distribution[r.RFMSegment]++
	}

	for segment := range distribution {
		distribution[segment] = finite(distribution[segment] / float64(len(rows)))
	}

	return distribution
}
