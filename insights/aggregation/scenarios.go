package aggregation

import (
	"sort"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
)

// CLVTier is one equal-population CLV band with its churn profile.
type CLVTier struct {
	Tier             string  `json:"tier"`
	Customers        int     `json:"customers"`
	CancellationRate float64 `json:"cancellation_rate"`
	AvgCLV           float64 `json:"avg_clv"`
	AvgChurnScore    float64 `json:"avg_churn_score"`
}

// ChurnByCLVTier splits the set into three equal-population CLV tiers.
// When the set is too small or too homogeneous to split, it degrades to a
// single "All" tier rather than failing.
func ChurnByCLVTier(rows []etldomain.ScoredCustomerRow) []CLVTier {
	lower := quantile(1.0/3.0, column(rows, clvOf))
	upper := quantile(2.0/3.0, column(rows, clvOf))

	if len(rows) < 3 || lower >= upper {
		return []CLVTier{tierOf("All", rows)}
	}

	var low, medium, high []etldomain.ScoredCustomerRow

	for _, r := range rows {
		switch {
		case r.CLV <= lower:
			low = append(low, r)
		case r.CLV <= upper:
			medium = append(medium, r)
		default:
			high = append(high, r)
		}
	}

	return []CLVTier{
		tierOf("Low", low),
		tierOf("Medium", medium),
		tierOf("High", high),
	}
}

func tierOf(name string, rows []etldomain.ScoredCustomerRow) CLVTier {
	return CLVTier{
		Tier:             name,
		Customers:        len(rows),
		CancellationRate: finite(cancellationRate(rows)),
		AvgCLV:           mean(column(rows, clvOf)),
		AvgChurnScore:    mean(column(rows, churnScoreOf)),
	}
}

// DoNothingScenario projects the at-risk customer count if nothing changes.
// A linear projection from the current cancellation rate, not a simulation.
type DoNothingScenario struct {
	Customers               int     `json:"customers"`
	CancellationRate        float64 `json:"cancellation_rate"`
	ProjectedAtRiskCount    float64 `json:"projected_at_risk_customers"`
	TotalValueAtRisk        float64 `json:"total_value_at_risk"`
	AvgChurnScorePerAccount float64 `json:"avg_churn_score"`
}

func ComputeDoNothingScenario(rows []etldomain.ScoredCustomerRow) DoNothingScenario {
	rate := cancellationRate(rows)
	churnScores := column(rows, churnScoreOf)

	return DoNothingScenario{
		Customers:               len(rows),
		CancellationRate:        finite(rate),
		ProjectedAtRiskCount:    finite(float64(len(rows)) * rate),
		TotalValueAtRisk:        sum(churnScores),
		AvgChurnScorePerAccount: mean(churnScores),
	}
}

// PriorityInitiative names the single highest-exposure group on each axis.
// The two argmaxes are independent, not a joint optimization.
type PriorityInitiative struct {
	BySegment  ValueAtRiskGroup `json:"by_segment"`
	ByProvince ValueAtRiskGroup `json:"by_province"`
}

func SinglePriorityInitiative(rows []etldomain.ScoredCustomerRow) PriorityInitiative {
	bySegment := ValueAtRisk(rows, func(r etldomain.ScoredCustomerRow) string { return r.RFMSegment }, 1)
	byProvince := ValueAtRisk(rows, func(r etldomain.ScoredCustomerRow) string { return r.Province }, 1)

	var initiative PriorityInitiative

	if len(bySegment) > 0 {
		initiative.BySegment = bySegment[0]
	}

	if len(byProvince) > 0 {
		initiative.ByProvince = byProvince[0]
	}

	return initiative
}

// SegmentStats is one side of a segment comparison.
type SegmentStats struct {
	Segment          string  `json:"segment"`
	Customers        int     `json:"customers"`
	AvgCLV           float64 `json:"avg_clv"`
	CancellationRate float64 `json:"cancellation_rate"`
	AvgChurnScore    float64 `json:"avg_churn_score"`
	AvgRecencyDays   float64 `json:"avg_recency_days"`
	AvgFrequency     float64 `json:"avg_frequency"`
	TotalValueAtRisk float64 `json:"total_value_at_risk"`
}

// SegmentComparison puts two segments side by side. Requested segments
// absent from the set fall back to the two largest segments present.
type SegmentComparison struct {
	SegmentA SegmentStats `json:"segment_a"`
	SegmentB SegmentStats `json:"segment_b"`
}

func CompareSegments(rows []etldomain.ScoredCustomerRow, segmentA, segmentB string) SegmentComparison {
	groups := groupBy(rows, func(r etldomain.ScoredCustomerRow) string { return r.RFMSegment })

	present := make([]string, 0, len(groups))
	for name := range groups {
		present = append(present, name)
	}

	// Largest first, name as tiebreak, so the fallback is deterministic.
	sort.Slice(present, func(i, j int) bool {
		if len(groups[present[i]]) == len(groups[present[j]]) {
			return present[i] < present[j]
		}

		return len(groups[present[i]]) > len(groups[present[j]])
	})

	pick := func(requested string, fallbackIdx int) string {
		if _, ok := groups[requested]; ok {
			return requested
		}

		if fallbackIdx < len(present) {
			return present[fallbackIdx]
		}

		return requested
	}

	nameA := pick(segmentA, 0)
	nameB := pick(segmentB, 1)
	if nameB == nameA && len(present) > 1 {
		nameB = pick("", 1)
	}

	return SegmentComparison{
		SegmentA: segmentStats(nameA, groups[nameA]),
		SegmentB: segmentStats(nameB, groups[nameB]),
	}
}

func segmentStats(name string, rows []etldomain.ScoredCustomerRow) SegmentStats {
	churnScores := column(rows, churnScoreOf)

	return SegmentStats{
		Segment:          name,
		Customers:        len(rows),
		AvgCLV:           mean(column(rows, clvOf)),
		CancellationRate: finite(cancellationRate(rows)),
		AvgChurnScore:    mean(churnScores),
		AvgRecencyDays:   finite(mean(column(rows, recencyOf)) * 30),
		AvgFrequency:     mean(column(rows, frequencyOf)),
		TotalValueAtRisk: sum(churnScores),
	}
}

// TenureBand is one fixed membership-age band.
type TenureBand struct {
	Band             string  `json:"band"`
	Customers        int     `json:"customers"`
	CancellationRate float64 `json:"cancellation_rate"`
	AvgCLV           float64 `json:"avg_clv"`
	TotalValueAtRisk float64 `json:"total_value_at_risk"`
}

var tenureBands = []struct {
	label    string
	min, max int
}{
	{"0-6 months", 0, 6},
	{"7-12 months", 7, 12},
	{"13-24 months", 13, 24},
	{"25-36 months", 25, 36},
	{"37-60 months", 37, 60},
	{"60+ months", 61, 1 << 30},
}

// TenureAnalysis buckets customers into fixed tenure bands, sorted by
// cancellation rate descending. Empty bands are omitted.
func TenureAnalysis(rows []etldomain.ScoredCustomerRow) []TenureBand {
	result := make([]TenureBand, 0, len(tenureBands))

	for _, band := range tenureBands {
		var members []etldomain.ScoredCustomerRow

		for _, r := range rows {
			if r.TenureMonths >= band.min && r.TenureMonths <= band.max {
				members = append(members, r)
			}
		}

		if len(members) == 0 {
			continue
		}

		result = append(result, TenureBand{
			Band:             band.label,
			Customers:        len(members),
			CancellationRate: finite(cancellationRate(members)),
			AvgCLV:           mean(column(members, clvOf)),
			TotalValueAtRisk: sum(column(members, churnScoreOf)),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CancellationRate > result[j].CancellationRate
	})

	return result
}

// RevenueImpact projects revenue loss from churn at the current rates.
type RevenueImpact struct {
	Customers                int     `json:"customers"`
	CancellationRate         float64 `json:"cancellation_rate"`
	ProjectedChurnedCount    float64 `json:"projected_churned_customers"`
	ProjectedCLVLoss         float64 `json:"projected_clv_loss"`
	ProjectedAnnualizedLoss  float64 `json:"projected_annualized_loss"`
	HighRiskQuartileVaR      float64 `json:"high_risk_quartile_value_at_risk"`
	HighRiskQuartileCustomer int     `json:"high_risk_quartile_customers"`
}

// ComputeRevenueImpact annualizes the projected CLV loss over the average
// tenure, floored at one year so very new cohorts do not blow up the figure.
func ComputeRevenueImpact(rows []etldomain.ScoredCustomerRow) RevenueImpact {
	rate := cancellationRate(rows)
	projectedChurned := float64(len(rows)) * rate
	projectedLoss := mean(column(rows, clvOf)) * projectedChurned

	avgTenureYears := mean(column(rows, tenureOf)) / 12
	if avgTenureYears < 1 {
		avgTenureYears = 1
	}

	probabilityCutoff := quantile(0.75, column(rows, churnProbabilityOf))

	highRiskVaR := 0.0
	highRiskCount := 0

	for _, r := range rows {
		if r.ChurnProbability >= probabilityCutoff {
			highRiskVaR += r.ChurnScore
			highRiskCount++
		}
	}

	return RevenueImpact{
		Customers:                len(rows),
		CancellationRate:         finite(rate),
		ProjectedChurnedCount:    finite(projectedChurned),
		ProjectedCLVLoss:         finite(projectedLoss),
		ProjectedAnnualizedLoss:  finite(projectedLoss / avgTenureYears),
		HighRiskQuartileVaR:      finite(highRiskVaR),
		HighRiskQuartileCustomer: highRiskCount,
	}
}
