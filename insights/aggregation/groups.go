package aggregation

import (
	"sort"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
	"github.com/skywardair/customer-analytics/slice"
)

// GroupSummary is one group's metric block in a grouped summary.
type GroupSummary struct {
	Group            string  `json:"group"`
	Customers        int     `json:"customers"`
	AvgCLV           float64 `json:"avg_clv"`
	TotalCLV         float64 `json:"total_clv"`
	CancellationRate float64 `json:"cancellation_rate"`
	AvgChurnScore    float64 `json:"avg_churn_score"`
	AvgRecencyDays   float64 `json:"avg_recency_days"`
	AvgFrequency     float64 `json:"avg_frequency"`
	AvgMonetary      float64 `json:"avg_monetary"`
	TotalValueAtRisk float64 `json:"total_value_at_risk"`
}

func (g GroupSummary) sortValue(col string) float64 {
	switch col {
	case "customers":
		return float64(g.Customers)
	case "avg_clv":
		return g.AvgCLV
	case "total_clv":
		return g.TotalCLV
	case "cancellation_rate":
		return g.CancellationRate
	case "avg_recency_days":
		return g.AvgRecencyDays
	case "avg_frequency":
		return g.AvgFrequency
	case "avg_monetary":
		return g.AvgMonetary
	case "total_value_at_risk":
		return g.TotalValueAtRisk
	default:
		return g.AvgChurnScore
	}
}

func summarizeGroup(name string, rows []etldomain.ScoredCustomerRow) GroupSummary {
	clvs := column(rows, clvOf)
	churnScores := column(rows, churnScoreOf)

	return GroupSummary{
		Group:            name,
		Customers:        len(rows),
		AvgCLV:           mean(clvs),
		TotalCLV:         sum(clvs),
		CancellationRate: finite(cancellationRate(rows)),
		AvgChurnScore:    mean(churnScores),
		AvgRecencyDays:   finite(mean(column(rows, recencyOf)) * 30),
		AvgFrequency:     mean(column(rows, frequencyOf)),
		AvgMonetary:      mean(column(rows, monetaryOf)),
		TotalValueAtRisk: sum(churnScores),
	}
}

// GroupedSummary computes per-group metrics over a categorical column,
// sorted by a whitelisted column and truncated to topN. Off-whitelist
// sort_by values silently fall back to the default sort.
func GroupedSummary(
	rows []etldomain.ScoredCustomerRow,
	key func(etldomain.ScoredCustomerRow) string,
	sortBy string,
	ascending bool,
	topN int,
) []GroupSummary {
	if !slice.Contains(GroupSortColumns, sortBy) {
		sortBy = DefaultGroupSort
	}

	topN = ClampGroupTopN(topN)

	groups := groupBy(rows, key)

	summaries := make([]GroupSummary, 0, len(groups))
	for name, members := range groups {
		summaries = append(summaries, summarizeGroup(name, members))
	}

	sort.Slice(summaries, func(i, j int) bool {
		vi, vj := summaries[i].sortValue(sortBy), summaries[j].sortValue(sortBy)
		if vi == vj {
			return summaries[i].Group < summaries[j].Group
		}

		if ascending {
			return vi < vj
		}

		return vi > vj
	})

	if len(summaries) > topN {
		summaries = summaries[:topN]
	}

	return summaries
}

// ValueAtRiskGroup is one group's exposure block.
type ValueAtRiskGroup struct {
	Group            string  `json:"group"`
	Customers        int     `json:"customers"`
	TotalValueAtRisk float64 `json:"total_value_at_risk"`
	TotalCLV         float64 `json:"total_clv"`
	CancelledCount   int     `json:"cancelled_customers"`
}

// ValueAtRisk sums churn scores per group, sorted by exposure descending.
func ValueAtRisk(
	rows []etldomain.ScoredCustomerRow,
	key func(etldomain.ScoredCustomerRow) string,
	topN int,
) []ValueAtRiskGroup {
	topN = ClampGroupTopN(topN)

	groups := groupBy(rows, key)

	result := make([]ValueAtRiskGroup, 0, len(groups))

	for name, members := range groups {
		cancelled := 0
		for _, r := range members {
			if r.IsCancelled {
				cancelled++
			}
		}

		result = append(result, ValueAtRiskGroup{
			Group:            name,
			Customers:        len(members),
			TotalValueAtRisk: sum(column(members, churnScoreOf)),
			TotalCLV:         sum(column(members, clvOf)),
			CancelledCount:   cancelled,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalValueAtRisk == result[j].TotalValueAtRisk {
			return result[i].Group < result[j].Group
		}

		return result[i].TotalValueAtRisk > result[j].TotalValueAtRisk
	})

	if len(result) > topN {
		result = result[:topN]
	}

	return result
}

// CustomerRanking is one customer row in a top-N listing.
type CustomerRanking struct {
	LoyaltyNumber    int64   `json:"loyalty_number"`
	Segment          string  `json:"segment"`
	Province         string  `json:"province"`
	LoyaltyCard      string  `json:"loyalty_card"`
	CLV              float64 `json:"clv"`
	ChurnProbability float64 `json:"churn_probability"`
	ChurnScore       float64 `json:"churn_score"`
	RecencyMonths    int     `json:"recency_months"`
	Frequency        int64   `json:"frequency"`
	TenureMonths     int     `json:"tenure_months"`
}

func toRanking(r etldomain.ScoredCustomerRow) CustomerRanking {
	return CustomerRanking{
		LoyaltyNumber:    r.LoyaltyNumber,
		Segment:          r.RFMSegment,
		Province:         r.Province,
		LoyaltyCard:      r.LoyaltyCard,
		CLV:              finite(r.CLV),
		ChurnProbability: finite(r.ChurnProbability),
		ChurnScore:       finite(r.ChurnScore),
		RecencyMonths:    r.Recency,
		Frequency:        r.Frequency,
		TenureMonths:     r.TenureMonths,
	}
}

// TopRiskCustomers lists the topN customers by churn score descending.
func TopRiskCustomers(rows []etldomain.ScoredCustomerRow, topN int) []CustomerRanking {
	return topCustomers(rows, ClampCustomerTopN(topN), churnScoreOf)
}

// TopValueCustomers lists the topN customers by CLV descending, optionally
// restricted to one segment.
func TopValueCustomers(rows []etldomain.ScoredCustomerRow, topN int, segment string) []CustomerRanking {
	if segment != "" {
		filtered := make([]etldomain.ScoredCustomerRow, 0, len(rows))
		for _, r := range rows {
			if r.RFMSegment == segment {
				filtered = append(filtered, r)
			}
		}

		rows = filtered
	}

	return topCustomers(rows, ClampCustomerTopN(topN), clvOf)
}

func topCustomers(rows []etldomain.ScoredCustomerRow, topN int, rank func(etldomain.ScoredCustomerRow) float64) []CustomerRanking {
	sorted := make([]etldomain.ScoredCustomerRow, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		return rank(sorted[i]) > rank(sorted[j])
	})

	if len(sorted) > topN {
		sorted = sorted[:topN]
	}

	result := make([]CustomerRanking, len(sorted))
	for i, r := range sorted {
		result[i] = toRanking(r)
	}

	return result
}
