// Package aggregation computes a closed catalog of named summaries over a
// customer-row collection. Every operation returns a JSON-serializable
// structure with bounded size; raw unrestricted query results never leave
// this package.
package aggregation

// Op names one aggregation operation in the catalog.
type Op string

const (
	OpKPIsBaseline             Op = "kpis_baseline"
	OpKPIsSlice                Op = "kpis_slice"
	OpSummaryBySegment         Op = "summary_by_segment"
	OpSummaryByProvince        Op = "summary_by_province"
	OpSummaryByCard            Op = "summary_by_card"
	OpSummaryByGender          Op = "summary_by_gender"
	OpTopRiskCustomers         Op = "top_risk_customers"
	OpTopValueCustomers        Op = "top_value_customers"
	OpValueAtRiskBySegment     Op = "value_at_risk_by_segment"
	OpValueAtRiskByProvince    Op = "value_at_risk_by_province"
	OpChurnByCLVTier           Op = "churn_by_clv_tier"
	OpDoNothingScenario        Op = "do_nothing_scenario"
	OpSinglePriorityInitiative Op = "single_priority_initiative"
	OpSegmentComparison        Op = "segment_comparison"
	OpTenureAnalysis           Op = "tenure_analysis"
	OpRevenueImpact            Op = "revenue_impact"
	OpCorrelationDrivers       Op = "correlation_drivers"
)

// Catalog lists every operation, in display order.
var Catalog = []Op{
	OpKPIsBaseline,
	OpKPIsSlice,
	OpSummaryBySegment,
	OpSummaryByProvince,
	OpSummaryByCard,
	OpSummaryByGender,
	OpTopRiskCustomers,
	OpTopValueCustomers,
	OpValueAtRiskBySegment,
	OpValueAtRiskByProvince,
	OpChurnByCLVTier,
	OpDoNothingScenario,
	OpSinglePriorityInitiative,
	OpSegmentComparison,
	OpTenureAnalysis,
	OpRevenueImpact,
	OpCorrelationDrivers,
}

// IsKnownOp reports whether name is in the catalog.
func IsKnownOp(name string) bool {
	for _, op := range Catalog {
		if string(op) == name {
			return true
		}
	}

	return false
}

// Params carries the bounded parameters an operation accepts. Irrelevant
// fields are ignored by operations that do not use them.
type Params struct {
	TopN      int    `json:"top_n,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	Ascending bool   `json:"ascending,omitempty"`
	Segment   string `json:"segment,omitempty"`
	SegmentA  string `json:"segment_a,omitempty"`
	SegmentB  string `json:"segment_b,omitempty"`
}

// Request is one executable operation with sanitized parameters.
type Request struct {
	Op     Op     `json:"op"`
	Params Params `json:"params"`
}

// Per-operation top_n ceilings.
const (
	MaxGroupTopN    = 50
	MaxCustomerTopN = 100

	defaultGroupTopN    = 10
	defaultCustomerTopN = 15
)

// GroupSortColumns is the sort_by whitelist for grouped summaries. Values
// outside the whitelist silently fall back to DefaultGroupSort.
var GroupSortColumns = []string{
	"customers",
	"avg_clv",
	"total_clv",
	"cancellation_rate",
	"avg_churn_score",
	"avg_recency_days",
	"avg_frequency",
	"avg_monetary",
	"total_value_at_risk",
}

// DefaultGroupSort orders grouped summaries by churn urgency.
const DefaultGroupSort = "avg_churn_score"

// ClampGroupTopN bounds a grouped operation's top_n to [1, MaxGroupTopN].
func ClampGroupTopN(n int) int {
	if n == 0 {
		return defaultGroupTopN
	}

	return clamp(n, 1, MaxGroupTopN)
}

// ClampCustomerTopN bounds a customer-ranking top_n to [1, MaxCustomerTopN].
func ClampCustomerTopN(n int) int {
	if n == 0 {
		return defaultCustomerTopN
	}

	return clamp(n, 1, MaxCustomerTopN)
}

func clamp(n, lo, hi int) int {
	switch {
	case n < lo:
		return lo
	case n > hi:
		return hi
	default:
		return n
	}
}
