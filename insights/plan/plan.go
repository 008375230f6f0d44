// Package plan is the trust boundary between the external planner's
// free-text-derived output and the aggregation engine. Nothing the planner
// proposes reaches execution without being rebuilt from whitelisted parts.
package plan

import (
	"github.com/skywardair/customer-analytics/insights/aggregation"
	"github.com/skywardair/customer-analytics/slice"
)

type opCategory int

const (
	categoryZeroParam opCategory = iota
	categoryGroupedSummary
	categoryValueAtRisk
	categoryTopN
	categoryComparison
)

var opCategories = map[aggregation.Op]opCategory{
	aggregation.OpKPIsBaseline:             categoryZeroParam,
	aggregation.OpKPIsSlice:                categoryZeroParam,
	aggregation.OpChurnByCLVTier:           categoryZeroParam,
	aggregation.OpDoNothingScenario:        categoryZeroParam,
	aggregation.OpSinglePriorityInitiative: categoryZeroParam,
	aggregation.OpTenureAnalysis:           categoryZeroParam,
	aggregation.OpRevenueImpact:            categoryZeroParam,
	aggregation.OpCorrelationDrivers:       categoryZeroParam,
	aggregation.OpSummaryBySegment:         categoryGroupedSummary,
	aggregation.OpSummaryByProvince:        categoryGroupedSummary,
	aggregation.OpSummaryByCard:            categoryGroupedSummary,
	aggregation.OpSummaryByGender:          categoryGroupedSummary,
	aggregation.OpValueAtRiskBySegment:     categoryValueAtRisk,
	aggregation.OpValueAtRiskByProvince:    categoryValueAtRisk,
	aggregation.OpTopRiskCustomers:         categoryTopN,
	aggregation.OpTopValueCustomers:        categoryTopN,
	aggregation.OpSegmentComparison:        categoryComparison,
}

// DefaultPlan is the hard-coded fallback used whenever the planner's output
// is structurally invalid or nothing survives sanitization. It guarantees
// the narration step always receives usable data.
func DefaultPlan() []aggregation.Request {
	return []aggregation.Request{
		{Op: aggregation.OpKPIsBaseline},
		{Op: aggregation.OpKPIsSlice},
		{Op: aggregation.OpDoNothingScenario},
		{Op: aggregation.OpValueAtRiskBySegment, Params: aggregation.Params{TopN: 5}},
		{Op: aggregation.OpValueAtRiskByProvince, Params: aggregation.Params{TopN: 5}},
		{Op: aggregation.OpSummaryBySegment, Params: aggregation.Params{TopN: 5}},
		{Op: aggregation.OpSummaryByProvince, Params: aggregation.Params{TopN: 5}},
		{Op: aggregation.OpTopRiskCustomers, Params: aggregation.Params{TopN: 15}},
	}
}

// Sanitize turns an untrusted proposed plan into an executable one. The
// input is the planner's decoded JSON: expected shape is a mapping with an
// "operations" sequence of {"op": name, ...params} items. Unknown operation
// names are dropped, duplicates keep the first occurrence in order, and
// parameters are rebuilt from whitelisted keys with clamped bounds. A
// structurally invalid plan, or one where nothing survives, becomes
// DefaultPlan.
func Sanitize(raw interface{}) []aggregation.Request {
	mapping, ok := raw.(map[string]interface{})
	if !ok {
		return DefaultPlan()
	}

	items, ok := mapping["operations"].([]interface{})
	if !ok {
		return DefaultPlan()
	}

	seen := make(map[aggregation.Op]struct{})
	requests := make([]aggregation.Request, 0, len(items))

	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		name, ok := fields["op"].(string)
		if !ok || !aggregation.IsKnownOp(name) {
			continue
		}

		op := aggregation.Op(name)
		if _, dup := seen[op]; dup {
			continue
		}

		seen[op] = struct{}{}
		requests = append(requests, aggregation.Request{
			Op:     op,
			Params: rebuildParams(op, fields),
		})
	}

	if len(requests) == 0 {
		return DefaultPlan()
	}

	return requests
}

// rebuildParams constructs a clean parameter set from scratch using only the
// keys valid for the operation's category. Numeric bounds are never trusted
// verbatim.
func rebuildParams(op aggregation.Op, fields map[string]interface{}) aggregation.Params {
	var params aggregation.Params

	switch opCategories[op] {
	case categoryGroupedSummary:
		params.TopN = aggregation.ClampGroupTopN(intField(fields, "top_n"))
		params.Ascending = boolField(fields, "ascending")

		if sortBy := stringField(fields, "sort_by"); slice.Contains(aggregation.GroupSortColumns, sortBy) {
			params.SortBy = sortBy
		} else {
			params.SortBy = aggregation.DefaultGroupSort
		}
	case categoryValueAtRisk:
		params.TopN = aggregation.ClampGroupTopN(intField(fields, "top_n"))
	case categoryTopN:
		params.TopN = aggregation.ClampCustomerTopN(intField(fields, "top_n"))

		if op == aggregation.OpTopValueCustomers {
			params.Segment = stringField(fields, "segment")
		}
	case categoryComparison:
		params.SegmentA = stringField(fields, "segment_a")
		params.SegmentB = stringField(fields, "segment_b")
	case categoryZeroParam:
	}

	return params
}

func intField(fields map[string]interface{}, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func stringField(fields map[string]interface{}, key string) string {
	s, _ := fields[key].(string)
	return s
}

func boolField(fields map[string]interface{}, key string) bool {
	b, _ := fields[key].(bool)
	return b
}
