package aggregation

import (
	"fmt"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
)

// EmptyResult is the user-visible state for a filter combination matching
// zero customers. It is a valid result, not an error.
type EmptyResult struct {
	Empty   bool   `json:"empty_result"`
	Message string `json:"message"`
}

func newEmptyResult() EmptyResult {
	return EmptyResult{
		Empty:   true,
		Message: "No customers match the current filters. Adjust your filters and try again.",
	}
}

// ErrUnknownOp reports an operation name outside the catalog reaching
// execution. The sanitizer upstream should make this unreachable.
type ErrUnknownOp struct {
	Op Op
}

func (e *ErrUnknownOp) Error() string {
	return fmt.Sprintf("unknown aggregation operation %q", e.Op)
}

// Execute runs one sanitized operation. The slice is the currently filtered
// customer set; baseline is the full unfiltered population and is only read
// by kpis_baseline. Both inputs are treated as immutable snapshots, so
// Execute is safe to call concurrently from independent sessions.
func Execute(req Request, rows, baseline []etldomain.ScoredCustomerRow) (interface{}, error) {
	if req.Op == OpKPIsBaseline {
		if len(baseline) == 0 {
			return newEmptyResult(), nil
		}

		return ComputeKPIs(baseline), nil
	}

	if len(rows) == 0 {
		return newEmptyResult(), nil
	}

	p := req.Params

	switch req.Op {
	case OpKPIsSlice:
		return ComputeKPIs(rows), nil
	case OpSummaryBySegment:
		return GroupedSummary(rows, func(r etldomain.ScoredCustomerRow) string { return r.RFMSegment }, p.SortBy, p.Ascending, p.TopN), nil
	case OpSummaryByProvince:
		return GroupedSummary(rows, func(r etldomain.ScoredCustomerRow) string { return r.Province }, p.SortBy, p.Ascending, p.TopN), nil
	case OpSummaryByCard:
		return GroupedSummary(rows, func(r etldomain.ScoredCustomerRow) string { return r.LoyaltyCard }, p.SortBy, p.Ascending, p.TopN), nil
	case OpSummaryByGender:
		return GroupedSummary(rows, func(r etldomain.ScoredCustomerRow) string { return r.Gender }, p.SortBy, p.Ascending, p.TopN), nil
	case OpTopRiskCustomers:
		return TopRiskCustomers(rows, p.TopN), nil
	case OpTopValueCustomers:
		return TopValueCustomers(rows, p.TopN, p.Segment), nil
	case OpValueAtRiskBySegment:
		return ValueAtRisk(rows, func(r etldomain.ScoredCustomerRow) string { return r.RFMSegment }, p.TopN), nil
	case OpValueAtRiskByProvince:
		return ValueAtRisk(rows, func(r etldomain.ScoredCustomerRow) string { return r.Province }, p.TopN), nil
	case OpChurnByCLVTier:
		return ChurnByCLVTier(rows), nil
	case OpDoNothingScenario:
		return ComputeDoNothingScenario(rows), nil
	case OpSinglePriorityInitiative:
		return SinglePriorityInitiative(rows), nil
	case OpSegmentComparison:
		return CompareSegments(rows, p.SegmentA, p.SegmentB), nil
	case OpTenureAnalysis:
		return TenureAnalysis(rows), nil
	case OpRevenueImpact:
		return ComputeRevenueImpact(rows), nil
	case OpCorrelationDrivers:
		return ComputeCorrelationDrivers(rows), nil
	default:
		return nil, &ErrUnknownOp{Op: req.Op}
	}
}
