package plan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywardair/customer-analytics/insights/aggregation"
)

func decode(t *testing.T, raw string) interface{} {
	t.Helper()

	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &v))

	return v
}

func TestSanitizeDropsUnknownAndDuplicateOps(t *testing.T) {
	raw := decode(t, `{
		"intent": "risk overview",
		"operations": [
			{"op": "top_risk_customers", "top_n": 10},
			{"op": "top_risk_customers", "top_n": 99},
			{"op": "drop_all_tables"}
		]
	}`)

	sanitized := Sanitize(raw)

	require.Len(t, sanitized, 1)
	assert.Equal(t, aggregation.OpTopRiskCustomers, sanitized[0].Op)
	assert.Equal(t, 10, sanitized[0].Params.TopN)
}

func TestSanitizeStructurallyInvalidPlan(t *testing.T) {
	assert.Equal(t, DefaultPlan(), Sanitize("just a string"))
	assert.Equal(t, DefaultPlan(), Sanitize(nil))
	assert.Equal(t, DefaultPlan(), Sanitize(decode(t, `{"operations": "not a list"}`)))
	assert.Equal(t, DefaultPlan(), Sanitize(decode(t, `{"intent": "hello"}`)))
	assert.Equal(t, DefaultPlan(), Sanitize(decode(t, `[1, 2, 3]`)))
}

func TestSanitizeEmptySurvivorsFallsBackToDefault(t *testing.T) {
	raw := decode(t, `{
		"operations": [
			{"op": "not_a_real_op"},
			{"op": 42},
			"not even a mapping"
		]
	}`)

	assert.Equal(t, DefaultPlan(), Sanitize(raw))
}

func TestSanitizePreservesRelativeOrder(t *testing.T) {
	raw := decode(t, `{
		"operations": [
			{"op": "kpis_slice"},
			{"op": "tenure_analysis"},
			{"op": "kpis_slice"},
			{"op": "kpis_baseline"}
		]
	}`)

	sanitized := Sanitize(raw)
	require.Len(t, sanitized, 3)

	assert.Equal(t, aggregation.OpKPIsSlice, sanitized[0].Op)
	assert.Equal(t, aggregation.OpTenureAnalysis, sanitized[1].Op)
	assert.Equal(t, aggregation.OpKPIsBaseline, sanitized[2].Op)
}

func TestSanitizeClampsNumericBounds(t *testing.T) {
	raw := decode(t, `{
		"operations": [
			{"op": "summary_by_segment", "top_n": 100000},
			{"op": "top_risk_customers", "top_n": -3},
			{"op": "value_at_risk_by_province", "top_n": 999}
		]
	}`)

	sanitized := Sanitize(raw)
	require.Len(t, sanitized, 3)

	assert.Equal(t, aggregation.MaxGroupTopN, sanitized[0].Params.TopN)
	assert.Equal(t, 1, sanitized[1].Params.TopN)
	assert.Equal(t, aggregation.MaxGroupTopN, sanitized[2].Params.TopN)
}

func TestSanitizeRebuildsParamsFromWhitelist(t *testing.T) {
	raw := decode(t, `{
		"operations": [
			{"op": "summary_by_province", "sort_by": "avg_clv", "ascending": true, "where": "1=1"},
			{"op": "summary_by_card", "sort_by": "secret_column"},
			{"op": "top_value_customers", "segment": "Champions", "limit": 5000},
			{"op": "segment_comparison", "segment_a": "Loyal", "segment_b": "Dormant"}
		]
	}`)

	sanitized := Sanitize(raw)
	require.Len(t, sanitized, 4)

	assert.Equal(t, "avg_clv", sanitized[0].Params.SortBy)
	assert.True(t, sanitized[0].Params.Ascending)

	// Off-whitelist sort column falls back to the default.
	assert.Equal(t, aggregation.DefaultGroupSort, sanitized[1].Params.SortBy)

	assert.Equal(t, "Champions", sanitized[2].Params.Segment)

	assert.Equal(t, "Loyal", sanitized[3].Params.SegmentA)
	assert.Equal(t, "Dormant", sanitized[3].Params.SegmentB)
}

func TestDefaultPlanIsExecutable(t *testing.T) {
	for _, req := range DefaultPlan() {
		assert.True(t, aggregation.IsKnownOp(string(req.Op)), "op %s", req.Op)
	}
}
