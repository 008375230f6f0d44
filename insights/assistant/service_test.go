package assistant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
	"github.com/skywardair/customer-analytics/insights/aggregation"
	"github.com/skywardair/customer-analytics/insights/assistant"
	"github.com/skywardair/customer-analytics/insights/assistant/mocks"
	"github.com/skywardair/customer-analytics/insights/domain"
	"github.com/skywardair/customer-analytics/insights/plan"
	"github.com/skywardair/customer-analytics/logger"
)

func fixtureRows() []etldomain.ScoredCustomerRow {
	return []etldomain.ScoredCustomerRow{
		{
			CustomerFeatureRow: etldomain.CustomerFeatureRow{
				LoyaltyNumber: 1, Province: "Ontario", RFMSegment: etldomain.SegmentLoyal, CLV: 1000,
			},
			ChurnProbability: 0.4,
			ChurnScore:       400,
		},
		{
			CustomerFeatureRow: etldomain.CustomerFeatureRow{
				LoyaltyNumber: 2, Province: "Quebec", RFMSegment: etldomain.SegmentDormant, CLV: 2000, IsCancelled: true,
			},
			ChurnProbability: 0.9,
			ChurnScore:       1800,
		},
	}
}

func TestAnswerRunsSanitizedPlan(t *testing.T) {
	client := new(mocks.TextClient)
	client.On("Plan", mock.Anything, mock.Anything).Return(map[string]interface{}{
		"intent": "risk overview",
		"operations": []interface{}{
			map[string]interface{}{"op": "kpis_slice"},
			map[string]interface{}{"op": "top_risk_customers", "top_n": float64(1)},
		},
	}, nil)

	var narrated assistant.NarrateRequest

	client.On("Narrate", mock.Anything, mock.MatchedBy(func(req assistant.NarrateRequest) bool {
		narrated = req
		return true
	})).Return("Dormant customers in Quebec carry most of the risk.", nil)

	svc := assistant.NewServiceWithClient(logger.FromContext, client)

	rows := fixtureRows()

	answer, err := svc.Answer(context.Background(), "where is my churn risk?", domain.Filters{}, rows, rows)
	require.NoError(t, err)

	assert.Equal(t, "Dormant customers in Quebec carry most of the risk.", answer.Text)
	require.Len(t, answer.Plan, 2)
	assert.Equal(t, aggregation.OpKPIsSlice, answer.Plan[0].Op)
	assert.Equal(t, aggregation.OpTopRiskCustomers, answer.Plan[1].Op)

	assert.Contains(t, answer.Results, "kpis_slice")
	assert.Contains(t, answer.Results, "top_risk_customers")

	// The narrator received exactly the computed results.
	assert.Equal(t, answer.Results, narrated.Results)
	client.AssertExpectations(t)
}

func TestAnswerPlannerFailureUsesDefaultPlan(t *testing.T) {
	client := new(mocks.TextClient)
	client.On("Plan", mock.Anything, mock.Anything).Return(nil, errors.New("planner quota exceeded"))
	client.On("Narrate", mock.Anything, mock.Anything).Return("Here is the overview.", nil)

	svc := assistant.NewServiceWithClient(logger.FromContext, client)

	rows := fixtureRows()

	answer, err := svc.Answer(context.Background(), "overview please", domain.Filters{}, rows, rows)
	require.NoError(t, err)

	assert.Equal(t, plan.DefaultPlan(), answer.Plan)
	assert.Len(t, answer.Results, len(plan.DefaultPlan()))
}

func TestAnswerMalformedPlanUsesDefaultPlan(t *testing.T) {
	client := new(mocks.TextClient)
	client.On("Plan", mock.Anything, mock.Anything).Return("SELECT * FROM customers", nil)
	client.On("Narrate", mock.Anything, mock.Anything).Return("Here is the overview.", nil)

	svc := assistant.NewServiceWithClient(logger.FromContext, client)

	rows := fixtureRows()

	answer, err := svc.Answer(context.Background(), "overview please", domain.Filters{}, rows, rows)
	require.NoError(t, err)

	assert.Equal(t, plan.DefaultPlan(), answer.Plan)
}

func TestAnswerNarratorFailureIsTerminal(t *testing.T) {
	client := new(mocks.TextClient)
	client.On("Plan", mock.Anything, mock.Anything).Return(map[string]interface{}{
		"operations": []interface{}{
			map[string]interface{}{"op": "kpis_slice"},
		},
	}, nil)
	client.On("Narrate", mock.Anything, mock.Anything).Return("", assistant.ErrAssistantUnavailable)

	svc := assistant.NewServiceWithClient(logger.FromContext, client)

	rows := fixtureRows()

	_, err := svc.Answer(context.Background(), "overview please", domain.Filters{}, rows, rows)
	assert.ErrorIs(t, err, assistant.ErrAssistantUnavailable)
}
