// Package assistant answers free-text business questions over the scored
// customer table: plan, sanitize, compute, narrate.
package assistant

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/skywardair/customer-analytics/common"
	etldomain "github.com/skywardair/customer-analytics/etl/domain"
	"github.com/skywardair/customer-analytics/insights/aggregation"
	"github.com/skywardair/customer-analytics/insights/domain"
	"github.com/skywardair/customer-analytics/insights/plan"
	"github.com/skywardair/customer-analytics/logger"
)

// ColumnCatalog names the feature columns the planner may reference.
var ColumnCatalog = []string{
	"loyalty_number",
	"province",
	"city",
	"gender",
	"education",
	"loyalty_card",
	"clv",
	"is_cancelled",
	"tenure_months",
	"recency",
	"frequency",
	"monetary",
	"r_score",
	"f_score",
	"m_score",
	"rfm_segment",
	"churn_probability",
	"churn_score",
}

type Service struct {
	loggerProvider logger.Provider
	client         TextClient
}

func NewService(loggerProvider logger.Provider) *Service {
	return &Service{
		loggerProvider: loggerProvider,
		client:         NewTextClient(common.AssistantBaseURL),
	}
}

// NewServiceWithClient injects the text client; used by tests.
func NewServiceWithClient(loggerProvider logger.Provider, client TextClient) *Service {
	return &Service{
		loggerProvider: loggerProvider,
		client:         client,
	}
}

// Answer is a completed question run: the executed plan, its computed
// results keyed by operation, and the narrator's prose.
type Answer struct {
	Text    string                 `json:"text"`
	Plan    []aggregation.Request  `json:"plan"`
	Results map[string]interface{} `json:"results"`
}

// Answer runs the full pipeline for one question. A planner failure falls
// back to the default plan; per-operation failures are collected without
// aborting siblings, so the narrator always sees partial results. Only a
// narrator failure is terminal for the query.
func (s *Service) Answer(
	ctx context.Context,
	question string,
	filters domain.Filters,
	rows, baseline []etldomain.ScoredCustomerRow,
) (*Answer, error) {
	l := s.loggerProvider(ctx)

	proposed, err := s.client.Plan(ctx, PlanRequest{
		Question: question,
		Filters:  filters,
		Columns:  ColumnCatalog,
	})
	if err != nil {
		l.Warningf("planner failed, using default plan: %v", err)
		proposed = nil
	}

	requests := plan.Sanitize(proposed)

	results, execErrs := s.execute(requests, rows, baseline)
	if execErrs != nil {
		l.Errorf("plan execution errors: %v", execErrs)
	}

	text, err := s.client.Narrate(ctx, NarrateRequest{
		Question: question,
		Results:  results,
	})
	if err != nil {
		l.Errorf("narrator failed: %v", err)
		return nil, err
	}

	return &Answer{
		Text:    text,
		Plan:    requests,
		Results: results,
	}, nil
}

// execute runs every operation in the plan, collecting per-operation errors
// instead of aborting: partial results beat total failure for narration.
func (s *Service) execute(
	requests []aggregation.Request,
	rows, baseline []etldomain.ScoredCustomerRow,
) (map[string]interface{}, error) {
	results := make(map[string]interface{}, len(requests))

	var errs *multierror.Error

	for _, req := range requests {
		result, err := aggregation.Execute(req, rows, baseline)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		results[string(req.Op)] = result
	}

	return results, errs.ErrorOrNil()
}
