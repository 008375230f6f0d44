// Package insights serves the analytics surface over the scored customer
// table: KPI tiles, grouped summaries, top-risk listings and the
// natural-language query layer.
package insights

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	etldal "github.com/skywardair/customer-analytics/etl/dal"
	etldomain "github.com/skywardair/customer-analytics/etl/domain"
	"github.com/skywardair/customer-analytics/framework/connection"
	"github.com/skywardair/customer-analytics/insights/aggregation"
	"github.com/skywardair/customer-analytics/insights/assistant"
	"github.com/skywardair/customer-analytics/insights/domain"
	"github.com/skywardair/customer-analytics/insights/session"
	"github.com/skywardair/customer-analytics/logger"
	"github.com/skywardair/customer-analytics/slice"
)

// ErrUnknownGroup is returned for summary groupings outside the known set.
var ErrUnknownGroup = errors.New("unknown summary grouping")

// scoredCacheTTL bounds staleness of the in-process scored-table cache.
// Recomputing is always safe, merely costly; staleness inside this window
// is an accepted tradeoff.
const scoredCacheTTL = 10 * time.Minute

type Service struct {
	loggerProvider logger.Provider
	conn           *connection.Connection
	assistant      *assistant.Service
	sessions       *session.Service

	cacheMu  sync.Mutex
	cached   []etldomain.ScoredCustomerRow
	cachedAt time.Time
}

func NewService(loggerProvider logger.Provider, conn *connection.Connection) *Service {
	return &Service{
		loggerProvider: loggerProvider,
		conn:           conn,
		assistant:      assistant.NewService(loggerProvider),
		sessions:       session.NewService(loggerProvider, conn),
	}
}

// scoredRows returns the scored table, served from the time-bounded cache
// when fresh.
func (s *Service) scoredRows(ctx context.Context) ([]etldomain.ScoredCustomerRow, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.cached != nil && time.Since(s.cachedAt) < scoredCacheTTL {
		return s.cached, nil
	}

	analyticsDAL := etldal.NewAnalyticsBigQueryDAL(s.conn.Bigquery(ctx), s.conn.CloudStorage(ctx))

	rows, err := analyticsDAL.GetScoredRows(ctx)
	if err != nil {
		return nil, err
	}

	s.cached = rows
	s.cachedAt = time.Now()

	return rows, nil
}

// KPIs computes the tile block for the filtered slice next to the baseline.
func (s *Service) KPIs(ctx context.Context, filters domain.Filters) (interface{}, error) {
	baseline, err := s.scoredRows(ctx)
	if err != nil {
		return nil, err
	}

	sliceRows := filters.Apply(baseline)

	sliceResult, err := aggregation.Execute(aggregation.Request{Op: aggregation.OpKPIsSlice}, sliceRows, baseline)
	if err != nil {
		return nil, err
	}

	baselineResult, err := aggregation.Execute(aggregation.Request{Op: aggregation.OpKPIsBaseline}, sliceRows, baseline)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"slice":    sliceResult,
		"baseline": baselineResult,
	}, nil
}

var summaryOps = map[string]aggregation.Op{
	"segment":  aggregation.OpSummaryBySegment,
	"province": aggregation.OpSummaryByProvince,
	"card":     aggregation.OpSummaryByCard,
	"gender":   aggregation.OpSummaryByGender,
}

// Summary computes a grouped summary over the filtered slice. The group is
// one of segment, province, card, gender.
func (s *Service) Summary(ctx context.Context, group string, filters domain.Filters, params aggregation.Params) (interface{}, error) {
	op, ok := summaryOps[group]
	if !ok {
		return nil, ErrUnknownGroup
	}

	baseline, err := s.scoredRows(ctx)
	if err != nil {
		return nil, err
	}

	return aggregation.Execute(aggregation.Request{Op: op, Params: params}, filters.Apply(baseline), baseline)
}

// TopRisk lists the filtered slice's highest churn-score customers. The
// dashboard's risk table shows 50 by default.
func (s *Service) TopRisk(ctx context.Context, filters domain.Filters, topN int) (interface{}, error) {
	if topN == 0 {
		topN = 50
	}

	baseline, err := s.scoredRows(ctx)
	if err != nil {
		return nil, err
	}

	return aggregation.Execute(aggregation.Request{
		Op:     aggregation.OpTopRiskCustomers,
		Params: aggregation.Params{TopN: topN},
	}, filters.Apply(baseline), baseline)
}

// FilterValues lists the distinct values of each filterable column, for the
// filter controls.
func (s *Service) FilterValues(ctx context.Context) (map[string][]string, error) {
	rows, err := s.scoredRows(ctx)
	if err != nil {
		return nil, err
	}

	provinces := make([]string, 0, len(rows))
	segments := make([]string, 0, len(rows))
	cards := make([]string, 0, len(rows))

	for _, r := range rows {
		provinces = append(provinces, r.Province)
		segments = append(segments, r.RFMSegment)
		cards = append(cards, r.LoyaltyCard)
	}

	values := map[string][]string{
		"province":     slice.Unique(provinces),
		"segment":      slice.Unique(segments),
		"loyalty_card": slice.Unique(cards),
	}

	for _, v := range values {
		sort.Strings(v)
	}

	return values, nil
}

// QueryResult is the response to one natural-language question.
type QueryResult struct {
	SessionID string                 `json:"sessionId"`
	Answer    string                 `json:"answer"`
	Plan      []aggregation.Request  `json:"plan"`
	Results   map[string]interface{} `json:"results"`
}

// Query answers a free-text question in the context of a session. The
// session's filters shape the slice, and the exchange is appended to its
// history. An assistant failure is scoped to this query; the session and
// its filters stay usable.
func (s *Service) Query(ctx context.Context, sessionID, question string) (*QueryResult, error) {
	l := s.loggerProvider(ctx)

	sess, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	baseline, err := s.scoredRows(ctx)
	if err != nil {
		return nil, err
	}

	answer, err := s.assistant.Answer(ctx, question, sess.Filters, sess.Filters.Apply(baseline), baseline)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.AppendExchange(ctx, sess, question, answer.Text); err != nil {
		// The answer is already computed; losing one history entry is not
		// worth failing the query.
		l.Errorf("failed to append session history: %v", err)
	}

	return &QueryResult{
		SessionID: sess.ID,
		Answer:    answer.Text,
		Plan:      answer.Plan,
		Results:   answer.Results,
	}, nil
}

// SetFilters updates a session's filter state.
func (s *Service) SetFilters(ctx context.Context, sessionID string, filters domain.Filters) (*domain.Session, error) {
	return s.sessions.SetFilters(ctx, sessionID, filters)
}
