package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skywardair/customer-analytics/framework/connection"
	"github.com/skywardair/customer-analytics/framework/web"
	insightsservice "github.com/skywardair/customer-analytics/insights"
	"github.com/skywardair/customer-analytics/insights/aggregation"
	"github.com/skywardair/customer-analytics/insights/assistant"
	"github.com/skywardair/customer-analytics/insights/domain"
	"github.com/skywardair/customer-analytics/logger"
)

type Insights struct {
	loggerProvider logger.Provider
	service        *insightsservice.Service
}

func NewInsights(ctx context.Context, log logger.Provider, conn *connection.Connection) *Insights {
	return &Insights{
		log,
		insightsservice.NewService(log, conn),
	}
}

func filtersFromQuery(ctx *gin.Context) domain.Filters {
	return domain.Filters{
		Province: ctx.Query("province"),
		Segment:  ctx.Query("segment"),
	}
}

func intQuery(ctx *gin.Context, key string) int {
	n, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return 0
	}

	return n
}

// GetKPIs serves the KPI tiles for the current filter state.
func (h *Insights) GetKPIs(ctx *gin.Context) error {
	result, err := h.service.KPIs(ctx, filtersFromQuery(ctx))
	if err != nil {
		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, result, http.StatusOK)
}

// GetSummary serves a grouped summary; the group is a path parameter.
func (h *Insights) GetSummary(ctx *gin.Context) error {
	params := aggregation.Params{
		TopN:      intQuery(ctx, "top_n"),
		SortBy:    ctx.Query("sort_by"),
		Ascending: ctx.Query("ascending") == "true",
	}

	result, err := h.service.Summary(ctx, ctx.Param("group"), filtersFromQuery(ctx), params)
	if err != nil {
		if errors.Is(err, insightsservice.ErrUnknownGroup) {
			return web.NewRequestError(err, http.StatusBadRequest)
		}

		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, result, http.StatusOK)
}

// GetTopRisk serves the highest churn-score customers.
func (h *Insights) GetTopRisk(ctx *gin.Context) error {
	result, err := h.service.TopRisk(ctx, filtersFromQuery(ctx), intQuery(ctx, "top_n"))
	if err != nil {
		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, result, http.StatusOK)
}

// GetFilterValues serves the distinct values for the filter controls.
func (h *Insights) GetFilterValues(ctx *gin.Context) error {
	values, err := h.service.FilterValues(ctx)
	if err != nil {
		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, values, http.StatusOK)
}

// QueryRequest is a natural-language question in a session's context.
type QueryRequest struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question" binding:"required"`
}

// Query answers a free-text business question.
func (h *Insights) Query(ctx *gin.Context) error {
	var req QueryRequest
	if err := ctx.BindJSON(&req); err != nil {
		return web.Respond(ctx, err, http.StatusBadRequest)
	}

	result, err := h.service.Query(ctx, req.SessionID, req.Question)
	if err != nil {
		if errors.Is(err, assistant.ErrAssistantUnavailable) {
			// Scoped to this query; the session stays usable.
			return web.NewRequestError(err, http.StatusServiceUnavailable)
		}

		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, result, http.StatusOK)
}

// FiltersRequest sets a session's active filters.
type FiltersRequest struct {
	SessionID string         `json:"sessionId"`
	Filters   domain.Filters `json:"filters"`
}

// SetFilters updates the session's filter state.
func (h *Insights) SetFilters(ctx *gin.Context) error {
	var req FiltersRequest
	if err := ctx.BindJSON(&req); err != nil {
		return web.Respond(ctx, err, http.StatusBadRequest)
	}

	sess, err := h.service.SetFilters(ctx, req.SessionID, req.Filters)
	if err != nil {
		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, sess, http.StatusOK)
}
