package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skywardair/customer-analytics/framework/connection"
	"github.com/skywardair/customer-analytics/framework/web"
	"github.com/skywardair/customer-analytics/logger"
	scoringservice "github.com/skywardair/customer-analytics/scoring"
	"github.com/skywardair/customer-analytics/scoring/dal"
)

type Scoring struct {
	loggerProvider logger.Provider
	service        *scoringservice.Service
}

func NewScoring(ctx context.Context, log logger.Provider, conn *connection.Connection) *Scoring {
	return &Scoring{
		log,
		scoringservice.NewService(log, conn),
	}
}

// PrepareTrainingInput materializes the labeled training table and triggers
// the classifier job.
func (h *Scoring) PrepareTrainingInput(ctx *gin.Context) error {
	churnRate, err := h.service.PrepareTrainingInput(ctx)
	if err != nil {
		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, map[string]interface{}{
		"churnRate": churnRate,
	}, http.StatusOK)
}

// IngestRun receives the classifier job's predictions and metrics.
func (h *Scoring) IngestRun(ctx *gin.Context) error {
	var run scoringservice.ScoringRun
	if err := ctx.BindJSON(&run); err != nil {
		return web.Respond(ctx, err, http.StatusBadRequest)
	}

	metrics, err := h.service.IngestRun(ctx, run)
	if err != nil {
		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, metrics, http.StatusOK)
}

// GetLatestRunMetrics serves the most recent run's quality report.
func (h *Scoring) GetLatestRunMetrics(ctx *gin.Context) error {
	metrics, err := h.service.GetLatestRunMetrics(ctx)
	if err != nil {
		if errors.Is(err, dal.ErrNoRuns) {
			return web.NewRequestError(err, http.StatusNotFound)
		}

		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, metrics, http.StatusOK)
}
