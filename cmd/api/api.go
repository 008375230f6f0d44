package api

import (
	"context"
	"net/http"
	"os"

	etlHandlers "github.com/skywardair/customer-analytics/etl/handlers"
	"github.com/skywardair/customer-analytics/framework/connection"
	"github.com/skywardair/customer-analytics/framework/mid"
	"github.com/skywardair/customer-analytics/framework/web"
	insightsHandlers "github.com/skywardair/customer-analytics/insights/handlers"
	"github.com/skywardair/customer-analytics/logger"
	scoringHandlers "github.com/skywardair/customer-analytics/scoring/handlers"
)

// API constructs an api with the needed functionality.
type API struct {
	shutdown chan os.Signal
	log      *logger.Logging
	conn     *connection.Connection
}

func NewAPI(shutdown chan os.Signal, logging *logger.Logging, conn *connection.Connection) *API {
	return &API{
		shutdown,
		logging,
		conn,
	}
}

// Build builds the api endpoints with the needed middlewares, and returns http.Handler interface.
func (a *API) Build() http.Handler {
	loggerProvider := logger.FromContext

	backgroundContext := context.Background()

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(a.shutdown, a.conn, mid.Logger(), mid.Errors(), mid.Panics(), mid.Sentry())

	etl := etlHandlers.NewETL(backgroundContext, loggerProvider, a.conn)
	scoring := scoringHandlers.NewScoring(backgroundContext, loggerProvider, a.conn)
	insights := insightsHandlers.NewInsights(backgroundContext, loggerProvider, a.conn)

	// SCHEDULED OR CLOUD TASKS
	app.Post("/tasks/etl/upload/:file", etl.UploadRawFile)
	app.Post("/tasks/etl/build-features", etl.BuildFeatures)
	app.Post("/tasks/scoring/prepare", scoring.PrepareTrainingInput)
	app.Post("/tasks/scoring/ingest", scoring.IngestRun)

	// DASHBOARD API
	app.Get("/api/insights/kpis", insights.GetKPIs)
	app.Get("/api/insights/summary/:group", insights.GetSummary)
	app.Get("/api/insights/top-risk", insights.GetTopRisk)
	app.Get("/api/insights/filter-values", insights.GetFilterValues)
	app.Get("/api/scoring/metrics", scoring.GetLatestRunMetrics)

	// NATURAL LANGUAGE QUERY LAYER
	app.Post("/api/insights/query", insights.Query)
	app.Post("/api/insights/filters", insights.SetFilters)

	return app
}
