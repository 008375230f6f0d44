package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skywardair/customer-analytics/common"
	etlservice "github.com/skywardair/customer-analytics/etl"
	"github.com/skywardair/customer-analytics/framework/connection"
	"github.com/skywardair/customer-analytics/framework/web"
	"github.com/skywardair/customer-analytics/logger"
)

type ETL struct {
	loggerProvider logger.Provider
	service        *etlservice.Service
}

func NewETL(ctx context.Context, log logger.Provider, conn *connection.Connection) *ETL {
	return &ETL{
		log,
		etlservice.NewService(log, conn),
	}
}

var rawObjects = map[string]string{
	"flight-activity": common.RawFlightActivityObject,
	"loyalty-history": common.RawLoyaltyHistoryObject,
}

// UploadRawFile lands the request body as one of the known raw CSV objects.
// The upload is skipped when the object already exists.
func (h *ETL) UploadRawFile(ctx *gin.Context) error {
	objectName, ok := rawObjects[ctx.Param("file")]
	if !ok {
		return web.NewRequestError(etlservice.ErrUnknownRawFile, http.StatusBadRequest)
	}

	uploaded, err := h.service.UploadRawFile(ctx, objectName, ctx.Request.Body)
	if err != nil {
		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, map[string]interface{}{
		"object":   objectName,
		"uploaded": uploaded,
	}, http.StatusOK)
}

// BuildFeatures runs a full feature-table recompute over the current batch.
func (h *ETL) BuildFeatures(ctx *gin.Context) error {
	summary, err := h.service.BuildFeatures(ctx)
	if err != nil {
		return web.Respond(ctx, err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, summary, http.StatusOK)
}
