package connection

import (
	"context"
	"errors"

	"cloud.google.com/go/bigquery"

	"github.com/skywardair/customer-analytics/common"
	"github.com/skywardair/customer-analytics/logger"
)

var (
	ErrBigqueryInitialization = errors.New("bigquery initialization error")
)

type BigQueryClient struct {
	bq *bigquery.Client
}

func NewBigQuery(ctx context.Context, log *logger.Logging) (*BigQueryClient, error) {
	logger := log.Logger(ctx)

	bq, err := bigquery.NewClient(ctx, common.ProjectID)
	if err != nil {
		logger.Errorf("%s: %s", ErrBigqueryInitialization, err)
		return nil, ErrBigqueryInitialization
	}

	return &BigQueryClient{
		bq: bq,
	}, nil
}
