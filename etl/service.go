// Package etl loads raw loyalty files from the landing bucket, normalizes
// them and materializes the derived customer feature table. Every run is a
// full recompute over the current batch.
package etl

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/skywardair/customer-analytics/common"
	"github.com/skywardair/customer-analytics/etl/dal"
	"github.com/skywardair/customer-analytics/etl/features"
	"github.com/skywardair/customer-analytics/etl/normalize"
	"github.com/skywardair/customer-analytics/framework/connection"
	"github.com/skywardair/customer-analytics/logger"
)

// ErrUnknownRawFile is returned for upload targets outside the known set of
// raw loyalty objects.
var ErrUnknownRawFile = errors.New("unknown raw file")

type Service struct {
	loggerProvider logger.Provider
	conn           *connection.Connection
}

func NewService(loggerProvider logger.Provider, conn *connection.Connection) *Service {
	return &Service{
		loggerProvider,
		conn,
	}
}

// BuildSummary reports what a feature-build run produced.
type BuildSummary struct {
	ActivityRecords int       `json:"activityRecords"`
	HistoryRecords  int       `json:"historyRecords"`
	Customers       int       `json:"customers"`
	ReferenceDate   time.Time `json:"referenceDate"`
}

// UploadRawFile lands a raw CSV on the data bucket unless the object already
// exists. Returns true if the file was written.
func (s *Service) UploadRawFile(ctx context.Context, objectName string, body io.Reader) (bool, error) {
	l := s.loggerProvider(ctx)

	storageDAL := dal.NewLoyaltyStorageDAL(s.conn.CloudStorage(ctx))

	uploaded, err := storageDAL.UploadObjectIfAbsent(ctx, objectName, "text/csv", body)
	if err != nil {
		l.Errorf("failed to upload %s: %v", objectName, err)
		return false, err
	}

	if !uploaded {
		l.Infof("%s already exists, skipping upload", objectName)
	}

	return uploaded, nil
}

// BuildFeatures reads the raw activity and history files, derives the
// feature table and replaces the persisted copy.
func (s *Service) BuildFeatures(ctx context.Context) (*BuildSummary, error) {
	l := s.loggerProvider(ctx)

	storageDAL := dal.NewLoyaltyStorageDAL(s.conn.CloudStorage(ctx))

	activityRows, err := storageDAL.ReadCSVObject(ctx, common.RawFlightActivityObject)
	if err != nil {
		l.Errorf("failed to read flight activity: %v", err)
		return nil, err
	}

	historyRows, err := storageDAL.ReadCSVObject(ctx, common.RawLoyaltyHistoryObject)
	if err != nil {
		l.Errorf("failed to read loyalty history: %v", err)
		return nil, err
	}

	activity, err := normalize.FlightActivity(activityRows)
	if err != nil {
		l.Errorf("flight activity schema error: %v", err)
		return nil, err
	}

	history, err := normalize.LoyaltyHistory(historyRows)
	if err != nil {
		l.Errorf("loyalty history schema error: %v", err)
		return nil, err
	}

	reference := features.MaxActivityDate(activity)

	rows, err := features.Build(activity, history, reference)
	if err != nil {
		l.Errorf("feature build failed: %v", err)
		return nil, err
	}

	analyticsDAL := dal.NewAnalyticsBigQueryDAL(s.conn.Bigquery(ctx), s.conn.CloudStorage(ctx))

	if err := analyticsDAL.SaveFeatureRows(ctx, rows); err != nil {
		l.Errorf("failed to save feature table: %v", err)
		return nil, err
	}

	l.Infof("feature table rebuilt: %d customers from %d activity and %d history records",
		len(rows), len(activity), len(history))

	return &BuildSummary{
		ActivityRecords: len(activity),
		HistoryRecords:  len(history),
		Customers:       len(rows),
		ReferenceDate:   reference,
	}, nil
}
