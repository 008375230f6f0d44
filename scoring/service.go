package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/skywardair/customer-analytics/common"
	etldal "github.com/skywardair/customer-analytics/etl/dal"
	"github.com/skywardair/customer-analytics/framework/connection"
	"github.com/skywardair/customer-analytics/logger"
	"github.com/skywardair/customer-analytics/scoring/dal"
	"github.com/skywardair/customer-analytics/scoring/domain"
)

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

// PrepareTrainingInput labels the current feature table and materializes the
// training-input table, then triggers the classifier job via Pub/Sub.
func (s *Service) PrepareTrainingInput(ctx context.Context) (float64, error) {
	l := s.loggerProvider(ctx)

	analyticsDAL := etldal.NewAnalyticsBigQueryDAL(s.conn.Bigquery(ctx), s.conn.CloudStorage(ctx))

	rows, err := analyticsDAL.GetFeatureRows(ctx)
	if err != nil {
		l.Errorf("failed to read feature table: %v", err)
		return 0, err
	}

	input, err := BuildTrainingInput(rows, common.RecencyThreshold)
	if err != nil {
		return 0, err
	}

	scoringDAL := dal.NewScoringBigQueryDAL(s.conn.Bigquery(ctx), s.conn.CloudStorage(ctx))

	if err := scoringDAL.SaveTrainingInput(ctx, input); err != nil {
		l.Errorf("failed to save training input: %v", err)
		return 0, err
	}

	pubsubDAL := dal.NewScoringPubsubDAL(s.conn.Pubsub(ctx))

	messageID, err := pubsubDAL.PublishJob(ctx, domain.JobMessage{
		Dataset:          common.Dataset,
		TrainingTable:    common.TrainingInputTableName,
		RecencyThreshold: common.RecencyThreshold,
	})
	if err != nil {
		return 0, err
	}

	rate := ChurnRate(input)

	l.Infof("training input prepared: %d rows, churn rate %.3f, job message %s",
		len(input), rate, messageID)

	return rate, nil
}

// ScoringRun is the classifier job's callback payload: per-customer
// probabilities plus the run's training metrics.
type ScoringRun struct {
	Predictions []domain.Prediction `json:"predictions"`
	ROCAUC      float64             `json:"rocAuc"`
	PRAUC       float64             `json:"prAuc"`
	ChurnRate   float64             `json:"churnRate"`
}

// IngestRun attaches a scoring run's predictions to the feature table,
// replaces the scored table and records the run metrics.
func (s *Service) IngestRun(ctx context.Context, run ScoringRun) (*domain.RunMetrics, error) {
	l := s.loggerProvider(ctx)

	analyticsDAL := etldal.NewAnalyticsBigQueryDAL(s.conn.Bigquery(ctx), s.conn.CloudStorage(ctx))

	rows, err := analyticsDAL.GetFeatureRows(ctx)
	if err != nil {
		l.Errorf("failed to read feature table: %v", err)
		return nil, err
	}

	scored, err := AttachPredictions(rows, run.Predictions)
	if err != nil {
		return nil, err
	}

	if err := analyticsDAL.SaveScoredRows(ctx, scored); err != nil {
		l.Errorf("failed to save scored table: %v", err)
		return nil, err
	}

	metrics := domain.RunMetrics{
		RunID:            uuid.New().String(),
		ROCAUC:           run.ROCAUC,
		PRAUC:            run.PRAUC,
		ChurnRate:        run.ChurnRate,
		RecencyThreshold: common.RecencyThreshold,
		Customers:        len(scored),
		Timestamp:        time.Now().UTC(),
	}

	fsDAL := dal.NewScoringFirestoreDAL(s.conn.Firestore(ctx))

	if err := fsDAL.SaveRunMetrics(ctx, metrics); err != nil {
		l.Errorf("failed to save run metrics: %v", err)
		return nil, err
	}

	l.Infof("scoring run %s ingested: %d customers scored", metrics.RunID, len(scored))

	return &metrics, nil
}

// GetLatestRunMetrics returns the most recent run's quality report.
func (s *Service) GetLatestRunMetrics(ctx context.Context) (*domain.RunMetrics, error) {
	fsDAL := dal.NewScoringFirestoreDAL(s.conn.Firestore(ctx))
	return fsDAL.GetLatestRunMetrics(ctx)
}
