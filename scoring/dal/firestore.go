package dal

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/skywardair/customer-analytics/scoring/domain"
)

// ErrNoRuns is returned when no scoring run has been recorded yet.
var ErrNoRuns = errors.New("no scoring runs recorded")

// ScoringFirestoreDAL stores per-run training metrics.
type ScoringFirestoreDAL struct {
	fs *firestore.Client
}

func NewScoringFirestoreDAL(fs *firestore.Client) *ScoringFirestoreDAL {
	return &ScoringFirestoreDAL{fs: fs}
}

func (d *ScoringFirestoreDAL) runsCollection() *firestore.CollectionRef {
	return d.fs.Collection("app").Doc("scoring").Collection("runs")
}

// SaveRunMetrics records one scoring run's quality report.
func (d *ScoringFirestoreDAL) SaveRunMetrics(ctx context.Context, metrics domain.RunMetrics) error {
	_, err := d.runsCollection().Doc(metrics.RunID).Set(ctx, metrics)
	return err
}

// GetLatestRunMetrics returns the most recent scoring run's metrics.
func (d *ScoringFirestoreDAL) GetLatestRunMetrics(ctx context.Context) (*domain.RunMetrics, error) {
	docSnap, err := d.runsCollection().
		OrderBy("timestamp", firestore.Desc).
		Limit(1).
		Documents(ctx).
		Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNoRuns
	}

	if err != nil {
		return nil, err
	}

	var metrics domain.RunMetrics
	if err := docSnap.DataTo(&metrics); err != nil {
		return nil, err
	}

	return &metrics, nil
}
