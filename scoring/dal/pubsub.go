package dal

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/skywardair/customer-analytics/common"
	"github.com/skywardair/customer-analytics/scoring/domain"
)

// ScoringPubsubDAL publishes classifier job triggers.
type ScoringPubsubDAL struct {
	ps *pubsub.Client
}

func NewScoringPubsubDAL(ps *pubsub.Client) *ScoringPubsubDAL {
	return &ScoringPubsubDAL{ps: ps}
}

// PublishJob asks the external classifier to run against the current
// training-input table. Returns the published message ID.
func (d *ScoringPubsubDAL) PublishJob(ctx context.Context, message domain.JobMessage) (string, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return "", err
	}

	result := d.ps.Topic(common.ScoringTopic).Publish(ctx, &pubsub.Message{Data: data})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish scoring job: %w", err)
	}

	return id, nil
}
