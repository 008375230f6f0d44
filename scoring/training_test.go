package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
	"github.com/skywardair/customer-analytics/scoring/domain"
)

func TestChurnLabel(t *testing.T) {
	tests := []struct {
		name      string
		row       etldomain.CustomerFeatureRow
		threshold int
		want      int
	}{
		{
			name:      "active recent customer",
			row:       etldomain.CustomerFeatureRow{Recency: 1},
			threshold: 3,
			want:      0,
		},
		{
			name:      "cancelled customer regardless of recency",
			row:       etldomain.CustomerFeatureRow{Recency: 0, IsCancelled: true},
			threshold: 3,
			want:      1,
		},
		{
			name:      "recency at threshold",
			row:       etldomain.CustomerFeatureRow{Recency: 3},
			threshold: 3,
			want:      1,
		},
		{
			name:      "recency below threshold",
			row:       etldomain.CustomerFeatureRow{Recency: 2},
			threshold: 3,
			want:      0,
		},
		{
			name:      "higher threshold keeps stale customer active",
			row:       etldomain.CustomerFeatureRow{Recency: 5},
			threshold: 6,
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChurnLabel(tt.row, tt.threshold))
		})
	}
}

func TestBuildTrainingInput(t *testing.T) {
	rows := []etldomain.CustomerFeatureRow{
		{LoyaltyNumber: 1, Recency: 0},
		{LoyaltyNumber: 2, Recency: 8},
		{LoyaltyNumber: 3, IsCancelled: true},
	}

	input, err := BuildTrainingInput(rows, 3)
	require.NoError(t, err)
	require.Len(t, input, 3)

	assert.Equal(t, 0, input[0].ChurnLabel)
	assert.Equal(t, 1, input[1].ChurnLabel)
	assert.Equal(t, 1, input[2].ChurnLabel)

	assert.InDelta(t, 2.0/3.0, ChurnRate(input), 1e-9)
}

func TestBuildTrainingInputEmpty(t *testing.T) {
	_, err := BuildTrainingInput(nil, 3)
	assert.ErrorIs(t, err, domain.ErrNoFeatureRows)
}
