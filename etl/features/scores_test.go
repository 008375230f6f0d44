package features

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skywardair/customer-analytics/etl/domain"
)

func TestRScore(t *testing.T) {
	tests := []struct {
		recency int
		want    int
	}{
		{0, 5},
		{1, 5},
		{2, 4},
		{3, 4},
		{4, 3},
		{6, 3},
		{7, 2},
		{12, 2},
		{13, 1},
		{24, 1},
		{25, 1},
		{100, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RScore(tt.recency), "recency %d", tt.recency)
	}
}

func TestQuintileScore(t *testing.T) {
	bounds := QuintileBounds([]float64{1, 2, 3, 4, 5})

	assert.Equal(t, 1, QuintileScore(1, bounds))
	assert.Equal(t, 2, QuintileScore(2, bounds))
	assert.Equal(t, 3, QuintileScore(3, bounds))
	assert.Equal(t, 4, QuintileScore(4, bounds))
	assert.Equal(t, 5, QuintileScore(5, bounds))

	// Values on a boundary fall into the lower bin.
	assert.Equal(t, 2, QuintileScore(1.5, bounds))
}

func TestSegmentRule(t *testing.T) {
	tests := []struct {
		r, f, m int
		want    string
	}{
		{5, 5, 5, domain.SegmentChampions},
		{4, 4, 4, domain.SegmentChampions},
		// Fails Champions on m < 4, passes Loyal on r >= 3 and f >= 3.
		{5, 5, 3, domain.SegmentLoyal},
		{3, 3, 1, domain.SegmentLoyal},
		{2, 3, 5, domain.SegmentAtRisk},
		{1, 5, 5, domain.SegmentAtRisk},
		{2, 2, 5, domain.SegmentDormant},
		{1, 1, 1, domain.SegmentDormant},
		{4, 2, 5, domain.SegmentPotential},
		{5, 1, 1, domain.SegmentPotential},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Segment(tt.r, tt.f, tt.m), "r=%d f=%d m=%d", tt.r, tt.f, tt.m)
	}
}

// Every integer triple in [1,5]^3 matches exactly one branch, and the same
// triple always yields the same segment.
func TestSegmentRuleExhaustive(t *testing.T) {
	for r := 1; r <= 5; r++ {
		for f := 1; f <= 5; f++ {
			for m := 1; m <= 5; m++ {
				got := Segment(r, f, m)
				assert.Contains(t, domain.Segments, got)
				assert.Equal(t, got, Segment(r, f, m))
			}
		}
	}
}
