package slice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindIndex(t *testing.T) {
	vs := []string{"province", "rfm_segment", "loyalty_card"}

	assert.Equal(t, 1, FindIndex(vs, "rfm_segment"))
	assert.Equal(t, -1, FindIndex(vs, "gender"))
}

func TestContains(t *testing.T) {
	vs := []string{"avg_clv", "avg_churn_score"}

	assert.True(t, Contains(vs, "avg_clv"))
	assert.False(t, Contains(vs, "customers"))
	assert.False(t, Contains(nil, "customers"))
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"Ontario", "Quebec", "Ontario", "Alberta", "Quebec"})

	assert.Equal(t, []string{"Ontario", "Quebec", "Alberta"}, got)
}
