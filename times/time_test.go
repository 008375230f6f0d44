package times

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthsDiff(t *testing.T) {
	tests := []struct {
		name    string
		later   time.Time
		earlier time.Time
		want    int
	}{
		{
			name:    "same month",
			later:   MonthStart(2017, 12),
			earlier: MonthStart(2017, 12),
			want:    0,
		},
		{
			name:    "within one year",
			later:   MonthStart(2018, 3),
			earlier: MonthStart(2017, 12),
			want:    3,
		},
		{
			name:    "across multiple years",
			later:   MonthStart(2018, 12),
			earlier: MonthStart(2013, 2),
			want:    70,
		},
		{
			name:    "negative difference",
			later:   MonthStart(2017, 1),
			earlier: MonthStart(2017, 6),
			want:    -5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsDiff(tt.later, tt.earlier))
		})
	}
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(2018, 7)

	assert.Equal(t, 2018, got.Year())
	assert.Equal(t, time.July, got.Month())
	assert.Equal(t, 1, got.Day())
	assert.Equal(t, time.UTC, got.Location())
}

func TestPrevMonth(t *testing.T) {
	year, month := PrevMonth(time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2017", year)
	assert.Equal(t, "12", month)
}
