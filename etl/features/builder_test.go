package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywardair/customer-analytics/etl/domain"
	"github.com/skywardair/customer-analytics/times"
)

func intPtr(v int) *int {
	return &v
}

func historyRecord(loyaltyNumber int64) domain.LoyaltyHistoryRecord {
	return domain.LoyaltyHistoryRecord{
		LoyaltyNumber:   loyaltyNumber,
		Province:        "Ontario",
		City:            "Toronto",
		Gender:          "Female",
		Education:       "Bachelor",
		LoyaltyCard:     "Aurora",
		CLV:             5000,
		EnrollmentYear:  2015,
		EnrollmentMonth: 1,
	}
}

func TestBuildRFMFixture(t *testing.T) {
	// Customer A flies in months 1..3 of 2017 with 2, 0 and 5 flights over
	// 100, 0 and 400 distance; the global max period is month 3.
	activity := []domain.FlightActivityRecord{
		{LoyaltyNumber: 1, Year: 2017, Month: 1, TotalFlights: 2, Distance: 100},
		{LoyaltyNumber: 1, Year: 2017, Month: 2, TotalFlights: 0, Distance: 0},
		{LoyaltyNumber: 1, Year: 2017, Month: 3, TotalFlights: 5, Distance: 400},
	}
	history := []domain.LoyaltyHistoryRecord{historyRecord(1)}

	reference := MaxActivityDate(activity)
	assert.Equal(t, times.MonthStart(2017, 3), reference)

	rows, err := Build(activity, history, reference)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	a := rows[0]
	assert.Equal(t, 0, a.Recency)
	assert.Equal(t, int64(7), a.Frequency)
	assert.Equal(t, 500.0, a.Monetary)
	assert.Equal(t, 5, a.RScore)
}

func TestBuildRecencyRelativeToMaxPeriod(t *testing.T) {
	activity := []domain.FlightActivityRecord{
		{LoyaltyNumber: 1, Year: 2017, Month: 10, TotalFlights: 1, Distance: 100},
		{LoyaltyNumber: 2, Year: 2017, Month: 4, TotalFlights: 3, Distance: 900},
		// Zero-flight period after customer 2's last flight does not count.
		{LoyaltyNumber: 2, Year: 2017, Month: 9, TotalFlights: 0, Distance: 0},
	}
	history := []domain.LoyaltyHistoryRecord{historyRecord(1), historyRecord(2)}

	rows, err := Build(activity, history, MaxActivityDate(activity))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 0, rows[0].Recency)
	assert.Equal(t, 6, rows[1].Recency)
}

func TestBuildZeroActivitySentinel(t *testing.T) {
	activity := []domain.FlightActivityRecord{
		{LoyaltyNumber: 1, Year: 2017, Month: 1, TotalFlights: 1, Distance: 100},
		{LoyaltyNumber: 1, Year: 2017, Month: 8, TotalFlights: 2, Distance: 300},
		{LoyaltyNumber: 2, Year: 2017, Month: 2, TotalFlights: 4, Distance: 800},
	}
	history := []domain.LoyaltyHistoryRecord{
		historyRecord(1),
		historyRecord(2),
		historyRecord(3), // never flew
		historyRecord(4), // only zero-flight periods
	}
	activity = append(activity, domain.FlightActivityRecord{
		LoyaltyNumber: 4, Year: 2017, Month: 5, TotalFlights: 0, Distance: 0,
	})

	rows, err := Build(activity, history, MaxActivityDate(activity))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byNumber := make(map[int64]domain.CustomerFeatureRow)
	for _, r := range rows {
		byNumber[r.LoyaltyNumber] = r
	}

	// Max finite recency is customer 2's 6 months, so the sentinel is 7 and
	// strictly greater than every other recency in the batch.
	assert.Equal(t, 0, byNumber[1].Recency)
	assert.Equal(t, 6, byNumber[2].Recency)
	assert.Equal(t, 7, byNumber[3].Recency)
	assert.Equal(t, 7, byNumber[4].Recency)

	assert.Equal(t, int64(0), byNumber[3].Frequency)
	assert.Equal(t, 0.0, byNumber[3].Monetary)

	// Customer 4 logged a zero-flight period: counted for nothing.
	assert.Equal(t, int64(0), byNumber[4].Frequency)
	assert.Equal(t, 0.0, byNumber[4].Monetary)
}

func TestBuildDropsCustomersMissingFromHistory(t *testing.T) {
	activity := []domain.FlightActivityRecord{
		{LoyaltyNumber: 1, Year: 2017, Month: 1, TotalFlights: 1, Distance: 100},
		{LoyaltyNumber: 99, Year: 2017, Month: 1, TotalFlights: 9, Distance: 9000},
	}
	history := []domain.LoyaltyHistoryRecord{historyRecord(1)}

	rows, err := Build(activity, history, MaxActivityDate(activity))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].LoyaltyNumber)
}

func TestBuildTenure(t *testing.T) {
	activity := []domain.FlightActivityRecord{
		{LoyaltyNumber: 1, Year: 2018, Month: 6, TotalFlights: 1, Distance: 100},
	}

	enrolled := historyRecord(1) // enrolled 2015-01
	cancelled := historyRecord(2)
	cancelled.CancellationYear = intPtr(2016)
	cancelled.CancellationMonth = intPtr(7)

	// Enrollment after the reference date floors tenure at zero.
	future := historyRecord(3)
	future.EnrollmentYear = 2019
	future.EnrollmentMonth = 1

	rows, err := Build(activity,
		[]domain.LoyaltyHistoryRecord{enrolled, cancelled, future},
		MaxActivityDate(activity),
	)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 41, rows[0].TenureMonths) // 2015-01 .. 2018-06
	assert.True(t, rows[0].TenureMonths >= 0)
	assert.False(t, rows[0].IsCancelled)

	assert.Equal(t, 18, rows[1].TenureMonths) // 2015-01 .. 2016-07
	assert.True(t, rows[1].IsCancelled)

	assert.Equal(t, 0, rows[2].TenureMonths)
}

// Tenure strictly increases with the gap between reference and enrollment
// for non-cancelled customers.
func TestBuildTenureMonotonic(t *testing.T) {
	activity := []domain.FlightActivityRecord{
		{LoyaltyNumber: 1, Year: 2018, Month: 6, TotalFlights: 1, Distance: 100},
	}

	prev := -1

	for months := 0; months < 24; months++ {
		h := historyRecord(1)
		h.EnrollmentYear = 2016
		h.EnrollmentMonth = 6
		reference := times.MonthStart(2016, 6).AddDate(0, months, 0)

		rows, err := Build(activity, []domain.LoyaltyHistoryRecord{h}, reference)
		require.NoError(t, err)

		assert.Greater(t, rows[0].TenureMonths, prev)
		prev = rows[0].TenureMonths
	}
}

// Re-running the builder on an unchanged batch yields identical rows.
func TestBuildIdempotent(t *testing.T) {
	activity := []domain.FlightActivityRecord{
		{LoyaltyNumber: 3, Year: 2017, Month: 1, TotalFlights: 2, Distance: 500},
		{LoyaltyNumber: 1, Year: 2017, Month: 3, TotalFlights: 1, Distance: 120},
		{LoyaltyNumber: 2, Year: 2017, Month: 2, TotalFlights: 6, Distance: 2400},
		{LoyaltyNumber: 5, Year: 2016, Month: 11, TotalFlights: 4, Distance: 1700},
	}
	history := []domain.LoyaltyHistoryRecord{
		historyRecord(1),
		historyRecord(2),
		historyRecord(3),
		historyRecord(4),
		historyRecord(5),
	}

	reference := MaxActivityDate(activity)

	first, err := Build(activity, history, reference)
	require.NoError(t, err)

	second, err := Build(activity, history, reference)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildDuplicateHistoryFirstWins(t *testing.T) {
	activity := []domain.FlightActivityRecord{
		{LoyaltyNumber: 1, Year: 2017, Month: 1, TotalFlights: 1, Distance: 100},
	}

	first := historyRecord(1)
	first.Province = "Ontario"
	dup := historyRecord(1)
	dup.Province = "Quebec"

	rows, err := Build(activity, []domain.LoyaltyHistoryRecord{first, dup}, MaxActivityDate(activity))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ontario", rows[0].Province)
}

func TestBuildEmptyInputs(t *testing.T) {
	_, err := Build(nil, []domain.LoyaltyHistoryRecord{historyRecord(1)}, times.MonthStart(2017, 1))
	assert.ErrorIs(t, err, domain.ErrNoActivityRecords)

	_, err = Build([]domain.FlightActivityRecord{
		{LoyaltyNumber: 1, Year: 2017, Month: 1, TotalFlights: 1, Distance: 1},
	}, nil, times.MonthStart(2017, 1))
	assert.ErrorIs(t, err, domain.ErrNoHistoryRecords)
}
