// Package normalize standardizes raw tabular loyalty files into typed
// records. Header names are folded to snake_case lowercase, required columns
// are checked up front, and numeric fields are coerced strictly: a value that
// cannot be parsed fails the batch instead of being zero-filled, since silent
// zeros would corrupt the frequency/monetary sums downstream.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/skywardair/customer-analytics/etl/domain"
)

var flightActivityColumns = []string{
	"loyalty_number",
	"year",
	"month",
	"total_flights",
	"distance",
}

var loyaltyHistoryColumns = []string{
	"loyalty_number",
	"province",
	"city",
	"gender",
	"education",
	"loyalty_card",
	"clv",
	"enrollment_year",
	"enrollment_month",
	"cancellation_year",
	"cancellation_month",
}

// Column folds a raw header name to its canonical snake_case form.
func Column(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// header maps canonical column names to their index in the raw header row.
func header(raw []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(raw))
	for i, name := range raw {
		idx[Column(name)] = i
	}

	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, domain.NewMissingColumnError(col)
		}
	}

	return idx, nil
}

func cell(row []string, idx map[string]int, col string) string {
	i := idx[col]
	if i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}

// parseInt coerces a cell to an integer. Integral floats such as "3.0" are
// accepted since upstream exports sometimes widen count columns.
func parseInt(col string, row int, value string) (int64, error) {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, domain.NewBadValueError(col, row, value)
	}

	return int64(f), nil
}

func parseFloat(col string, row int, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.NewBadValueError(col, row, value)
	}

	return f, nil
}

// parseNullableInt returns nil for empty cells, used for the cancellation
// year/month pair.
func parseNullableInt(col string, row int, value string) (*int, error) {
	if value == "" {
		return nil, nil
	}

	n, err := parseInt(col, row, value)
	if err != nil {
		return nil, err
	}

	v := int(n)

	return &v, nil
}

// FlightActivity converts raw CSV rows (header first) into activity records.
func FlightActivity(rows [][]string) ([]domain.FlightActivityRecord, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoActivityRecords
	}

	idx, err := header(rows[0], flightActivityColumns)
	if err != nil {
		return nil, err
	}

	records := make([]domain.FlightActivityRecord, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, counting the header

		loyaltyNumber, err := parseInt("loyalty_number", rowNum, cell(row, idx, "loyalty_number"))
		if err != nil {
			return nil, err
		}

		year, err := parseInt("year", rowNum, cell(row, idx, "year"))
		if err != nil {
			return nil, err
		}

		month, err := parseInt("month", rowNum, cell(row, idx, "month"))
		if err != nil {
			return nil, err
		}

		flights, err := parseInt("total_flights", rowNum, cell(row, idx, "total_flights"))
		if err != nil {
			return nil, err
		}

		if flights < 0 {
			return nil, domain.NewBadValueError("total_flights", rowNum, cell(row, idx, "total_flights"))
		}

		distance, err := parseFloat("distance", rowNum, cell(row, idx, "distance"))
		if err != nil {
			return nil, err
		}

		if distance < 0 {
			return nil, domain.NewBadValueError("distance", rowNum, cell(row, idx, "distance"))
		}

		records = append(records, domain.FlightActivityRecord{
			LoyaltyNumber: loyaltyNumber,
			Year:          int(year),
			Month:         int(month),
			TotalFlights:  flights,
			Distance:      distance,
		})
	}

	if len(records) == 0 {
		return nil, domain.ErrNoActivityRecords
	}

	return records, nil
}

// LoyaltyHistory converts raw CSV rows (header first) into history records.
func LoyaltyHistory(rows [][]string) ([]domain.LoyaltyHistoryRecord, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoHistoryRecords
	}

	idx, err := header(rows[0], loyaltyHistoryColumns)
	if err != nil {
		return nil, err
	}

	records := make([]domain.LoyaltyHistoryRecord, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rowNum := i + 2

		loyaltyNumber, err := parseInt("loyalty_number", rowNum, cell(row, idx, "loyalty_number"))
		if err != nil {
			return nil, err
		}

		clv, err := parseFloat("clv", rowNum, cell(row, idx, "clv"))
		if err != nil {
			return nil, err
		}

		if clv < 0 {
			return nil, domain.NewBadValueError("clv", rowNum, cell(row, idx, "clv"))
		}

		enrollmentYear, err := parseInt("enrollment_year", rowNum, cell(row, idx, "enrollment_year"))
		if err != nil {
			return nil, err
		}

		enrollmentMonth, err := parseInt("enrollment_month", rowNum, cell(row, idx, "enrollment_month"))
		if err != nil {
			return nil, err
		}

		cancellationYear, err := parseNullableInt("cancellation_year", rowNum, cell(row, idx, "cancellation_year"))
		if err != nil {
			return nil, err
		}

		cancellationMonth, err := parseNullableInt("cancellation_month", rowNum, cell(row, idx, "cancellation_month"))
		if err != nil {
			return nil, err
		}

		records = append(records, domain.LoyaltyHistoryRecord{
			LoyaltyNumber:     loyaltyNumber,
			Province:          cell(row, idx, "province"),
			City:              cell(row, idx, "city"),
			Gender:            cell(row, idx, "gender"),
			Education:         cell(row, idx, "education"),
			LoyaltyCard:       cell(row, idx, "loyalty_card"),
			CLV:               clv,
			EnrollmentYear:    int(enrollmentYear),
			EnrollmentMonth:   int(enrollmentMonth),
			CancellationYear:  cancellationYear,
			CancellationMonth: cancellationMonth,
		})
	}

	if len(records) == 0 {
		return nil, domain.ErrNoHistoryRecords
	}

	return records, nil
}
