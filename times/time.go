package times

import (
	"fmt"
	"time"
)

const (
	YearMonthDayLayout = "2006-01-02"
	YearMonthLayout    = "2006-01"
)

// MonthStart returns the first day of the given year/month in UTC.
func MonthStart(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsDiff returns the whole-month difference between later and earlier,
// computed on calendar year/month only. A later date earlier in the month
// still counts as a full month step.
func MonthsDiff(later, earlier time.Time) int {
	return (later.Year()-earlier.Year())*12 + int(later.Month()) - int(earlier.Month())
}

// PrevMonth returns the year and zero-padded month strings of the month
// preceding tm.
func PrevMonth(tm time.Time) (string, string) {
	date := tm.UTC().AddDate(0, -1, 0)
	month := fmt.Sprintf("%02d", date.Month())
	year := fmt.Sprintf("%d", date.Year())

	return year, month
}

// CurrentDayUTC returns the current day in the UTC time zone.
func CurrentDayUTC() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
