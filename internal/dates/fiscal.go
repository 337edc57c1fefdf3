package dates

import (
	"fmt"
	"time"
)

// Window is an inclusive range of calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d lies within the window, bounds included.
func (w Window) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(Day(w.Start)) && !d.After(Day(w.End))
}

// String renders the window as "2024-04-01..2025-03-31".
func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// FiscalYear returns the April-to-March fiscal year containing d.
//
// A date in April or later belongs to the year starting 1 April of its own
// calendar year; January to March belong to the year that started the
// previous April.
func FiscalYear(d time.Time) Window {
	start := d.Year()
	if d.Month() < time.April {
		start--
	}
	return FiscalYearStarting(start)
}

// FiscalYearStarting returns the window 1 April startYear .. 31 March startYear+1.
func FiscalYearStarting(startYear int) Window {
	return Window{
		Start: time.Date(startYear, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(startYear+1, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Months returns the first day of each month in the window, in order.
func (w Window) Months() []time.Time {
	var months []time.Time
	cur := time.Date(w.Start.Year(), w.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(w.End) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}
