// =============================================================================
// Payroll Audit - Date Normalization
// =============================================================================
//
// Registers carry dates in whatever form the client's payroll or ERP system
// exported: typed spreadsheet dates, Excel serial numbers, "01/04/2024",
// "1-Apr-24", "Apr-2024", ISO text. Parse turns any of these into a calendar
// date (midnight UTC) or reports that the value is not a date.
//
// PARSING ORDER:
//   1. Typed dates are truncated to the calendar day
//   2. Numbers in the Excel serial range are converted with the 1900 system
//   3. Text is tried against unambiguous ISO layouts first, then day-first
//      layouts, then month-first layouts, then month-year layouts
//
// An unparseable value is never an error: rules treat it as "no date".
//
// =============================================================================

package dates

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payroll-audit/internal/dataset"
)

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

var isoLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05.000",
}

var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"02/01/06",
	"2/1/06",
	"02-01-06",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02-01-2006 15:04:05",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2-Jan-06",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-January-2006",
	"02 January 2006",
	"2 January 2006",
}

var monthFirstLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"1/2/06",
	"1/2/06 15:04",
	"01/02/2006 15:04:05",
	"Jan 2, 2006",
	"Jan 02, 2006",
	"January 2, 2006",
	"Jan 2 2006",
}

// Month-year forms, read as the first day of the month. A pay month
// exported as "Nov-24" means November 2024.
var monthYearLayouts = []string{
	"Jan-06",
	"Jan-2006",
	"January-2006",
	"Jan 06",
	"Jan 2006",
	"January 2006",
	"Jan'06",
	"2006-01",
	"01-2006",
	"01/2006",
}

// Parse reads a cell as a calendar date.
//
// RETURNS:
//   - The date at midnight UTC.
//   - false if the value is null, blank, or not recognizable as a date.
func Parse(v dataset.Value) (time.Time, bool) {
	switch v.Kind() {
	case dataset.KindDate:
		t, _ := v.Time()
		return Day(t), true
	case dataset.KindNumber:
		f, _ := v.Float()
		return FromSerial(f)
	case dataset.KindString:
		return ParseText(v.Text())
	default:
		return time.Time{}, false
	}
}

// FromSerial converts an Excel 1900-system serial number to a date.
func FromSerial(serial float64) (time.Time, bool) {
	if serial < 1 || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return Day(t), true
}

// ParseText parses a textual date, preferring day-first readings.
func ParseText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, group := range [][]string{isoLayouts, dayFirstLayouts, monthFirstLayouts, monthYearLayouts} {
		for _, layout := range group {
			if t, err := time.Parse(layout, s); err == nil {
				return Day(t), true
			}
		}
	}

	return time.Time{}, false
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthIndex returns a monotonically increasing month number, so that two
// dates fall in the same calendar month exactly when their indexes match.
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// MonthLabel formats a month the way reports show it, e.g. "Apr-24".
func MonthLabel(t time.Time) string {
	return t.Format("Jan-06")
}
