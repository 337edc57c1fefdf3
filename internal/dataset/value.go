// =============================================================================
// Payroll Audit - Cell Values
// =============================================================================
//
// A Value is one cell of a tabular input. Spreadsheets and CSV exports mix
// text, numbers and dates in the same column, so a Value remembers which of
// these it holds and offers lenient accessors that the rules use:
//   - Float() accepts numbers and numeric-looking text ("1,250.00")
//   - Time() accepts typed dates only; text dates go through internal/dates
//   - Key() produces a canonical string used for grouping and joining
//
// A null Value stands for a missing cell.
//
// =============================================================================

package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies what a Value holds.
type Kind int

const (
	// KindNull is a missing cell.
	KindNull Kind = iota

	// KindString is free text.
	KindString

	// KindNumber is a numeric cell.
	KindNumber

	// KindDate is a typed date (or date-time) cell.
	KindDate
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "null"
	}
}

// Value is a single cell.
type Value struct {
	kind Kind
	str  string
	num  float64
	t    time.Time
}

// Null returns a missing value.
func Null() Value { return Value{} }

// String returns a text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Date returns a typed date value.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// Kind reports what the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is missing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsBlank reports whether the cell is missing or holds only whitespace.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	default:
		return false
	}
}

// Text returns the value rendered as text. Null renders as "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Float returns the numeric reading of the value.
//
// Numbers are returned as-is. Text is accepted when, after trimming and
// removing thousands separators, it parses as a float. Everything else,
// including null, reports ok=false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return ParseNumber(v.str)
	default:
		return 0, false
	}
}

// Time returns the typed date held by the value.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.t, true
}

// Key returns the canonical grouping key of the value.
//
// Text is trimmed, numbers use the shortest round-trip form (so 101 and
// "101" do not collide with 101.5), dates use ISO form. Blank values
// return "" and callers treat "" as "no key".
func (v Value) Key() string {
	if v.IsBlank() {
		return ""
	}
	if v.kind == KindString {
		return strings.TrimSpace(v.str)
	}
	return v.Text()
}

// ParseNumber parses numeric-looking text such as "1,250.50" or " -3 ".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
