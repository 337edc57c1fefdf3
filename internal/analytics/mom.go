// =============================================================================
// Payroll Audit - Month-on-Month Increment Analysis
// =============================================================================
//
// The month-on-month analysis tests whether a salary increment took effect
// in the month it was said to. For every employee of the pay register, the
// chosen pay components are totalled per pay month; the months are then
// split at the increment month and each side is summarised:
//
//   Average    mean of the employee's monthly totals
//   StdDev     population standard deviation of the same totals
//   Variance   StdDev / Average (0 when the average is 0)
//
// A steady employee shows a low variance on both sides and a post average
// above the pre average. Months in which the employee was not paid are left
// out of the statistics.
//
// Statistics are rounded to 2 places.
//
// =============================================================================

package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/aggregate"
	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/dates"
)

// MoMColumns names the pay register columns used by the month-on-month
// analysis.
type MoMColumns struct {
	EmployeeCode string
	PayMonth     string

	// Display are shown per employee, taken from the employee's first row.
	Display []string

	// Sum are the pay components totalled per month, e.g. "BASIC", "H R A".
	Sum []string
}

// MoMStats summarises the monthly totals on one side of the increment month.
type MoMStats struct {
	Months   int             `json:"Months"`
	Average  decimal.Decimal `json:"Average"`
	StdDev   decimal.Decimal `json:"StdDev"`
	Variance decimal.Decimal `json:"Variance %"`
}

// MoMRow is one employee of the analysis.
type MoMRow struct {
	EmployeeCode string                   `json:"Employee Code"`
	Display      map[string]dataset.Value `json:"-"`

	// Totals maps month labels to the employee's total. Months without pay
	// are absent.
	Totals map[string]decimal.Decimal `json:"Totals"`

	Pre  MoMStats `json:"Pre"`
	Post MoMStats `json:"Post"`
}

// MoMAnalysis is the per-employee table.
type MoMAnalysis struct {
	IncrementMonth string `json:"Increment Month"`

	// PreMonths and PostMonths are the month labels on each side of the
	// split, in calendar order. PostMonths starts with the increment month.
	PreMonths  []string `json:"Pre Months"`
	PostMonths []string `json:"Post Months"`

	// Display lists the display columns in order.
	Display []string `json:"-"`

	Rows []MoMRow `json:"Employees"`
}

// AnalyseMoM totals the pay components of every employee per pay month and
// compares the months before the increment month with those from it on.
//
// PARAMETERS:
//   - register: The pay register.
//   - cols: The code, month, display and summed columns.
//   - incrementMonth: The first month at the new pay, as a month label
//     ("Nov-24") or any date text within the month.
//
// RETURNS:
//   - The analysis, with employees in ascending code order.
//   - An error if a named column is absent, or the increment month is not
//     one of the register's pay months.
func AnalyseMoM(register *dataset.Dataset, cols MoMColumns, incrementMonth string) (*MoMAnalysis, error) {
	if len(cols.Sum) == 0 {
		return nil, fmt.Errorf("no columns to sum")
	}
	required := append([]string{cols.EmployeeCode, cols.PayMonth}, cols.Display...)
	for _, col := range append(required, cols.Sum...) {
		if !register.Has(col) {
			return nil, fmt.Errorf("column %q not found in %s", col, register.Name())
		}
	}

	split, ok := dates.ParseText(incrementMonth)
	if !ok {
		return nil, fmt.Errorf("invalid increment month %q", incrementMonth)
	}
	splitIdx := dates.MonthIndex(split)

	groups := aggregate.GroupBy(register, cols.EmployeeCode)

	// Collect the pay months present anywhere in the register.
	monthStarts := make(map[int]time.Time)
	for i := 0; i < register.Len(); i++ {
		if m, ok := dates.Parse(register.Value(i, cols.PayMonth)); ok {
			monthStarts[dates.MonthIndex(m)] = time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
	}
	if _, ok := monthStarts[splitIdx]; !ok {
		return nil, fmt.Errorf("increment month %s not found in %s", dates.MonthLabel(split), register.Name())
	}

	indexes := make([]int, 0, len(monthStarts))
	for idx := range monthStarts {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	analysis := &MoMAnalysis{IncrementMonth: dates.MonthLabel(split)}
	for _, col := range cols.Display {
		if col != cols.EmployeeCode {
			analysis.Display = append(analysis.Display, col)
		}
	}
	for _, idx := range indexes {
		label := dates.MonthLabel(monthStarts[idx])
		if idx < splitIdx {
			analysis.PreMonths = append(analysis.PreMonths, label)
		} else {
			analysis.PostMonths = append(analysis.PostMonths, label)
		}
	}

	keys := append([]string(nil), groups.Keys()...)
	sort.SliceStable(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	for _, key := range keys {
		positions := groups.Positions(key)
		row := MoMRow{
			EmployeeCode: key,
			Display:      make(map[string]dataset.Value, len(analysis.Display)),
			Totals:       make(map[string]decimal.Decimal),
		}
		for _, col := range analysis.Display {
			row.Display[col] = register.Value(positions[0], col)
		}

		for _, p := range positions {
			m, ok := dates.Parse(register.Value(p, cols.PayMonth))
			if !ok {
				continue
			}
			label := dates.MonthLabel(m)
			row.Totals[label] = row.Totals[label].Add(sumColumns(register.Row(p), cols.Sum))
		}

		row.Pre = momStats(row.Totals, analysis.PreMonths)
		row.Post = momStats(row.Totals, analysis.PostMonths)
		analysis.Rows = append(analysis.Rows, row)
	}

	return analysis, nil
}

// momStats summarises the totals of the given months. Months without a
// total are left out.
func momStats(totals map[string]decimal.Decimal, months []string) MoMStats {
	var values []decimal.Decimal
	for _, m := range months {
		if v, ok := totals[m]; ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return MoMStats{}
	}

	n := decimal.NewFromInt(int64(len(values)))
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	mean := sum.Div(n)

	squares := decimal.Zero
	for _, v := range values {
		dev := v.Sub(mean)
		squares = squares.Add(dev.Mul(dev))
	}
	std := decimal.NewFromFloat(math.Sqrt(squares.Div(n).InexactFloat64()))

	stats := MoMStats{Months: len(values), Average: mean.Round(2), StdDev: std.Round(2)}
	if !mean.IsZero() {
		stats.Variance = std.Div(mean).Round(2)
	}
	return stats
}
