package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/dates"
)

// IncrementColumns names the CTC report columns used by the increment analysis.
// The same physical names must exist in both years' reports.
type IncrementColumns struct {
	EmployeeCode  string
	EmployeeName  string
	DateOfJoining string
	Designation   string

	// Sum are the pay components added up per employee, e.g. "Monthly CTC".
	Sum []string
}

// IncrementRow is one employee present in both years.
type IncrementRow struct {
	EmployeeCode string          `json:"Employee Code"`
	EmployeeName string          `json:"Employee Name"`
	DateOfJoin   string          `json:"DOJ"`
	Designation  string          `json:"Designation"`
	CurrentYear  decimal.Decimal `json:"As per CY"`
	PriorYear    decimal.Decimal `json:"As per PY"`
	Increment    decimal.Decimal `json:"Increment"`

	// Ratio is Increment / PriorYear, 0 when the prior year sum is 0.
	Ratio decimal.Decimal `json:"-"`

	// IncrementPct is Ratio rounded to 2 places, as shown in the workbook.
	IncrementPct decimal.Decimal `json:"Increment %"`
}

// IncrementSummary reconciles the analysed employees against the CTC report.
type IncrementSummary struct {
	PerAnalysis         int             `json:"As per Increment analysis"`
	PerCTC              int             `json:"As per CTC Report"`
	UserReconciliations int             `json:"User reconciliations"`
	Difference          int             `json:"Difference"`
	AverageIncrementPct decimal.Decimal `json:"Average Increment %"`
	NetDifference       int             `json:"Net Difference"`
}

// IncrementAnalysis is the per-employee table with its summary.
type IncrementAnalysis struct {
	Rows    []IncrementRow
	Summary IncrementSummary
}

// AnalyseIncrements joins the current and prior year CTC reports on employee
// code and computes each employee's increment.
//
// Employees missing from either year are left out; a code repeated in one
// report joins with every matching row of the other. The average increment
// is the mean of the unrounded ratios, expressed in percent and rounded to
// 2 places.
//
// PARAMETERS:
//   - cy, py: The current and prior year CTC reports.
//   - cols: The columns to join on, display and sum.
//   - userReconciliations: Reconciling rows entered by the auditor.
//
// RETURNS:
//   - The analysis.
//   - An error if a named column is absent from either report.
func AnalyseIncrements(cy, py *dataset.Dataset, cols IncrementColumns, userReconciliations int) (*IncrementAnalysis, error) {
	if len(cols.Sum) == 0 {
		return nil, fmt.Errorf("no columns to sum")
	}
	required := append([]string{cols.EmployeeCode}, cols.Sum...)
	for _, ds := range []*dataset.Dataset{cy, py} {
		for _, col := range required {
			if !ds.Has(col) {
				return nil, fmt.Errorf("column %q not found in %s", col, ds.Name())
			}
		}
	}

	prior := make(map[string][]int)
	for i := 0; i < py.Len(); i++ {
		if key := py.Value(i, cols.EmployeeCode).Key(); key != "" {
			prior[key] = append(prior[key], i)
		}
	}

	analysis := &IncrementAnalysis{}
	ratioTotal := decimal.Zero
	for i := 0; i < cy.Len(); i++ {
		key := cy.Value(i, cols.EmployeeCode).Key()
		if key == "" {
			continue
		}
		for _, j := range prior[key] {
			cySum := sumColumns(cy.Row(i), cols.Sum)
			pySum := sumColumns(py.Row(j), cols.Sum)
			inc := cySum.Sub(pySum)

			ratio := decimal.Zero
			if !pySum.IsZero() {
				ratio = inc.Div(pySum)
			}
			ratioTotal = ratioTotal.Add(ratio)

			analysis.Rows = append(analysis.Rows, IncrementRow{
				EmployeeCode: key,
				EmployeeName: cy.Value(i, cols.EmployeeName).Text(),
				DateOfJoin:   displayDate(cy.Value(i, cols.DateOfJoining)),
				Designation:  cy.Value(i, cols.Designation).Text(),
				CurrentYear:  cySum,
				PriorYear:    pySum,
				Increment:    inc,
				Ratio:        ratio,
				IncrementPct: ratio.Round(2),
			})
		}
	}

	avg := decimal.Zero
	if n := len(analysis.Rows); n > 0 {
		avg = ratioTotal.Div(decimal.NewFromInt(int64(n))).Mul(decimal.NewFromInt(100)).Round(2)
	}

	diff := len(analysis.Rows) - cy.Len()
	analysis.Summary = IncrementSummary{
		PerAnalysis:         len(analysis.Rows),
		PerCTC:              cy.Len(),
		UserReconciliations: userReconciliations,
		Difference:          diff,
		AverageIncrementPct: avg,
		NetDifference:       diff - userReconciliations,
	}
	return analysis, nil
}

// sumColumns adds the numeric cells of row; blanks and text count as 0.
func sumColumns(row dataset.Row, columns []string) decimal.Decimal {
	total := decimal.Zero
	for _, col := range columns {
		if f, ok := row.Get(col).Float(); ok {
			total = total.Add(decimal.NewFromFloat(f))
		}
	}
	return total
}

// displayDate renders a date cell as "02-01-2006", or its text when it is
// not a date.
func displayDate(v dataset.Value) string {
	if d, ok := dates.Parse(v); ok {
		return d.Format("02-01-2006")
	}
	return v.Text()
}
