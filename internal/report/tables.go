package report

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/analytics"
	"github.com/ginjaninja78/payroll-audit/internal/dataset"
)

// Sheet names of the analytics workbooks.
const (
	SheetIncrement  = "Increment Analysis"
	SheetComparison = "Comparison"
	SheetHeadcount  = "Headcount Reconciliation"
	SheetTestReco   = "Test Reconciliation"
	SheetWeighted   = "Weighted Average Headcount"
	SheetMoM        = "MoM Analysis"
	SheetCWIP       = "CWIP Ageing"
	SheetCWIPReco   = "Completeness Check"
	SheetAgeing     = "Ageing Summary"
)

// IncrementTable lays out an increment analysis with the average increment
// above the table.
func IncrementTable(a *analytics.IncrementAnalysis) Table {
	t := Table{
		Name:     SheetIncrement,
		Preamble: [][]interface{}{{"Average Increment %", a.Summary.AverageIncrementPct}},
		Headers: []string{
			"Employee Code", "Employee Name", "DOJ", "Designation",
			"As per CY", "As per PY", "Increment", "Increment %",
		},
	}
	for _, r := range a.Rows {
		t.Rows = append(t.Rows, []interface{}{
			r.EmployeeCode, r.EmployeeName, r.DateOfJoin, r.Designation,
			r.CurrentYear, r.PriorYear, r.Increment, r.IncrementPct,
		})
	}
	return t
}

// ComparisonTable lays out a pairwise comparison.
func ComparisonTable(c *analytics.Comparison) Table {
	t := Table{Name: SheetComparison, Headers: c.Headers()}
	for _, line := range c.Table() {
		row := make([]interface{}, len(line))
		for i, v := range line {
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// HeadcountTables lays out a headcount reconciliation over three sheets:
// the monthly roll-forward, the test reconciliation, and the weighted
// averages with quarterly average pay.
func HeadcountTables(r *analytics.HeadcountReport) []Table {
	roll := Table{Name: SheetHeadcount, Headers: []string{"Month", "Opening", "Joiners", "Leavers", "Closing"}}
	for _, m := range r.Months {
		roll.Rows = append(roll.Rows, []interface{}{m.Month, m.Opening, m.Joiners, m.Leavers, m.Closing})
	}

	reco := Table{Name: SheetTestReco, Headers: []string{"Particulars", "Employees"}}
	for _, p := range r.TestReconciliation {
		reco.Rows = append(reco.Rows, []interface{}{p.Particulars, p.Employees})
	}

	weighted := Table{
		Name: SheetWeighted,
		Headers: []string{
			"Period", "Weighted Figure", "Total Weight", "Weighted Average",
			"Gross Pay", "Weighted Average Headcount", "Average Pay",
		},
	}
	for _, q := range r.QuarterOrder {
		w, pay := r.Quarterly[q], r.GrossPay[q]
		weighted.Rows = append(weighted.Rows, []interface{}{
			q, w.WeightedFigure, w.TotalWeight, w.WeightedAverage,
			pay.GrossPay, pay.WeightedAverageHeadcount, pay.AveragePay,
		})
	}
	if a, ok := r.Annual[r.AnnualLabel]; ok {
		weighted.Rows = append(weighted.Rows, []interface{}{
			r.AnnualLabel, a.WeightedFigure, a.TotalWeight, a.WeightedAverage,
		})
	}

	return []Table{roll, reco, weighted}
}

// MoMTable lays out a month-on-month analysis: display columns, the months
// before the increment with their statistics, a blank separator column,
// then the months from the increment on with theirs.
func MoMTable(a *analytics.MoMAnalysis) Table {
	headers := append([]string{"Employee Code"}, a.Display...)
	headers = append(headers, a.PreMonths...)
	headers = append(headers, "Pre Average", "Pre StdDev", "Pre Variance %", "")
	headers = append(headers, a.PostMonths...)
	headers = append(headers, "Post Average", "Post StdDev", "Post Variance %")

	t := Table{Name: SheetMoM, Headers: headers}
	for _, r := range a.Rows {
		row := []interface{}{r.EmployeeCode}
		for _, col := range a.Display {
			row = append(row, r.Display[col])
		}
		row = appendMonths(row, r.Totals, a.PreMonths)
		row = append(row, r.Pre.Average, r.Pre.StdDev, r.Pre.Variance, nil)
		row = appendMonths(row, r.Totals, a.PostMonths)
		row = append(row, r.Post.Average, r.Post.StdDev, r.Post.Variance)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func appendMonths(row []interface{}, totals map[string]decimal.Decimal, months []string) []interface{} {
	for _, m := range months {
		if v, ok := totals[m]; ok {
			row = append(row, v)
		} else {
			row = append(row, nil)
		}
	}
	return row
}

// CWIPTables lays out the CWIP tests: the register with each line's age in
// days and bracket appended, the completeness reconciliation, and the
// amount per ageing bracket.
func CWIPTables(register *dataset.Dataset, a *analytics.CWIPAnalysis) []Table {
	aged := DatasetTable(SheetCWIP, register, nil)
	aged.Headers = append(append([]string(nil), aged.Headers...), "Age as at "+a.CutoffDate, "ET Ageing")
	for i := range aged.Rows {
		line := a.Lines[i]
		if line.Bracket == "" {
			aged.Rows[i] = append(aged.Rows[i], nil, nil)
			continue
		}
		aged.Rows[i] = append(aged.Rows[i], line.Days, line.Bracket)
	}

	reco := Table{Name: SheetCWIPReco, Headers: []string{"Particulars", "Amount"}}
	for _, p := range a.Reconciliation {
		reco.Rows = append(reco.Rows, []interface{}{p.Particulars, p.Amount})
	}

	ageing := Table{Name: SheetAgeing, Headers: []string{"Ageing Bracket", "Lines", "Amount"}}
	for _, b := range a.Ageing {
		ageing.Rows = append(ageing.Rows, []interface{}{b.Bracket, b.Lines, b.Amount})
	}

	return []Table{aged, reco, ageing}
}
