package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/dates"
)

// CutoffDays is how far the cut-off window reaches back from the fiscal
// year end. The year-end day itself is included, so 31 March reaches back
// to 16 March.
const CutoffDays = 15

// CutoffColumns names the date and amount columns of an additions or
// deletions list.
type CutoffColumns struct {
	Date   string
	Amount string
}

// CutoffTotals is the cut-off test of one list.
type CutoffTotals struct {
	Total      decimal.Decimal `json:"Total"`
	LastDays   decimal.Decimal `json:"In the last 15 days"`
	Percentage string          `json:"Percentage in last 15 days"`

	// Share is LastDays / Total in percent, rounded to 2 places.
	Share decimal.Decimal `json:"-"`
}

// CutoffAnalysis is the cut-off test of the additions and deletions lists.
type CutoffAnalysis struct {
	Additions CutoffTotals `json:"Additions"`
	Deletions CutoffTotals `json:"Deletions"`

	// Window is the tested period at the end of the fiscal year.
	Window dates.Window `json:"-"`
}

// CutoffWindow returns the window at the end of the fiscal year, e.g.
// 16 to 31 March.
func CutoffWindow(fy dates.Window) dates.Window {
	end := dates.Day(fy.End)
	return dates.Window{Start: end.AddDate(0, 0, -CutoffDays), End: end}
}

// AnalyseCutoff totals the additions and deletions and measures the share
// booked in the last days of the fiscal year. A large share points at
// entries pulled into the year to meet a target.
//
// Rows without a parseable date or a numeric amount are left out.
//
// RETURNS:
//   - The analysis.
//   - An error if a named column is absent from its list.
func AnalyseCutoff(additions, deletions *dataset.Dataset, addCols, delCols CutoffColumns, fy dates.Window) (*CutoffAnalysis, error) {
	window := CutoffWindow(fy)

	add, err := cutoffTotals(additions, addCols, window)
	if err != nil {
		return nil, err
	}
	del, err := cutoffTotals(deletions, delCols, window)
	if err != nil {
		return nil, err
	}
	return &CutoffAnalysis{Additions: add, Deletions: del, Window: window}, nil
}

func cutoffTotals(ds *dataset.Dataset, cols CutoffColumns, window dates.Window) (CutoffTotals, error) {
	for _, col := range []string{cols.Date, cols.Amount} {
		if !ds.Has(col) {
			return CutoffTotals{}, fmt.Errorf("column %q not found in %s", col, ds.Name())
		}
	}

	total, last := decimal.Zero, decimal.Zero
	for i := 0; i < ds.Len(); i++ {
		d, ok := dates.Parse(ds.Value(i, cols.Date))
		if !ok {
			continue
		}
		f, ok := ds.Value(i, cols.Amount).Float()
		if !ok {
			continue
		}
		amount := decimal.NewFromFloat(f)
		total = total.Add(amount)
		if window.Contains(d) {
			last = last.Add(amount)
		}
	}

	share := decimal.Zero
	if !total.IsZero() {
		share = last.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return CutoffTotals{
		Total:      total.Round(2),
		LastDays:   last.Round(2),
		Percentage: share.StringFixed(2) + "%",
		Share:      share,
	}, nil
}

