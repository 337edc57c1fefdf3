// =============================================================================
// Payroll Audit - Pairwise Comparison
// =============================================================================
//
// Two reports that describe the same employees (the CTC report and the
// actuary's gratuity valuation data, typically) are compared field by field
// through a pairwise column map:
//
//   column_map:
//     - {CTC: "Emp. No", Actuary: "Employee ID"}    # first pair is the id
//     - {CTC: "Monthly CTC", Actuary: "Salary"}
//
// Only ids present in both reports are compared. Rows are aligned by id in
// ascending id order and, for every non-id pair, the difference
// left - right is computed.
//
// =============================================================================

package analytics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/columnmap"
	"github.com/ginjaninja78/payroll-audit/internal/dataset"
)

// ComparisonRow is one aligned pair of rows.
type ComparisonRow struct {
	ID string

	// Left and Right hold the mapped cells of each side, in pair order.
	// A side without a row for this occurrence of the id holds nulls.
	Left  []dataset.Value
	Right []dataset.Value

	// Diffs holds left - right for each non-id pair. A diff is null when
	// either side is not numeric.
	Diffs []dataset.Value
}

// Comparison is the result of comparing two reports.
type Comparison struct {
	Map  *columnmap.PairMap
	Rows []ComparisonRow
}

// Compare aligns left and right on the id pair and computes the differences
// of every other pair.
//
// An id occurring several times on a side is paired occurrence by
// occurrence; surplus occurrences are paired with nulls.
//
// RETURNS:
//   - The comparison.
//   - An error if a mapped column is missing from its report.
func Compare(left, right *dataset.Dataset, pm *columnmap.PairMap) (*Comparison, error) {
	if pm == nil || len(pm.Pairs) == 0 {
		return nil, columnmap.ErrNoColumnMap
	}
	for _, p := range pm.Pairs {
		if !left.Has(p.Left) {
			return nil, fmt.Errorf("%s column %q not found in %s", pm.LeftLabel, p.Left, left.Name())
		}
		if !right.Has(p.Right) {
			return nil, fmt.Errorf("%s column %q not found in %s", pm.RightLabel, p.Right, right.Name())
		}
	}

	id := pm.ID()
	leftIDs := positionsByKey(left, id.Left)
	rightIDs := positionsByKey(right, id.Right)

	var common []string
	for key := range leftIDs {
		if _, ok := rightIDs[key]; ok {
			common = append(common, key)
		}
	}
	sort.Slice(common, func(i, j int) bool { return keyLess(common[i], common[j]) })

	cmp := &Comparison{Map: pm}
	for _, key := range common {
		l, r := leftIDs[key], rightIDs[key]
		for k := 0; k < max(len(l), len(r)); k++ {
			row := ComparisonRow{ID: key}
			for _, p := range pm.Pairs {
				row.Left = append(row.Left, cellAt(left, l, k, p.Left))
				row.Right = append(row.Right, cellAt(right, r, k, p.Right))
			}
			for i := 1; i < len(pm.Pairs); i++ {
				row.Diffs = append(row.Diffs, difference(row.Left[i], row.Right[i]))
			}
			cmp.Rows = append(cmp.Rows, row)
		}
	}
	return cmp, nil
}

// Headers returns the column headings of the comparison table: the left
// columns, a blank separator, the right columns, a second separator and
// one "Diff <column>" per non-id pair.
func (c *Comparison) Headers() []string {
	var h []string
	for _, p := range c.Map.Pairs {
		h = append(h, fmt.Sprintf("%s (%s)", p.Left, c.Map.LeftLabel))
	}
	h = append(h, "")
	for _, p := range c.Map.Pairs {
		h = append(h, fmt.Sprintf("%s (%s)", p.Right, c.Map.RightLabel))
	}
	h = append(h, " ")
	for _, p := range c.Map.Values() {
		h = append(h, "Diff "+p.Left)
	}
	return h
}

// Table returns the comparison rows laid out under Headers.
func (c *Comparison) Table() [][]dataset.Value {
	out := make([][]dataset.Value, 0, len(c.Rows))
	for _, r := range c.Rows {
		line := make([]dataset.Value, 0, 2*len(r.Left)+len(r.Diffs)+2)
		line = append(line, r.Left...)
		line = append(line, dataset.Null())
		line = append(line, r.Right...)
		line = append(line, dataset.Null())
		line = append(line, r.Diffs...)
		out = append(out, line)
	}
	return out
}

// =============================================================================
// ROW COUNT RECONCILIATION
// =============================================================================

// RowCountResult reconciles the row counts of the actuary data and the CTC report.
type RowCountResult struct {
	ActuaryRows    int      `json:"Actuary_rows"`
	CTCRows        int      `json:"CTC_Report_rows"`
	Difference     int      `json:"Difference"`
	UserRows       int      `json:"User_Rows"`
	NetDifference  int      `json:"Net_Difference"`
	ActuaryColumns []string `json:"Actuary_columns"`
	CTCColumns     []string `json:"CTC_Report_columns"`
}

// ReconcileRowCounts counts the non-empty rows of both reports. The
// difference is actuary rows less CTC rows; user rows are deducted from it.
func ReconcileRowCounts(actuary, ctc *dataset.Dataset, userRows int) RowCountResult {
	at, c := actuary.CountNonEmpty(), ctc.CountNonEmpty()
	return RowCountResult{
		ActuaryRows:    at,
		CTCRows:        c,
		Difference:     at - c,
		UserRows:       userRows,
		NetDifference:  at - c - userRows,
		ActuaryColumns: actuary.Columns(),
		CTCColumns:     ctc.Columns(),
	}
}

func positionsByKey(ds *dataset.Dataset, column string) map[string][]int {
	out := make(map[string][]int)
	for i := 0; i < ds.Len(); i++ {
		if key := ds.Value(i, column).Key(); key != "" {
			out[key] = append(out[key], i)
		}
	}
	return out
}

func cellAt(ds *dataset.Dataset, positions []int, k int, column string) dataset.Value {
	if k >= len(positions) {
		return dataset.Null()
	}
	return ds.Value(positions[k], column)
}

func difference(l, r dataset.Value) dataset.Value {
	lf, lok := l.Float()
	rf, rok := r.Float()
	if !lok || !rok {
		return dataset.Null()
	}
	d := decimal.NewFromFloat(lf).Sub(decimal.NewFromFloat(rf))
	return dataset.Number(d.InexactFloat64())
}

// keyLess orders numeric ids numerically and sorts them before text ids.
func keyLess(a, b string) bool {
	af, aok := dataset.ParseNumber(a)
	bf, bok := dataset.ParseNumber(b)
	switch {
	case aok && bok:
		if af != bf {
			return af < bf
		}
		return a < b
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}
