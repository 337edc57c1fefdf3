// =============================================================================
// Payroll Audit - Payroll Exception Rules
// =============================================================================
//
// Fifteen checks over a pay register. Unless noted, rules group rows by
// employee code and flag every row of an offending employee. Rows with a
// blank employee code belong to no group; rule 9 reports them.
//
// =============================================================================

package rules

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/aggregate"
	cm "github.com/ginjaninja78/payroll-audit/internal/columnmap"
	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/dates"
)

// Payroll returns the payroll rule catalogue.
func Payroll() *Catalogue {
	return NewCatalogue(cm.Payroll,
		Rule{
			ID:          1,
			Description: "One employee code does not have more than one employee name.",
			Fields:      []string{cm.EmployeeCode, cm.EmployeeName},
			Check:       distinctAbove(cm.EmployeeCode, cm.EmployeeName, 1, aggregate.ValueKey),
		},
		Rule{
			ID:          2,
			Description: "One employee code does not have two lines with the same month of pay.",
			Fields:      []string{cm.EmployeeCode, cm.PayMonth},
			Check:       duplicatePayMonths,
		},
		Rule{
			ID:          3,
			Description: "One employee code does not have more than 2 designations.",
			Fields:      []string{cm.EmployeeCode, cm.Designation},
			Check:       distinctAbove(cm.EmployeeCode, cm.Designation, 2, aggregate.ValueKey),
		},
		Rule{
			ID:          4,
			Description: "One employee code is not paid for months subsequent to month of resignation.",
			Fields:      []string{cm.EmployeeCode, cm.PayMonth, cm.DateOfLeaving},
			Check:       paidAfterLeaving,
		},
		Rule{
			ID:          5,
			Description: "One employee code is not paid for months before joining date.",
			Fields:      []string{cm.EmployeeCode, cm.PayMonth, cm.DateOfJoining},
			Check:       paidBeforeJoining,
		},
		Rule{
			ID:          6,
			Description: "Two different employees do not have the same PAN.",
			Fields:      []string{cm.PAN, cm.EmployeeCode},
			Check:       distinctAbove(cm.PAN, cm.EmployeeCode, 1, aggregate.ValueKey),
		},
		Rule{
			ID:          7,
			Description: "Employees having blank designation.",
			Fields:      []string{cm.Designation},
			Check:       blankDesignation,
		},
		Rule{
			ID:          8,
			Description: "Gross pay is lesser than net pay.",
			Fields:      []string{cm.GrossPay, cm.NetPay},
			Check:       grossBelowNet,
		},
		Rule{
			ID:          9,
			Description: "Employees having no employee code.",
			Fields:      []string{cm.EmployeeCode, cm.EmployeeName},
			Check:       missingEmployeeCode,
		},
		Rule{
			ID:          10,
			Description: "Instances where gross pay less total deductions is not equal to net pay.",
			Fields:      []string{cm.GrossPay, cm.TotalDeductions, cm.NetPay},
			Check:       netPayMismatch,
		},
		Rule{
			ID:          11,
			Description: "Employee IDs where net pay is negative.",
			Fields:      []string{cm.NetPay},
			Check:       negativeNetPay,
		},
		Rule{
			ID:          12,
			Description: "Employee IDs where PF was not there in one month but there in other months.",
			Fields:      []string{cm.EmployeeCode, cm.PF},
			Check:       mixedZero(cm.PF),
		},
		Rule{
			ID:          13,
			Description: "Employee IDs where ESI is not there in one month but there in previous months.",
			Fields:      []string{cm.EmployeeCode, cm.ESI},
			Check:       mixedZero(cm.ESI),
		},
		Rule{
			ID:          14,
			Description: "Employee IDs with different dates of joining",
			Fields:      []string{cm.EmployeeCode, cm.DateOfJoining},
			Check:       distinctAbove(cm.EmployeeCode, cm.DateOfJoining, 1, dateKey),
		},
		Rule{
			ID:          15,
			Description: "Employee IDs with different dates of leaving",
			Fields:      []string{cm.EmployeeCode, cm.DateOfLeaving},
			Check:       distinctAbove(cm.EmployeeCode, cm.DateOfLeaving, 1, dateKey),
		},
	)
}

// =============================================================================
// GROUP RULES
// =============================================================================

// distinctAbove flags every row of a group whose value field takes more
// than limit distinct values.
func distinctAbove(keyField, valueField string, limit int, valueKey aggregate.KeyFunc) func(*Input, Columns) []int {
	return func(in *Input, col Columns) []int {
		counts := aggregate.DistinctCountFunc(in.Current, col[keyField], col[valueField], valueKey)
		return aggregate.FlagGroups(in.Current, col[keyField], func(key string) bool {
			return counts[key] > limit
		})
	}
}

// mixedZero flags every row of an employee whose field is zero in some
// months and positive in others.
func mixedZero(field string) func(*Input, Columns) []int {
	return func(in *Input, col Columns) []int {
		mixed := aggregate.MixedZeroNonZero(in.Current, col[cm.EmployeeCode], col[field])
		return aggregate.FlagGroups(in.Current, col[cm.EmployeeCode], func(key string) bool {
			return mixed[key]
		})
	}
}

// dateKey compares dates by calendar day, however they were written.
func dateKey(v dataset.Value) (string, bool) {
	d, ok := dates.Parse(v)
	if !ok {
		return "", false
	}
	return d.Format("2006-01-02"), true
}

// monthKey keys a pay month by its normalized date, falling back to the
// raw text so that identical unparseable entries still pair up.
func monthKey(v dataset.Value) string {
	if k, ok := dateKey(v); ok {
		return k
	}
	return v.Key()
}

// nullCodeKey stands in for a blank employee code when pairing pay months.
const nullCodeKey = "\x00null"

func duplicatePayMonths(in *Input, col Columns) []int {
	ds := in.Current
	groups := make(map[string][]int)
	var order []string

	for i := 0; i < ds.Len(); i++ {
		code, ok := aggregate.ValueKey(ds.Value(i, col[cm.EmployeeCode]))
		if !ok {
			// Blank codes pair with each other.
			code = nullCodeKey
		}
		key := code + "\x1f" + monthKey(ds.Value(i, col[cm.PayMonth]))
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	flagged := make(map[int]bool)
	for _, key := range order {
		if len(groups[key]) > 1 {
			for _, p := range groups[key] {
				flagged[p] = true
			}
		}
	}
	return positionsInOrder(ds.Len(), flagged)
}

// paidAfterLeaving flags pay months later than the month of the employee's
// latest leaving date. Employees with no parseable leaving date are not checked.
func paidAfterLeaving(in *Input, col Columns) []int {
	return payMonthOutside(in, col, cm.DateOfLeaving, func(month, bound int) bool { return month > bound }, latest)
}

// paidBeforeJoining flags pay months earlier than the month of the
// employee's earliest joining date.
func paidBeforeJoining(in *Input, col Columns) []int {
	return payMonthOutside(in, col, cm.DateOfJoining, func(month, bound int) bool { return month < bound }, earliest)
}

func latest(a, b int) int {
	if b > a {
		return b
	}
	return a
}

func earliest(a, b int) int {
	if b < a {
		return b
	}
	return a
}

func payMonthOutside(in *Input, col Columns, boundField string, outside func(month, bound int) bool, pick func(a, b int) int) []int {
	ds := in.Current
	groups := aggregate.GroupBy(ds, col[cm.EmployeeCode])

	var rows []int
	for _, key := range groups.Keys() {
		positions := groups.Positions(key)

		bound, found := 0, false
		for _, p := range positions {
			d, ok := dates.Parse(ds.Value(p, col[boundField]))
			if !ok {
				continue
			}
			m := dates.MonthIndex(d)
			if !found {
				bound, found = m, true
			} else {
				bound = pick(bound, m)
			}
		}
		if !found {
			continue
		}

		for _, p := range positions {
			pm, ok := dates.Parse(ds.Value(p, col[cm.PayMonth]))
			if ok && outside(dates.MonthIndex(pm), bound) {
				rows = append(rows, p)
			}
		}
	}
	return sortInts(rows)
}

// =============================================================================
// ROW RULES
// =============================================================================

func blankDesignation(in *Input, col Columns) []int {
	return rowsWhere(in.Current, func(r dataset.Row) bool {
		return r.Get(col[cm.Designation]).IsBlank()
	})
}

func grossBelowNet(in *Input, col Columns) []int {
	return rowsWhere(in.Current, func(r dataset.Row) bool {
		gross, ok1 := r.Get(col[cm.GrossPay]).Float()
		net, ok2 := r.Get(col[cm.NetPay]).Float()
		return ok1 && ok2 && gross < net
	})
}

func missingEmployeeCode(in *Input, col Columns) []int {
	return rowsWhere(in.Current, func(r dataset.Row) bool {
		return !r.Get(col[cm.EmployeeName]).IsBlank() && r.Get(col[cm.EmployeeCode]).IsBlank()
	})
}

// netPayMismatch flags rows where gross - deductions differs from net by
// more than the configured tolerance. Rows with a non-numeric amount are
// not checked.
func netPayMismatch(in *Input, col Columns) []int {
	tolerance := in.Options.NetPayTolerance.Abs()
	return rowsWhere(in.Current, func(r dataset.Row) bool {
		gross, ok1 := decimalOf(r.Get(col[cm.GrossPay]))
		ded, ok2 := decimalOf(r.Get(col[cm.TotalDeductions]))
		net, ok3 := decimalOf(r.Get(col[cm.NetPay]))
		if !ok1 || !ok2 || !ok3 {
			return false
		}
		return gross.Sub(ded).Sub(net).Abs().GreaterThan(tolerance)
	})
}

func negativeNetPay(in *Input, col Columns) []int {
	return rowsWhere(in.Current, func(r dataset.Row) bool {
		net, ok := r.Get(col[cm.NetPay]).Float()
		return ok && net < 0
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// rowsWhere returns the positions of rows satisfying pred, in dataset order.
func rowsWhere(ds *dataset.Dataset, pred func(dataset.Row) bool) []int {
	var rows []int
	for i := 0; i < ds.Len(); i++ {
		if pred(ds.Row(i)) {
			rows = append(rows, i)
		}
	}
	return rows
}

// decimalOf reads a numeric cell as a decimal. Text is parsed directly so
// that "1234.10" keeps its exact value.
func decimalOf(v dataset.Value) (decimal.Decimal, bool) {
	if v.Kind() == dataset.KindString {
		if _, ok := v.Float(); !ok {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(stripThousands(v.Text()))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	f, ok := v.Float()
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func positionsInOrder(n int, flagged map[int]bool) []int {
	var rows []int
	for i := 0; i < n; i++ {
		if flagged[i] {
			rows = append(rows, i)
		}
	}
	return rows
}

func sortInts(rows []int) []int {
	sort.Ints(rows)
	return rows
}

func stripThousands(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
