// =============================================================================
// Payroll Audit - Dataset
// =============================================================================
//
// A Dataset is an ordered table of rows keyed by physical column name, as
// loaded from a pay register, a fixed asset register or a CTC report.
// Rows are addressed by their zero-based position; rule outputs are lists
// of these positions so that exceptions can be traced back to the source.
//
// Datasets are read-only after construction and safe for concurrent reads.
//
// =============================================================================

package dataset

import "fmt"

// Row maps physical column names to cell values. Missing keys read as null.
type Row map[string]Value

// Get returns the value of column, or null.
func (r Row) Get(column string) Value {
	if r == nil {
		return Null()
	}
	return r[column]
}

// Dataset is an ordered, read-only table.
type Dataset struct {
	name    string
	columns []string
	index   map[string]int
	rows    []Row
}

// New builds a dataset from its column headers and rows.
//
// PARAMETERS:
//   - name: A label used in logs and report sheet names (usually the file name).
//   - columns: The physical column names in source order. Must be unique.
//   - rows: The data rows. The slice is retained, not copied.
//
// RETURNS:
//   - The dataset.
//   - An error if a column name is empty or repeated.
func New(name string, columns []string, rows []Row) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if col == "" {
			return nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		if _, dup := index[col]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col)
		}
		index[col] = i
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Dataset{name: name, columns: cols, index: index, rows: rows}, nil
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(name string, columns []string, rows []Row) *Dataset {
	ds, err := New(name, columns, rows)
	if err != nil {
		panic(err)
	}
	return ds
}

// Name returns the dataset label.
func (d *Dataset) Name() string { return d.name }

// Columns returns a copy of the physical column names in source order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// Has reports whether the dataset has a physical column with this name.
func (d *Dataset) Has(column string) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[column]
	return ok
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Row returns the row at position i.
func (d *Dataset) Row(i int) Row { return d.rows[i] }

// Value returns the cell at row position i and column, or null.
func (d *Dataset) Value(i int, column string) Value {
	return d.rows[i].Get(column)
}

// Select returns a dataset holding the rows at the given positions, in the
// order given. Rows are shared with the receiver.
func (d *Dataset) Select(positions []int) *Dataset {
	rows := make([]Row, 0, len(positions))
	for _, p := range positions {
		if p >= 0 && p < len(d.rows) {
			rows = append(rows, d.rows[p])
		}
	}
	return &Dataset{name: d.name, columns: d.columns, index: d.index, rows: rows}
}

// CountNonEmpty returns the number of rows with at least one non-blank cell.
func (d *Dataset) CountNonEmpty() int {
	n := 0
	for _, row := range d.rows {
		if !rowIsEmpty(row) {
			n++
		}
	}
	return n
}

func rowIsEmpty(row Row) bool {
	for _, v := range row {
		if !v.IsBlank() {
			return false
		}
	}
	return true
}
