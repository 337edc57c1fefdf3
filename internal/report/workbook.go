// =============================================================================
// Payroll Audit - Workbook Writer
// =============================================================================
//
// This module writes audit working papers as Excel workbooks. Every output
// is a list of tables, one per sheet:
//
//   Exception workbook (payroll)        Exception workbook (fixed assets)
//   +----------------------+            +----------------------+
//   | Data                 |            | Data_Cur             |
//   | Exception Summary    |            | Data_Prev            |
//   | Exception_1          |            | Exception Summary    |
//   | Exception_4          |            | Exception_2          |
//   | ...                  |            | ...                  |
//   +----------------------+            +----------------------+
//
// Only rules with at least one violation get an Exception_<id> sheet. Cells
// hold plain values; dates are shown as DD/MM/YYYY.
//
// CUSTOMIZATION:
//   - Change DateFormat to alter how date cells display
//   - Add sheets by appending Tables before calling WriteWorkbook
//
// =============================================================================

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/rules"
)

// DateFormat is the number format applied to date cells.
var DateFormat = "DD/MM/YYYY"

// Sheet names used by the exception workbook.
const (
	SheetData           = "Data"
	SheetDataCurrent    = "Data_Cur"
	SheetDataPrevious   = "Data_Prev"
	SheetSummary        = "Exception Summary"
	exceptionSheetLabel = "Exception_%d"
)

// maxSheetName is Excel's sheet name length limit.
const maxSheetName = 31

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is the content of one worksheet.
type Table struct {
	// Name is the sheet name. Characters Excel rejects are replaced.
	Name string

	// Preamble rows are written above the header row, followed by one
	// blank row.
	Preamble [][]interface{}

	// Headers is the header row.
	Headers []string

	// Rows hold the cell values. Supported types are nil, string, the
	// numeric kinds, bool, time.Time, decimal.Decimal and dataset.Value.
	Rows [][]interface{}
}

// DatasetTable lays out the rows of ds at the given positions under its
// headers. A nil positions slice selects every row.
func DatasetTable(name string, ds *dataset.Dataset, positions []int) Table {
	if positions != nil {
		ds = ds.Select(positions)
	}

	cols := ds.Columns()
	t := Table{Name: name, Headers: cols, Rows: make([][]interface{}, 0, ds.Len())}
	for i := 0; i < ds.Len(); i++ {
		line := make([]interface{}, len(cols))
		for j, c := range cols {
			line[j] = ds.Value(i, c)
		}
		t.Rows = append(t.Rows, line)
	}
	return t
}

// =============================================================================
// EXCEPTION WORKBOOK
// =============================================================================

// ExceptionTables builds the sheets of an exception workbook.
//
// PARAMETERS:
//   - ev: The rule evaluation.
//   - current: The dataset the rules flagged rows of.
//   - previous: The prior-period dataset, or nil. When given, the data
//     sheets are named Data_Cur and Data_Prev instead of Data.
//
// RETURNS:
//   - The tables in sheet order.
func ExceptionTables(ev *rules.Evaluation, current, previous *dataset.Dataset) []Table {
	var tables []Table
	if previous != nil {
		tables = append(tables,
			DatasetTable(SheetDataCurrent, current, nil),
			DatasetTable(SheetDataPrevious, previous, nil),
		)
	} else {
		tables = append(tables, DatasetTable(SheetData, current, nil))
	}

	summary := Table{
		Name:    SheetSummary,
		Headers: []string{"Exception no.", "Exception", "Exception count"},
	}
	for _, row := range rules.Summary(ev) {
		summary.Rows = append(summary.Rows, []interface{}{row.Label, row.Description, row.Count})
	}
	tables = append(tables, summary)

	for _, o := range ev.Outcomes {
		if o.Count() == 0 {
			continue
		}
		tables = append(tables, DatasetTable(fmt.Sprintf(exceptionSheetLabel, o.RuleID), current, o.Rows))
	}
	return tables
}

// WriteExceptionWorkbook writes the exception workbook of an evaluation to path.
func WriteExceptionWorkbook(path string, ev *rules.Evaluation, current, previous *dataset.Dataset) error {
	return WriteWorkbook(path, ExceptionTables(ev, current, previous)...)
}

// =============================================================================
// WORKBOOK OUTPUT
// =============================================================================

// WriteWorkbook writes tables to a new workbook at path, one sheet each, in
// order. The parent directory is created if needed and an existing file is
// replaced.
//
// RETURNS:
//   - An error if no table is given, two tables share a sheet name, or the
//     file cannot be written.
func WriteWorkbook(path string, tables ...Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("workbook %s has no sheets", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &DateFormat})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	seen := make(map[string]bool, len(tables))
	for i, t := range tables {
		name := SheetName(t.Name)
		if seen[strings.ToLower(name)] {
			return fmt.Errorf("duplicate sheet name %q", name)
		}
		seen[strings.ToLower(name)] = true

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		if err := writeTable(f, name, t, dateStyle); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, t Table, dateStyle int) error {
	row := 1
	for _, pre := range t.Preamble {
		if err := writeRow(f, sheet, row, pre, dateStyle); err != nil {
			return err
		}
		row++
	}
	if len(t.Preamble) > 0 {
		row++
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := writeRow(f, sheet, row, header, dateStyle); err != nil {
		return err
	}
	row++

	for _, line := range t.Rows {
		if err := writeRow(f, sheet, row, line, dateStyle); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}, dateStyle int) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = cellValue(v)
	}

	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &cells); err != nil {
		return err
	}

	for i, c := range cells {
		if _, ok := c.(time.Time); !ok {
			continue
		}
		ref, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, ref, ref, dateStyle); err != nil {
			return err
		}
	}
	return nil
}

// cellValue converts a table value to something excelize writes natively.
func cellValue(v interface{}) interface{} {
	switch x := v.(type) {
	case dataset.Value:
		switch x.Kind() {
		case dataset.KindNumber:
			f, _ := x.Float()
			return f
		case dataset.KindDate:
			t, _ := x.Time()
			return t
		case dataset.KindString:
			return x.Text()
		default:
			return nil
		}
	case decimal.Decimal:
		return x.InexactFloat64()
	default:
		return v
	}
}

// SheetName makes name acceptable to Excel: the characters : \ / ? * [ ]
// become underscores, and the result is cut to 31 characters. An empty
// name becomes "Sheet".
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))

	if name == "" {
		return "Sheet"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}
