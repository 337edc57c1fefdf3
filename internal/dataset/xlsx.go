// =============================================================================
// Payroll Audit - XLSX Loader
// =============================================================================
//
// Reads one worksheet of an XLSX workbook into a Dataset using excelize.
//
// CELL TYPING:
//   Workbooks store dates as serial numbers with a date number format, so a
//   raw read cannot tell 45383 (a count) from 45383 (1 April 2024). The
//   loader therefore reads the sheet twice:
//     - raw values (RawCellValue) give the stored number
//     - formatted values give what the user sees
//   A cell whose raw value is numeric but whose formatted text is not a
//   number is treated as an Excel date serial.
//
// =============================================================================

package dataset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads a worksheet into a dataset.
//
// PARAMETERS:
//   - path: The workbook path.
//   - opts: Sheet selection and header handling.
//
// RETURNS:
//   - The dataset.
//   - An error if the workbook or sheet cannot be read, or has no header row.
func LoadXLSX(path string, opts LoadOptions) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, filepath.Base(path), opts)
}

func readSheet(f *excelize.File, name string, opts LoadOptions) (*Dataset, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, name)
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	hi := opts.headerIndex()
	if len(raw) <= hi {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	headers := NormalizeHeaders(shown[hi], opts.LowercaseHeaders)

	cells := make([][]Value, 0, len(raw)-hi-1)
	for r := hi + 1; r < len(raw); r++ {
		var display []string
		if r < len(shown) {
			display = shown[r]
		}
		record := make([]Value, len(raw[r]))
		for c, rv := range raw[r] {
			sv := rv
			if c < len(display) {
				sv = display[c]
			}
			record[c] = xlsxCell(rv, sv)
		}
		cells = append(cells, record)
	}

	if opts.Sheet != "" {
		name = name + ":" + sheet
	}
	return build(name, headers, cells, opts.KeepEmptyRows)
}

// xlsxCell types a cell from its raw and formatted readings.
func xlsxCell(raw, shown string) Value {
	if strings.TrimSpace(raw) == "" {
		return Null()
	}

	num, isNum := ParseNumber(raw)
	if !isNum {
		return String(raw)
	}

	if _, shownNum := ParseNumber(strings.TrimSuffix(strings.TrimSpace(shown), "%")); shownNum {
		return Number(num)
	}
	if looksLikeDate(shown) {
		if t, err := excelize.ExcelDateToTime(num, false); err == nil {
			return Date(t)
		}
	}
	return Number(num)
}

var (
	dateSeparator = regexp.MustCompile(`\d[/\-.]\d`)
	monthNames    = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
)

func looksLikeDate(s string) bool {
	s = strings.ToLower(s)
	for _, m := range monthNames {
		if strings.Contains(s, m) {
			return true
		}
	}
	return dateSeparator.MatchString(s)
}
