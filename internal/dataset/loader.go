// =============================================================================
// Payroll Audit - Dataset Loading
// =============================================================================
//
// Loaders turn an input file into a Dataset. Two formats are supported:
//   - XLSX workbooks (pay registers, fixed asset registers, CTC reports)
//   - CSV exports
//
// Both share the same header handling:
//   1. Headers are trimmed, optionally lowercased
//   2. Empty headers become "Column_<n>"
//   3. Repeated headers get "_1", "_2", ... suffixes in order of appearance
//
// and the same row handling:
//   - Blank cells become null
//   - Rows where every cell is blank are dropped unless KeepEmptyRows is set
//
// =============================================================================

package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LoadOptions controls how an input file is read.
type LoadOptions struct {
	// Sheet is the worksheet to read from an XLSX file.
	// Default: the first sheet in the workbook.
	Sheet string

	// HeaderRow is the 1-based row holding the column headers.
	// Rows above it are ignored. Default: 1.
	HeaderRow int

	// LowercaseHeaders lowercases every header after trimming.
	LowercaseHeaders bool

	// KeepEmptyRows keeps rows where every cell is blank.
	KeepEmptyRows bool

	// Delimiter is the CSV field separator. Accepts a single character or
	// one of "tab", "pipe", "semicolon". Default: ",".
	Delimiter string
}

func (o LoadOptions) headerIndex() int {
	if o.HeaderRow <= 1 {
		return 0
	}
	return o.HeaderRow - 1
}

// Load reads a dataset from path, choosing the loader from the extension.
//
// RETURNS:
//   - The dataset, named after the file's base name.
//   - An error if the format is not supported or the file cannot be read.
func Load(path string, opts LoadOptions) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, opts)
	case ".csv", ".txt":
		return LoadCSV(path, opts)
	default:
		return nil, fmt.Errorf("unsupported input format %q for %s", filepath.Ext(path), path)
	}
}

// NormalizeHeaders cleans raw header cells into unique column names.
//
// EXAMPLE:
//
//	[" Emp Code ", "Amount", "", "Amount", "Amount"]
//	-> ["Emp Code", "Amount", "Column_3", "Amount_1", "Amount_2"]
func NormalizeHeaders(raw []string, lowercase bool) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	taken := make(map[string]bool, len(raw))

	for i, h := range raw {
		h = strings.TrimSpace(h)
		if lowercase {
			h = strings.ToLower(h)
		}
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}

		name := h
		for taken[name] {
			seen[h]++
			name = fmt.Sprintf("%s_%d", h, seen[h])
		}
		taken[name] = true
		headers[i] = name
	}

	return headers
}

// build assembles a dataset from normalized headers and typed cells.
func build(name string, headers []string, cells [][]Value, keepEmpty bool) (*Dataset, error) {
	rows := make([]Row, 0, len(cells))
	for _, record := range cells {
		row := make(Row, len(headers))
		for i, col := range headers {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = Null()
			}
		}
		if !keepEmpty && rowIsEmpty(row) {
			continue
		}
		rows = append(rows, row)
	}
	return New(name, headers, rows)
}
