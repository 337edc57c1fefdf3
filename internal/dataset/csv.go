// =============================================================================
// Payroll Audit - CSV Loader
// =============================================================================
//
// Reads a delimited text export into a Dataset. Cells that parse as numbers
// become numeric values; everything else stays text. Dates are left as text
// and normalized by internal/dates when a rule needs them.
//
// =============================================================================

package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// utf8BOM is stripped from the first header cell.
const utf8BOM = "\uFEFF"

// LoadCSV reads a CSV file into a dataset.
func LoadCSV(path string, opts LoadOptions) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file, filepath.Base(path), opts)
}

// ReadCSV reads CSV content from r into a dataset named name.
func ReadCSV(r io.Reader, name string, opts LoadOptions) (*Dataset, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	configureReader(reader, opts.Delimiter)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	hi := opts.headerIndex()
	if len(records) <= hi {
		return nil, fmt.Errorf("CSV file %s has no header row", name)
	}

	rawHeaders := records[hi]
	if len(rawHeaders) > 0 {
		rawHeaders[0] = strings.TrimPrefix(rawHeaders[0], utf8BOM)
	}
	headers := NormalizeHeaders(rawHeaders, opts.LowercaseHeaders)

	cells := make([][]Value, 0, len(records)-hi-1)
	for _, record := range records[hi+1:] {
		values := make([]Value, len(record))
		for i, text := range record {
			values[i] = csvCell(text)
		}
		cells = append(cells, values)
	}

	return build(name, headers, cells, opts.KeepEmptyRows)
}

// configureReader applies the delimiter setting to the reader.
func configureReader(reader *csv.Reader, delimiter string) {
	switch strings.ToLower(delimiter) {
	case "\\t", "tab":
		reader.Comma = '\t'
	case "pipe":
		reader.Comma = '|'
	case "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		}
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

func csvCell(text string) Value {
	if strings.TrimSpace(text) == "" {
		return Null()
	}
	if f, ok := ParseNumber(text); ok {
		return Number(f)
	}
	return String(text)
}
