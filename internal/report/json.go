package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// jsonIndent matches the indentation of the working paper JSON files.
const jsonIndent = "    "

// EncodeJSON writes v to w as indented JSON. HTML characters are not escaped.
func EncodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", jsonIndent)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteJSON writes v to path as indented JSON, creating the parent
// directory if needed.
func WriteJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
