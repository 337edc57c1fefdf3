package columnmap

import (
	"errors"
	"fmt"
	"strings"
)

// MissingFieldError reports catalogue fields absent from a single column map.
type MissingFieldError struct {
	Domain Domain
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s column map is missing fields: %s", e.Domain, strings.Join(e.Fields, ", "))
}

var (
	// ErrNotSingle is returned when a single map is requested from a pairwise document.
	ErrNotSingle = errors.New("column map is pairwise, expected a single object")

	// ErrNotPairwise is returned when a pairwise map is requested from a single-map document.
	ErrNotPairwise = errors.New("column map is a single object, expected a list of pairs")

	// ErrNoColumnMap is returned when a document has no column_map key.
	ErrNoColumnMap = errors.New("document has no column_map")
)
