package columnmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a decoded column map file in either form.
type Document struct {
	single map[string]string
	pairs  []map[string]string
}

// IsPairwise reports whether the document holds the list-of-pairs form.
func (d *Document) IsPairwise() bool { return d.pairs != nil }

// Map returns the single-map form validated against a domain catalogue.
func (d *Document) Map(domain Domain) (*Map, error) {
	if d.IsPairwise() {
		return nil, ErrNotSingle
	}
	return New(domain, d.single)
}

// PairMap returns the pairwise form using the given source labels.
func (d *Document) PairMap(leftLabel, rightLabel string) (*PairMap, error) {
	if !d.IsPairwise() {
		return nil, ErrNotPairwise
	}
	return NewPairMap(leftLabel, rightLabel, d.pairs)
}

// LoadFile reads a column map document. Files ending in .json are decoded
// as JSON; anything else as YAML.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read column map: %w", err)
	}

	var doc *Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		doc, err = DecodeJSON(data)
	} else {
		doc, err = DecodeYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse column map %s: %w", path, err)
	}
	return doc, nil
}

// DecodeJSON decodes {"column_map": {...}} or {"column_map": [{...}, ...]}.
func DecodeJSON(data []byte) (*Document, error) {
	var envelope struct {
		ColumnMap json.RawMessage `json:"column_map"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.ColumnMap) == 0 || string(envelope.ColumnMap) == "null" {
		return nil, ErrNoColumnMap
	}

	var single map[string]string
	if err := json.Unmarshal(envelope.ColumnMap, &single); err == nil {
		return &Document{single: single}, nil
	}

	var pairs []map[string]string
	if err := json.Unmarshal(envelope.ColumnMap, &pairs); err != nil {
		return nil, fmt.Errorf("column_map must be an object of strings or a list of objects: %w", err)
	}
	return &Document{pairs: pairs}, nil
}

// DecodeYAML decodes the same two shapes written as YAML.
func DecodeYAML(data []byte) (*Document, error) {
	var envelope struct {
		ColumnMap yaml.Node `yaml:"column_map"`
	}
	if err := yaml.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	switch envelope.ColumnMap.Kind {
	case yaml.MappingNode:
		var single map[string]string
		if err := envelope.ColumnMap.Decode(&single); err != nil {
			return nil, err
		}
		return &Document{single: single}, nil
	case yaml.SequenceNode:
		var pairs []map[string]string
		if err := envelope.ColumnMap.Decode(&pairs); err != nil {
			return nil, err
		}
		if pairs == nil {
			pairs = []map[string]string{}
		}
		return &Document{pairs: pairs}, nil
	case 0:
		return nil, ErrNoColumnMap
	default:
		return nil, fmt.Errorf("column_map must be a mapping or a sequence")
	}
}
