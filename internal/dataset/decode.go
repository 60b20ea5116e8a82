package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"explorer/internal/domain"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fetch failure reasons shared by the sources.
const (
	ReasonNotArray   = "Dataset is not an array"
	ReasonNotObjects = "Dataset must be an array of JSON objects"
	ReasonBadPath    = "Dataset path not found"
)

// DecodeRows parses a JSON document holding an array of objects. When
// dataPath is set ("data.items") the array is looked up under that
// dot-separated path first. Row keys keep their document order; nested
// objects and arrays are flattened to their compact JSON text.
func DecodeRows(source string, data []byte, dataPath string) ([]domain.RawRow, error) {
	if dataPath != "" {
		var err error
		data, err = navigatePath(data, dataPath)
		if err != nil {
			return nil, domain.NewFetchError(source, ReasonBadPath, err)
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, domain.NewFetchError(source, ReasonNotArray, nil)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, domain.NewFetchError(source, ReasonNotArray, err)
	}

	rows := make([]domain.RawRow, 0, len(items))
	for i, item := range items {
		row, err := decodeRow(item)
		if err != nil {
			return nil, domain.NewFetchError(source, ReasonNotObjects, fmt.Errorf("element %d: %w", i, err))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(item json.RawMessage) (domain.RawRow, error) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.RawRow{}, fmt.Errorf("not a JSON object")
	}

	fields := orderedmap.New[string, json.RawMessage]()
	if err := fields.UnmarshalJSON(trimmed); err != nil {
		return domain.RawRow{}, err
	}

	row := domain.NewRawRow()
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		v, err := flattenValue(pair.Value)
		if err != nil {
			return domain.RawRow{}, fmt.Errorf("field %q: %w", pair.Key, err)
		}
		row.Set(pair.Key, v)
	}
	return row, nil
}

// flattenValue keeps scalars (string, number, bool, null) and serializes
// nested objects and arrays as compact JSON strings.
func flattenValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// navigatePath walks a dot-separated path into nested objects.
func navigatePath(data []byte, path string) ([]byte, error) {
	current := json.RawMessage(data)
	for _, part := range strings.Split(path, ".") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil, fmt.Errorf("%q is not inside an object", part)
		}
		next, ok := obj[part]
		if !ok {
			return nil, fmt.Errorf("%q not found", part)
		}
		current = next
	}
	return current, nil
}

// RowsFromColumns builds rows from a column list and positional values, as
// produced by table-shaped sources.
func RowsFromColumns(columns []string, values [][]any) []domain.RawRow {
	rows := make([]domain.RawRow, len(values))
	for i, v := range values {
		rows[i] = domain.RawRowOf(columns, v)
	}
	return rows
}
