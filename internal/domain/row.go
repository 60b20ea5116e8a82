package domain

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ── Rows ───────────────────────────────────────────────────
// Both row kinds keep their keys in insertion order so that field order
// follows the source document and responses serialize in schema order.

// RawRow is a single dataset row as delivered by a source.
// Values are nil, bool, float64 or string.
type RawRow struct {
	*orderedmap.OrderedMap[string, any]
}

// NewRawRow returns an empty RawRow.
func NewRawRow() RawRow {
	return RawRow{orderedmap.New[string, any]()}
}

// RawRowOf builds a RawRow from parallel key/value slices.
func RawRowOf(keys []string, values []any) RawRow {
	r := NewRawRow()
	for i, k := range keys {
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.Set(k, v)
	}
	return r
}

// Keys returns the row keys in insertion order.
func (r RawRow) Keys() []string {
	if r.OrderedMap == nil {
		return nil
	}
	keys := make([]string, 0, r.Len())
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Lookup returns the value stored under key; missing keys report ok=false.
func (r RawRow) Lookup(key string) (any, bool) {
	if r.OrderedMap == nil {
		return nil, false
	}
	return r.Get(key)
}

// StandardizedRow maps field names to typed values: nil, bool, float64,
// string or time.Time.
type StandardizedRow struct {
	*orderedmap.OrderedMap[string, any]
}

// NewStandardizedRow returns an empty StandardizedRow.
func NewStandardizedRow() StandardizedRow {
	return StandardizedRow{orderedmap.New[string, any]()}
}

// Value returns the value for a field name, nil when absent.
func (r StandardizedRow) Value(name string) any {
	if r.OrderedMap == nil {
		return nil
	}
	v, _ := r.Get(name)
	return v
}

// PaginatedResult is the response to a data query.
// Total counts the rows that passed the filter, before pagination.
type PaginatedResult struct {
	Data  []StandardizedRow `json:"data"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
	Total int               `json:"total"`
}
