// Package standardize coerces raw dataset rows into typed rows following an
// inferred schema. Coercion never fails: a value that does not fit its
// field's type becomes nil.
package standardize

import (
	"explorer/internal/domain"
	"explorer/internal/normalize"
)

// Parse coerces a present (non-null) value into the Go representation of
// typ: bool, time.Time, float64 or string.
func Parse(typ domain.FieldType, v any) (any, bool) {
	switch typ {
	case domain.FieldTypeBoolean:
		return normalize.Boolean(v)
	case domain.FieldTypeDate:
		return normalize.ParseDate(v)
	case domain.FieldTypeFloat, domain.FieldTypeInteger:
		n, ok := normalize.ParseNumber(v)
		return n.Value, ok
	default:
		return normalize.Text(v), true
	}
}

// Value standardizes a single raw value for field.
func Value(field domain.Field, raw any) any {
	v, ok := normalize.Nullable(raw)
	if !ok {
		return nil
	}
	parsed, ok := Parse(field.Type, v)
	if !ok {
		return nil
	}
	return parsed
}

// Row builds the typed row for raw: one entry per field, in schema order.
func Row(raw domain.RawRow, fields []domain.Field) domain.StandardizedRow {
	out := domain.NewStandardizedRow()
	for _, f := range fields {
		v, _ := raw.Lookup(f.Display)
		out.Set(f.Name, Value(f, v))
	}
	return out
}

// Rows standardizes every raw row.
func Rows(raw []domain.RawRow, fields []domain.Field) []domain.StandardizedRow {
	out := make([]domain.StandardizedRow, len(raw))
	for i, r := range raw {
		out[i] = Row(r, fields)
	}
	return out
}
