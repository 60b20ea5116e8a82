package schema_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"explorer/internal/domain"
	"explorer/internal/schema"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// column builds rows holding a single column with the given values.
func column(key string, values ...any) []domain.RawRow {
	rows := make([]domain.RawRow, len(values))
	for i, v := range values {
		rows[i] = domain.RawRowOf([]string{key}, []any{v})
	}
	return rows
}

func deriveOne(t *testing.T, values ...any) domain.Field {
	t.Helper()
	fields := schema.DeriveFields(column("Col", values...))
	assert.Assert(t, is.Len(fields, 1))
	return fields[0]
}

// ─────────────────────────────────────────────────────────────
// Type inference
// ─────────────────────────────────────────────────────────────

func TestDeriveFields_Types(t *testing.T) {
	cases := []struct {
		name   string
		values []any
		want   domain.FieldType
	}{
		{"all null", []any{nil, "", "  "}, domain.FieldTypeText},
		{"booleans", []any{true, "FALSE", " true ", nil}, domain.FieldTypeBoolean},
		{"integers", []any{float64(1), "2", " 30 "}, domain.FieldTypeInteger},
		{"floats", []any{float64(1), "2.5", nil}, domain.FieldTypeFloat},
		{"dates", []any{"2024-01-02", "03/04/2024", "2024-05-06T07:08:09Z"}, domain.FieldTypeDate},
		{"mixed number and text", []any{float64(1), "abc", "abc"}, domain.FieldTypeText},
		{"mixed boolean and number", []any{true, float64(1)}, domain.FieldTypeText},
		{"single text", []any{"only"}, domain.FieldTypeText},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := deriveOne(t, c.values...)
			assert.Equal(t, f.Type, c.want)
			assert.DeepEqual(t, f.Options, []string{})
		})
	}
}

func TestDeriveFields_Option(t *testing.T) {
	f := deriveOne(t, "red", "red", "blue", "red", "blue")
	assert.Equal(t, f.Type, domain.FieldTypeOption)
	assert.DeepEqual(t, f.Options, []string{"blue", "red"})
}

func TestDeriveFields_OptionKeepsFirstSeenCasing(t *testing.T) {
	f := deriveOne(t, "Open", "OPEN", "closed", "open", "Closed", " open ")
	assert.Equal(t, f.Type, domain.FieldTypeOption)
	assert.DeepEqual(t, f.Options, []string{"closed", "Open"})
}

func TestDeriveFields_OptionAccentInsensitiveOrder(t *testing.T) {
	f := deriveOne(t, "Éire", "Zulu", "alpha", "Éire", "Zulu", "alpha")
	assert.Equal(t, f.Type, domain.FieldTypeOption)
	assert.DeepEqual(t, f.Options, []string{"alpha", "Éire", "Zulu"})
}

func TestDeriveFields_TooManyDistinctIsText(t *testing.T) {
	values := make([]any, 0, 50)
	for i := 0; i < 25; i++ {
		v := fmt.Sprintf("station-%c", 'a'+i)
		values = append(values, v, v)
	}
	f := deriveOne(t, values...)
	assert.Equal(t, f.Type, domain.FieldTypeText)
	assert.DeepEqual(t, f.Options, []string{})
}

func TestDeriveFields_LowRepetitionIsText(t *testing.T) {
	// 4 values over 3 distinct: ratio 1.33 < 1.5
	f := deriveOne(t, "a", "b", "c", "a")
	assert.Equal(t, f.Type, domain.FieldTypeText)
}

func TestDeriveFields_OptionDisqualifiedByTypedValue(t *testing.T) {
	f := deriveOne(t, "red", "red", "blue", "blue", float64(3))
	assert.Equal(t, f.Type, domain.FieldTypeText)
}

// ─────────────────────────────────────────────────────────────
// Field order and names
// ─────────────────────────────────────────────────────────────

func TestDeriveFields_FirstSeenOrder(t *testing.T) {
	rows := []domain.RawRow{
		domain.RawRowOf([]string{"Name", "Bikes"}, []any{"Smithfield", float64(3)}),
		domain.RawRowOf([]string{"Status", "Name"}, []any{"OPEN", "Pearse"}),
	}
	fields := schema.DeriveFields(rows)

	var displays, names []string
	for _, f := range fields {
		displays = append(displays, f.Display)
		names = append(names, f.Name)
	}
	assert.DeepEqual(t, displays, []string{"Name", "Bikes", "Status"})
	assert.DeepEqual(t, names, []string{"name", "bikes", "status"})
	// A key missing from a row counts as null.
	assert.Equal(t, fields[1].Type, domain.FieldTypeInteger)
}

func TestDeriveFields_Empty(t *testing.T) {
	fields := schema.DeriveFields(nil)
	assert.Assert(t, fields != nil)
	assert.Assert(t, is.Len(fields, 0))
}

func TestUniqueNames_Collisions(t *testing.T) {
	got := schema.UniqueNames([]string{"Bike Stands", "bike_stands", "bikeStands2", "BIKE-STANDS", "###", "!!"})
	assert.DeepEqual(t, got, []string{"bikeStands", "bikeStands3", "bikeStands2", "bikeStands4", "field", "field2"})
}

// ─────────────────────────────────────────────────────────────
// Cache
// ─────────────────────────────────────────────────────────────

type stubRows struct {
	calls int
	err   error
	rows  []domain.RawRow
}

func (s *stubRows) Rows(ctx context.Context) ([]domain.RawRow, error) {
	s.calls++
	return s.rows, s.err
}

func TestCache_MemoizesAfterSuccess(t *testing.T) {
	src := &stubRows{err: errors.New("down")}
	c := schema.NewCache(src)

	_, err := c.Fields(context.Background())
	assert.ErrorContains(t, err, "down")

	src.err = nil
	src.rows = column("Status", "OPEN", "OPEN")
	fields, err := c.Fields(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, fields[0].Name, "status")

	_, err = c.Fields(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, src.calls, 2)
}
