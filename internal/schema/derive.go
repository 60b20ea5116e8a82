// Package schema infers a typed column schema from raw dataset rows.
package schema

import (
	"slices"
	"strconv"
	"strings"

	"explorer/internal/domain"
	"explorer/internal/normalize"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// OPTION qualification thresholds.
const (
	MaxOptions         = 20
	MinRepetitionRatio = 1.5
)

const fallbackName = "field"

// stats are the per-column tallies used to decide the field type.
type stats struct {
	nonNull  int
	booleans int
	integers int
	floats   int
	dates    int
	texts    int

	// distinct text values, first-seen casing kept
	options     []string
	seenOptions map[string]bool // lower-cased
}

// DeriveFields infers one Field per distinct column key, in first-seen order.
// It is deterministic and never fails; an empty dataset yields no fields.
func DeriveFields(rows []domain.RawRow) []domain.Field {
	displays := collectDisplayNames(rows)
	names := UniqueNames(displays)

	fields := make([]domain.Field, len(displays))
	for i, display := range displays {
		st := columnStats(display, rows)
		typ := inferType(st)
		options := []string{}
		if typ == domain.FieldTypeOption {
			options = SortOptions(st.options)
		}
		fields[i] = domain.Field{
			Display: display,
			Name:    names[i],
			Type:    typ,
			Options: options,
		}
	}
	return fields
}

func collectDisplayNames(rows []domain.RawRow) []string {
	seen := map[string]bool{}
	var displays []string
	for _, row := range rows {
		for _, key := range row.Keys() {
			if !seen[key] {
				seen[key] = true
				displays = append(displays, key)
			}
		}
	}
	return displays
}

// columnStats classifies every non-null value of a column in priority
// order: boolean, number, date, text.
func columnStats(display string, rows []domain.RawRow) stats {
	st := stats{seenOptions: map[string]bool{}}
	for _, row := range rows {
		raw, _ := row.Lookup(display)
		v, ok := normalize.Nullable(raw)
		if !ok {
			continue
		}
		st.nonNull++

		if _, ok := normalize.Boolean(v); ok {
			st.booleans++
			continue
		}
		if n, ok := normalize.ParseNumber(v); ok {
			if n.Integer {
				st.integers++
			} else {
				st.floats++
			}
			continue
		}
		if _, ok := normalize.ParseDate(v); ok {
			st.dates++
			continue
		}

		text := normalize.Text(v)
		key := strings.ToLower(text)
		if !st.seenOptions[key] {
			st.seenOptions[key] = true
			st.options = append(st.options, text)
		}
		st.texts++
	}
	return st
}

func inferType(st stats) domain.FieldType {
	switch {
	case st.nonNull == 0:
		return domain.FieldTypeText
	case st.booleans == st.nonNull:
		return domain.FieldTypeBoolean
	case st.integers+st.floats == st.nonNull:
		if st.floats > 0 {
			return domain.FieldTypeFloat
		}
		return domain.FieldTypeInteger
	case st.dates == st.nonNull:
		return domain.FieldTypeDate
	case isOption(st):
		return domain.FieldTypeOption
	default:
		return domain.FieldTypeText
	}
}

// isOption reports whether a text column looks categorical: only text
// values, more than one of them, few distinct values that repeat enough.
func isOption(st stats) bool {
	typed := st.booleans + st.integers + st.floats + st.dates
	if typed > 0 || st.texts <= 1 {
		return false
	}
	distinct := len(st.options)
	if distinct == 0 || distinct > MaxOptions {
		return false
	}
	return float64(st.texts)/float64(distinct) >= MinRepetitionRatio
}

// SortOptions orders option labels with a case- and accent-insensitive
// collation, breaking ties with the full collation so the order is total.
func SortOptions(options []string) []string {
	sorted := append([]string(nil), options...)
	loose := collate.New(language.Und, collate.Loose)
	strict := collate.New(language.Und)
	slices.SortFunc(sorted, func(a, b string) int {
		if c := loose.CompareString(a, b); c != 0 {
			return c
		}
		if c := strict.CompareString(a, b); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return sorted
}

// UniqueNames maps display names to field names. When two displays share a
// name the first keeps it and later ones get the smallest numeric suffix
// (2, 3, ...) not already taken by any field. Displays with no letters or
// digits fall back to "field".
func UniqueNames(displays []string) []string {
	bases := lo.Map(displays, func(d string, _ int) string {
		if name := normalize.FieldName(d); name != "" {
			return name
		}
		return fallbackName
	})

	// Reserve every base first so a suffixed name never steals a name
	// another display derives directly.
	taken := lo.SliceToMap(bases, func(b string) (string, bool) { return b, false })
	used := map[string]bool{}

	names := make([]string, len(bases))
	for i, base := range bases {
		if !used[base] {
			used[base] = true
			names[i] = base
			continue
		}
		for n := 2; ; n++ {
			candidate := base + strconv.Itoa(n)
			if _, reserved := taken[candidate]; reserved || used[candidate] {
				continue
			}
			used[candidate] = true
			names[i] = candidate
			break
		}
	}
	return names
}
