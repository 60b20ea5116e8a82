package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"explorer/internal/domain"

	"github.com/spf13/cast"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ── Filter ─────────────────────────────────────────────────

// Filter returns the rows matching cond, keeping their order. A nil cond
// matches everything.
func Filter(rows []domain.StandardizedRow, cond *Condition) []domain.StandardizedRow {
	if cond == nil {
		return rows
	}
	out := make([]domain.StandardizedRow, 0, len(rows))
	for _, row := range rows {
		if Matches(row.Value(cond.Field.Name), cond) {
			out = append(out, row)
		}
	}
	return out
}

// Matches reports whether a standardized value satisfies cond.
func Matches(v any, cond *Condition) bool {
	if cond.Operator == OpEq {
		return equal(v, cond.Value)
	}
	if v == nil || cond.Value == nil {
		return false
	}

	var c int
	switch left := v.(type) {
	case float64:
		right, ok := cond.Value.(float64)
		if !ok {
			return false
		}
		c = cmp.Compare(left, right)
	case time.Time:
		right, ok := cond.Value.(time.Time)
		if !ok || cond.Field.Type != domain.FieldTypeDate {
			return false
		}
		c = left.Compare(right)
	default:
		return false
	}

	switch cond.Operator {
	case OpGt:
		return c > 0
	case OpLt:
		return c < 0
	}
	return false
}

// equal compares dates by instant and strings without regard to case.
func equal(a, b any) bool {
	switch left := a.(type) {
	case nil:
		return b == nil
	case time.Time:
		right, ok := b.(time.Time)
		return ok && left.Equal(right)
	case string:
		right, ok := b.(string)
		return ok && strings.EqualFold(left, right)
	case float64:
		right, ok := b.(float64)
		return ok && left == right
	case bool:
		right, ok := b.(bool)
		return ok && left == right
	}
	return false
}

// ── Sort ───────────────────────────────────────────────────

// Sort returns the rows ordered by ob. The sort is stable and null values
// always come last, whatever the direction. A nil ob keeps the input order.
func Sort(rows []domain.StandardizedRow, ob *OrderBy) []domain.StandardizedRow {
	if ob == nil {
		return rows
	}

	// Collators are not safe for concurrent use.
	col := collate.New(language.Und, collate.Loose)
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b domain.StandardizedRow) int {
		left, right := a.Value(ob.Field), b.Value(ob.Field)
		switch {
		case left == nil && right == nil:
			return 0
		case left == nil:
			return 1
		case right == nil:
			return -1
		}
		c := compareValues(col, left, right)
		if ob.Direction == Desc {
			return -c
		}
		return c
	})
	return sorted
}

func compareValues(col *collate.Collator, a, b any) int {
	switch left := a.(type) {
	case time.Time:
		if right, ok := b.(time.Time); ok {
			return left.Compare(right)
		}
	case string:
		if right, ok := b.(string); ok {
			return col.CompareString(left, right)
		}
	case bool:
		if right, ok := b.(bool); ok {
			return cmp.Compare(boolRank(left), boolRank(right))
		}
	case float64:
		if right, ok := b.(float64); ok {
			return cmp.Compare(left, right)
		}
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ── Paginate ───────────────────────────────────────────────

// Paginate returns the 1-based page of the given size.
func Paginate(rows []domain.StandardizedRow, page, size int) []domain.StandardizedRow {
	if page < 1 || size < 1 {
		return []domain.StandardizedRow{}
	}
	start := len(rows)
	if (page - 1) <= len(rows)/size {
		start = min((page-1)*size, len(rows))
	}
	end := min(start+size, len(rows))
	return rows[start:end:end]
}
