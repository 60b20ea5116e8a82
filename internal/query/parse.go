package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"explorer/internal/domain"
	"explorer/internal/normalize"
	"explorer/internal/standardize"

	"github.com/samber/lo"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// maxSafeInteger is the largest integer every JSON consumer reads exactly.
const maxSafeInteger = 1<<53 - 1

type object = orderedmap.OrderedMap[string, json.RawMessage]

// Parse validates a request body against the schema. An empty body yields
// the default filters. The first violation found is returned as a
// *domain.ValidationError, checking in order: body shape, unsupported keys,
// page, size, orderBy, where.
func Parse(body []byte, fields []domain.Field) (Filters, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return DefaultFilters(), nil
	}
	if !json.Valid(body) {
		return Filters{}, &domain.ValidationError{Message: "Request body must be valid JSON"}
	}

	req, ok := decodeObject(body)
	if !ok {
		return Filters{}, &domain.ValidationError{Message: "Request body must be a JSON object"}
	}

	if unsupported := unsupportedKeys(req); len(unsupported) > 0 {
		return Filters{}, &domain.ValidationError{
			Message: fmt.Sprintf("Unsupported request key(s): %s. Supported key(s): %s.",
				strings.Join(unsupported, ", "), strings.Join(SupportedKeys, ", ")),
			Key:       unsupported[0],
			Supported: SupportedKeys,
		}
	}

	f := DefaultFilters()
	var err error
	if f.Page, err = parsePagination(req, "page", DefaultPage, 0); err != nil {
		return Filters{}, err
	}
	if f.Size, err = parsePagination(req, "size", DefaultSize, MaxSize); err != nil {
		return Filters{}, err
	}
	if f.OrderBy, err = parseOrderBy(req, fields); err != nil {
		return Filters{}, err
	}
	if f.Where, err = parseWhere(req, fields); err != nil {
		return Filters{}, err
	}
	return f, nil
}

// decodeObject decodes raw as a JSON object keeping key order.
func decodeObject(raw []byte) (*object, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	obj := orderedmap.New[string, json.RawMessage]()
	if err := obj.UnmarshalJSON(raw); err != nil {
		return nil, false
	}
	return obj, true
}

func keys(obj *object) []string {
	out := make([]string, 0, obj.Len())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func unsupportedKeys(req *object) []string {
	return lo.Filter(keys(req), func(k string, _ int) bool {
		return !lo.Contains(SupportedKeys, k)
	})
}

// parsePagination reads an integer ≥ 1, bounded by limit when limit > 0.
func parsePagination(req *object, key string, def, limit int) (int, error) {
	raw, ok := req.Get(key)
	if !ok {
		return def, nil
	}

	n, ok := jsonInteger(raw)
	if !ok {
		return 0, domain.NewValidationError(key, "'%s' must be an integer", key)
	}
	if n < 1 {
		return 0, domain.NewValidationError(key, "'%s' must be greater than 0", key)
	}
	if limit > 0 && n > int64(limit) {
		return 0, domain.NewValidationError(key, "'%s' must be lower than or equal to %d", key, limit)
	}
	return int(n), nil
}

// jsonInteger accepts JSON numbers without a fractional part ("2", "2.0",
// "2e1") within the safe integer range.
func jsonInteger(raw json.RawMessage) (int64, bool) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.Trunc(f) != f || math.Abs(f) > maxSafeInteger {
		return 0, false
	}
	return int64(f), true
}

func parseOrderBy(req *object, fields []domain.Field) (*OrderBy, error) {
	raw, ok := req.Get("orderBy")
	if !ok {
		return nil, nil
	}

	obj, ok := decodeObject(raw)
	if !ok {
		return nil, domain.NewValidationError("orderBy", "'orderBy' must be an object")
	}

	var field string
	rawField, _ := obj.Get("field")
	if err := json.Unmarshal(rawField, &field); err != nil || strings.TrimSpace(field) == "" {
		return nil, domain.NewValidationError("orderBy.field", "'orderBy.field' must be a field name")
	}
	if _, ok := domain.Schema(fields).Lookup(field); !ok {
		return nil, domain.NewValidationError("orderBy.field", "Unknown orderBy field '%s'. Use names from /schema response", field)
	}

	var direction string
	rawDir, _ := obj.Get("direction")
	if err := json.Unmarshal(rawDir, &direction); err != nil || !lo.Contains(Directions, Direction(direction)) {
		return nil, &domain.ValidationError{
			Message:   fmt.Sprintf("'orderBy.direction' must be one of: %s", joinStrings(Directions)),
			Key:       "orderBy.direction",
			Supported: lo.Map(Directions, func(d Direction, _ int) string { return string(d) }),
		}
	}

	return &OrderBy{Field: field, Direction: Direction(direction)}, nil
}

func parseWhere(req *object, fields []domain.Field) (*Condition, error) {
	raw, ok := req.Get("where")
	if !ok {
		return nil, nil
	}

	where, ok := decodeObject(raw)
	if !ok {
		return nil, domain.NewValidationError("where", "'where' must be an object")
	}
	switch where.Len() {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, domain.NewValidationError("where", "Filtering by multiple fields is not supported")
	}

	entry := where.Oldest()
	fieldName := entry.Key

	cond, ok := decodeObject(entry.Value)
	if !ok {
		return nil, domain.NewValidationError("where."+fieldName, "Condition for field '%s' must be an object", fieldName)
	}
	if cond.Len() != 1 || !lo.Contains(Operators, Operator(cond.Oldest().Key)) {
		return nil, &domain.ValidationError{
			Message:   fmt.Sprintf("Field '%s' must have exactly one operator: %s", fieldName, joinStrings(Operators)),
			Key:       "where." + fieldName,
			Supported: lo.Map(Operators, func(o Operator, _ int) string { return string(o) }),
		}
	}
	op := Operator(cond.Oldest().Key)
	literal := cond.Oldest().Value

	field, ok := domain.Schema(fields).Lookup(fieldName)
	if !ok {
		return nil, domain.NewValidationError("where."+fieldName, "Unknown field '%s'. Use names from /schema response", fieldName)
	}

	if op != OpEq && !field.Type.IsComparable() {
		allowed := lo.Map(domain.ComparableFieldTypes, func(t domain.FieldType, _ int) string { return string(t) })
		return nil, &domain.ValidationError{
			Message:   fmt.Sprintf("Operator '%s' is only supported for %s fields", op, strings.Join(allowed, ", ")),
			Key:       "where." + fieldName,
			Supported: allowed,
		}
	}

	value, err := parseLiteral(field, literal)
	if err != nil {
		return nil, err
	}
	return &Condition{Field: field, Operator: op, Value: value}, nil
}

// parseLiteral coerces a filter literal with the field's parser. null and
// blank strings become a nil filter value; anything else must parse.
func parseLiteral(field domain.Field, raw json.RawMessage) (any, error) {
	invalid := domain.NewValidationError("where."+field.Name, "Invalid value for field '%s' of type '%s'", field.Name, field.Type)

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, invalid
	}
	switch v.(type) {
	case map[string]any, []any:
		return nil, invalid
	}

	present, ok := normalize.Nullable(v)
	if !ok {
		return nil, nil
	}
	parsed, ok := standardize.Parse(field.Type, present)
	if !ok {
		return nil, invalid
	}
	return parsed, nil
}

func joinStrings[T ~string](items []T) string {
	return strings.Join(lo.Map(items, func(s T, _ int) string { return string(s) }), ", ")
}
