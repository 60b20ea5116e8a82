// Package normalize holds the value parsers shared by schema inference, row
// standardization and filter literal parsing. Every parser accepts the
// untyped JSON-like values found in raw rows: nil, bool, float64 or string.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Nullable maps nil and whitespace-only strings to nil and returns every
// other value unchanged. The second result reports whether the value is
// present.
func Nullable(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, false
		}
	}
	return v, true
}

// Text renders v as trimmed text. Non-string values use their canonical
// textual form.
func Text(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	if f, ok := v.(float64); ok {
		return FormatNumber(f)
	}
	return cast.ToString(v)
}

// Boolean parses native booleans and the literals "true"/"false" in any
// letter case.
func Boolean(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// Number is a parsed numeric value and whether it has no fractional part.
type Number struct {
	Value   float64
	Integer bool
}

// ParseNumber accepts finite native numbers and strings holding a finite
// decimal, exponent or 0x/0o/0b prefixed integer literal.
func ParseNumber(v any) (Number, bool) {
	switch val := v.(type) {
	case float64:
		return numberOf(val)
	case int:
		return numberOf(float64(val))
	case int64:
		return numberOf(float64(val))
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return Number{}, false
		}
		f, ok := parseNumericText(s)
		if !ok {
			return Number{}, false
		}
		return numberOf(f)
	}
	return Number{}, false
}

func numberOf(f float64) (Number, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}, false
	}
	return Number{Value: f, Integer: math.Trunc(f) == f}, true
}

func parseNumericText(s string) (float64, bool) {
	unsigned := strings.TrimLeft(s, "+-")
	if len(unsigned) > 1 && unsigned[0] == '0' && strings.ContainsRune("xXoObB", rune(unsigned[1])) {
		// No sign before a base prefix.
		if unsigned != s {
			return 0, false
		}
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil || strings.Contains(s, "_") {
			return 0, false
		}
		return float64(n), true
	}
	// ParseFloat also knows "inf", "nan" and hex floats; none of them
	// are plain decimal literals.
	if strings.ContainsAny(s, "_pPxX") || strings.ContainsAny(strings.ToLower(s), "in") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatNumber renders f the shortest way that round-trips, without an
// exponent for values that fit comfortably in an integer.
func FormatNumber(f float64) string {
	if math.Trunc(f) == f && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
