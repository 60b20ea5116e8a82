package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// isoPattern matches the ISO-8601 extended calendar forms: a year, optionally
// a month and day, and after a full date an optional time with fractional
// seconds and zone designator. The date/time separator may be T or a space.
var isoPattern = regexp.MustCompile(
	`^(\d{4})(?:-(\d{2})(?:-(\d{2})` +
		`(?:[T ](\d{2})(?::?(\d{2})(?::?(\d{2})(?:[.,](\d{1,9})\d*)?)?)?` +
		`\s*(Z|[+-]\d{2}(?::?\d{2})?)?)?)?)?$`,
)

// fallbackLayouts are tried in order after ISO-8601; the first match wins.
var fallbackLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
}

// ParseDate parses v as an instant. time.Time values pass through; strings
// are tried as ISO-8601 first, then against the day-first fallback layouts.
// Values without a zone are read as UTC.
func ParseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val.UTC(), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		if t, ok := parseISO(s); ok {
			return t, true
		}
		for _, layout := range fallbackLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func parseISO(s string) (time.Time, bool) {
	m := isoPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month := atoiDefault(m[2], 1)
	day := atoiDefault(m[3], 1)
	hour := atoiDefault(m[4], 0)
	minute := atoiDefault(m[5], 0)
	sec := atoiDefault(m[6], 0)
	nsec := 0
	if m[7] != "" {
		frac := m[7] + strings.Repeat("0", 9-len(m[7]))
		nsec, _ = strconv.Atoi(frac)
	}

	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, nsec, time.UTC)
	// time.Date normalizes overflow such as February 30; reject those.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}

	if zone := m[8]; zone != "" && zone != "Z" {
		offset, ok := parseOffset(zone)
		if !ok {
			return time.Time{}, false
		}
		t = t.Add(-offset)
	}
	return t, true
}

// parseOffset reads ±hh, ±hhmm or ±hh:mm.
func parseOffset(zone string) (time.Duration, bool) {
	sign := time.Duration(1)
	if zone[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(zone[1:], ":", "")
	hours, _ := strconv.Atoi(digits[:2])
	minutes := 0
	if len(digits) == 4 {
		minutes, _ = strconv.Atoi(digits[2:])
	}
	if hours > 23 || minutes > 59 {
		return 0, false
	}
	return sign * (time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute), true
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
