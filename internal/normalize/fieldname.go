package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FieldName derives the lower-camel identifier for a display name:
// "Available Bikes" → "availableBikes", "last_update" → "lastUpdate",
// "XMLFeed" → "xmlFeed". Diacritics and apostrophes are dropped. Names
// already in lower-camel form map to themselves.
func FieldName(display string) string {
	words := splitWords(deburr(display))
	if len(words) == 0 {
		return ""
	}

	lower := cases.Lower(language.Und)
	upper := cases.Upper(language.Und)

	var b strings.Builder
	for i, w := range words {
		w = lower.String(w)
		if i > 0 {
			// Upper-case the first rune only: "2nd" stays "2nd".
			first := []rune(w)[0]
			w = upper.String(string(first)) + w[utf8.RuneLen(first):]
		}
		b.WriteString(w)
	}
	return b.String()
}

// deburr strips combining marks after canonical decomposition and removes
// apostrophes so "Driver's" stays one word.
func deburr(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.NewReplacer("'", "", "’", "").Replace(out)
}

// splitWords breaks s on any rune that is neither a letter nor a digit, on
// lower→upper transitions, before the last capital of an acronym followed by
// lowercase ("XMLFeed" → "XML", "Feed") and between letters and digits,
// except that an ordinal suffix stays with its number ("2nd", "4TH").
func splitWords(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	rs := []rune(s)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsDigit(prev) && unicode.IsLetter(r) && ordinalSuffixAt(rs, i):
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) &&
				i+1 < len(rs) && unicode.IsLower(rs[i+1]):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

var ordinalSuffixes = map[rune]string{'1': "st", '2': "nd", '3': "rd"}

// ordinalSuffixAt reports whether rs[i:] starts with the ordinal suffix for
// the digit at rs[i-1] ("1st", "22nd", "5th"; not "3th" nor "11th"). The
// suffix is all lower or all upper case and must not run into another
// letter of the same case or a digit.
func ordinalSuffixAt(rs []rune, i int) bool {
	if i+2 > len(rs) {
		return false
	}
	suffix := string(rs[i : i+2])
	isUpper := unicode.IsUpper(rs[i])
	if isUpper {
		suffix = strings.ToLower(suffix)
		if !unicode.IsUpper(rs[i+1]) {
			return false
		}
	} else if !unicode.IsLower(rs[i+1]) {
		return false
	}

	want, ok := ordinalSuffixes[rs[i-1]]
	if !ok {
		want = "th"
	}
	if suffix != want {
		return false
	}

	if i+2 < len(rs) {
		next := rs[i+2]
		if unicode.IsDigit(next) || (isUpper && unicode.IsUpper(next)) || (!isUpper && unicode.IsLower(next)) {
			return false
		}
	}
	return true
}
