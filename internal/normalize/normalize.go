// Package normalize holds the pure field-cleaning rules applied by the
// preprocessor. Every rule is idempotent: applying it to already-clean
// input returns the input unchanged.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var multiSpace = regexp.MustCompile(`\s+`)

// priceStrip removes thousands separators and the currency symbols seen in
// manual entry.
var priceStrip = strings.NewReplacer(",", "", "₹", "", "$", "")

// CollapseSpaces trims s and replaces any internal whitespace run with a
// single space.
func CollapseSpaces(s string) string {
	return multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Title converts s to English title case ("acme CO" -> "Acme Co").
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// CapFirst upper-cases the first rune and lower-cases the remainder. Used
// for regions, which are not full title-cased.
func CapFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
}

// Price parses a manually entered price, tolerating thousands separators
// and currency symbols. Unparsable values default to 0.
func Price(s string) float64 {
	v := strings.TrimSpace(priceStrip.Replace(s))
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatPrice renders a parsed price back into its canonical raw-table
// representation.
func FormatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
