package normalize

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	reCurrencyMarker = regexp.MustCompile(`(?i)r\$|reais|real|euros?|eur|brl|€|\$`)
	reCanonicalNum   = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)
)

// ParseCurrency turns a locale-formatted amount ("R$ 1.234,56", "1 234,56 €",
// "(880,00)") into a number. With both separators present the last one is the
// decimal point; a single comma is a decimal comma; a single period is kept as
// a decimal point; a repeated separator is digit grouping.
// It reports false for anything that is not an amount.
func ParseCurrency(raw string) (float64, bool) {
	s := reCurrencyMarker.ReplaceAllString(raw, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		negative = true
		s = s[:len(s)-1]
	}
	if s == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		dec := max(lastDot, lastComma)
		intPart := strings.NewReplacer(".", "", ",", "").Replace(s[:dec])
		s = intPart + "." + s[dec+1:]
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	if !reCanonicalNum.MatchString(s) {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return 0, false
	}
	if negative {
		d = d.Neg()
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Decimal converts a parsed amount into an exact decimal for arithmetic.
func Decimal(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
