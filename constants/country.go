package constants

import "strings"

// Country is the lower-case ISO 3166-1 alpha-2 code of a supported payslip jurisdiction.
type Country string

const (
	Brazil   Country = "br"
	France   Country = "fr"
	Portugal Country = "pt"
)

var allCountries = []Country{Brazil, France, Portugal}

// SupportedCountries returns the supported codes in a stable order.
func SupportedCountries() []Country {
	out := make([]Country, len(allCountries))
	copy(out, allCountries)
	return out
}

func CountriesAsStringSlice() []string {
	result := make([]string, len(allCountries))
	for i, c := range allCountries {
		result[i] = string(c)
	}
	return result
}

// ParseCountry resolves a country code, accepting any case and the alpha-3 aliases.
func ParseCountry(input string) (Country, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]Country{
		"bra": Brazil,
		"fra": France,
		"prt": Portugal,
	}
	if c, ok := synonyms[normalized]; ok {
		return c, true
	}

	for _, c := range allCountries {
		if normalized == string(c) {
			return c, true
		}
	}
	return "", false
}
