package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var reDateToken = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})|(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})`)

// monthNames covers Portuguese and French month names and their usual
// abbreviations, already folded (no accents).
var monthNames = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "marco": time.March,
	"abril": time.April, "maio": time.May, "junho": time.June, "julho": time.July,
	"agosto": time.August, "setembro": time.September, "outubro": time.October,
	"novembro": time.November, "dezembro": time.December,

	"janvier": time.January, "fevrier": time.February, "mars": time.March,
	"avril": time.April, "mai": time.May, "juin": time.June, "juillet": time.July,
	"aout": time.August, "septembre": time.September, "octobre": time.October,
	"novembre": time.November, "decembre": time.December,

	"jan": time.January, "fev": time.February, "mar": time.March, "abr": time.April,
	"jun": time.June, "jul": time.July, "ago": time.August, "set": time.September,
	"out": time.October, "nov": time.November, "dez": time.December,
	"fevr": time.February, "avr": time.April, "juil": time.July, "sept": time.September,
	"oct": time.October, "dec": time.December,
}

var reMonthToken = buildMonthRegexp()

func buildMonthRegexp() *regexp.Regexp {
	names := make([]string, 0, len(monthNames))
	for n := range monthNames {
		names = append(names, n)
	}
	// longest first so "marco" wins over "mar"
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return regexp.MustCompile(`(0?[1-9]|1[0-2])[/.\-](\d{4})\b|\b(` + strings.Join(names, "|") + `)\.?(?:[ ]*(?:de|/|-)[ ]*|[ ]+)(\d{4})\b`)
}

// ParseDate converts dd/mm/yyyy, dd-mm-yyyy, dd.mm.yyyy, dd/mm/yy or
// yyyy-mm-dd into YYYY-MM-DD. Impossible dates are rejected.
func ParseDate(raw string) (string, bool) {
	m := reDateToken.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	var y, mo, d int
	if m[1] != "" {
		y, _ = strconv.Atoi(m[1])
		mo, _ = strconv.Atoi(m[2])
		d, _ = strconv.Atoi(m[3])
	} else {
		d, _ = strconv.Atoi(m[4])
		mo, _ = strconv.Atoi(m[5])
		y, _ = strconv.Atoi(m[6])
		if len(m[6]) == 2 {
			y = expandYear(y)
		}
	}
	return formatDate(y, mo, d)
}

// DateTokens returns every date-looking substring of s in text order.
func DateTokens(s string) []string {
	return reDateToken.FindAllString(s, -1)
}

// MonthTokens returns month references ("03/2024", "marco de 2024") in s.
// Month/year pairs that are the tail of a full date are skipped.
func MonthTokens(s string) []string {
	var out []string
	for _, loc := range reMonthToken.FindAllStringIndex(s, -1) {
		if loc[0] > 0 {
			prev := s[loc[0]-1]
			if prev == '/' || prev == '.' || prev == '-' || (prev >= '0' && prev <= '9') {
				continue
			}
		}
		out = append(out, s[loc[0]:loc[1]])
	}
	return out
}

// MonthBounds returns the first and last day of a month reference.
func MonthBounds(token string) (start, end string, ok bool) {
	m := reMonthToken.FindStringSubmatch(FoldString(strings.TrimSpace(token)))
	if m == nil {
		return "", "", false
	}
	var month time.Month
	var year int
	if m[1] != "" {
		n, _ := strconv.Atoi(m[1])
		month = time.Month(n)
		year, _ = strconv.Atoi(m[2])
	} else {
		month = monthNames[m[3]]
		year, _ = strconv.Atoi(m[4])
	}
	if year < 1900 || year > 2999 {
		return "", "", false
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(isoDate), last.Format(isoDate), true
}

func expandYear(yy int) int {
	if yy < 70 {
		return 2000 + yy
	}
	return 1900 + yy
}

func formatDate(y, mo, d int) (string, bool) {
	if y < 1900 || y > 2999 || mo < 1 || mo > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d), true
}
