package adapter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/payslip-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

// CaptureKind is the shape of the value expected after a label.
type CaptureKind string

const (
	CaptureAmount     CaptureKind = "amount"
	CaptureText       CaptureKind = "text"
	CaptureTaxID      CaptureKind = "taxid"
	CaptureDate       CaptureKind = "date"
	CaptureMonthStart CaptureKind = "month_start"
	CaptureMonthEnd   CaptureKind = "month_end"
)

// accepts reports whether values of this capture kind can fill field kind k.
func (c CaptureKind) accepts(k entity.FieldKind) bool {
	switch c {
	case CaptureAmount:
		return k == entity.AmountField
	case CaptureText, CaptureTaxID:
		return k == entity.TextField
	case CaptureDate, CaptureMonthStart, CaptureMonthEnd:
		return k == entity.DateField
	default:
		return false
	}
}

// Take selects which candidate on the labeled line wins.
type Take string

const (
	TakeFirst Take = "first"
	TakeLast  Take = "last"
)

var (
	reTextGap     = regexp.MustCompile(`^(?:[ ]*[:\-–][ ]*|[ ]{2,})`)
	reColumnGap   = regexp.MustCompile(`[ ]{2,}`)
	reHasLetter   = regexp.MustCompile(`\pL`)
)

// defaultGrouping applies when a table does not declare its thousands separators.
var defaultGrouping = []string{".", ",", " "}

// amountPattern builds the amount token expression for a set of thousands
// separators. The decimal part always accepts either "." or ",".
func amountPattern(grouping []string) (*regexp.Regexp, error) {
	if len(grouping) == 0 {
		grouping = defaultGrouping
	}
	var class strings.Builder
	for _, g := range grouping {
		switch g {
		case ".", ",", " ":
			class.WriteString(g)
		default:
			return nil, fmt.Errorf("unknown grouping separator %q", g)
		}
	}
	return regexp.Compile(`-?(?:\d{1,3}(?:[` + class.String() + `]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)`)
}

var taxIDShapes = map[string]*regexp.Regexp{
	"cnpj":  regexp.MustCompile(`\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2}`),
	"cpf":   regexp.MustCompile(`\d{3}\.?\d{3}\.?\d{3}-?\d{2}`),
	"siret": regexp.MustCompile(`\d{3}[ ]?\d{3}[ ]?\d{3}[ ]?\d{5}`),
	"siren": regexp.MustCompile(`\d{3}[ ]?\d{3}[ ]?\d{3}`),
	"nir":   regexp.MustCompile(`[12][ ]?\d{2}[ ]?\d{2}[ ]?(?:\d{2}|2a|2b)[ ]?\d{3}[ ]?\d{3}(?:[ ]?\d{2})?`),
	"nif":   regexp.MustCompile(`\d{3}[ ]?\d{3}[ ]?\d{3}`),
}

// value is one captured field value.
type value struct {
	amount *float64
	text   *string
}

// amountOnLine picks an amount from the text that follows a label. Rates
// ("11%") are skipped so "INSS 11% 880,00" yields 880.
func amountOnLine(rest string, take Take, amounts *regexp.Regexp) (value, bool) {
	var candidates []float64
	for _, loc := range amounts.FindAllStringIndex(rest, -1) {
		if isRate(rest, loc[1]) || touchesDigit(rest, loc) {
			continue
		}
		if v, ok := normalize.ParseCurrency(rest[loc[0]:loc[1]]); ok {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return value{}, false
	}
	v := candidates[0]
	if take == TakeLast {
		v = candidates[len(candidates)-1]
	}
	return value{amount: &v}, true
}

func isRate(s string, end int) bool {
	rest := strings.TrimLeft(s[end:], " ")
	return strings.HasPrefix(rest, "%")
}

// touchesDigit rejects tokens glued to letters/slashes such as dates or codes.
func touchesDigit(s string, loc []int) bool {
	if loc[0] > 0 {
		if c := s[loc[0]-1]; c == '/' || (c >= 'a' && c <= 'z') {
			return true
		}
	}
	if loc[1] < len(s) {
		if c := s[loc[1]]; c == '/' || (c >= '0' && c <= '9') {
			return true
		}
	}
	return false
}

// textOnLine captures a free-text value that follows a separator, stopping at
// a column gap. The value is read back from the original (unfolded) text.
func textOnLine(f normalize.Folded, start, end int) (value, bool) {
	rest := f.Text[start:end]
	gap := reTextGap.FindStringIndex(rest)
	if gap == nil {
		return value{}, false
	}
	vStart := start + gap[1]
	vEnd := end
	if col := reColumnGap.FindStringIndex(f.Text[vStart:end]); col != nil {
		vEnd = vStart + col[0]
	}
	s := strings.Trim(f.Original(vStart, vEnd), " .;,")
	if s == "" || !reHasLetter.MatchString(s) {
		return value{}, false
	}
	return value{text: &s}, true
}

func taxIDOnLine(rest, shape string) (value, bool) {
	re, ok := taxIDShapes[shape]
	if !ok {
		return value{}, false
	}
	tok := re.FindString(rest)
	if tok == "" {
		return value{}, false
	}
	id := strings.ToUpper(strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == 'a' || r == 'b' {
			return r
		}
		return -1
	}, tok))
	return value{text: &id}, true
}

func dateOnLine(rest string, take Take) (value, bool) {
	var dates []string
	for _, tok := range normalize.DateTokens(rest) {
		if d, ok := normalize.ParseDate(tok); ok {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return value{}, false
	}
	d := dates[0]
	if take == TakeLast {
		d = dates[len(dates)-1]
	}
	return value{text: &d}, true
}

func monthOnLine(rest string, kind CaptureKind) (value, bool) {
	for _, tok := range normalize.MonthTokens(rest) {
		start, end, ok := normalize.MonthBounds(tok)
		if !ok {
			continue
		}
		if kind == CaptureMonthEnd {
			return value{text: &end}, true
		}
		return value{text: &start}, true
	}
	return value{}, false
}
