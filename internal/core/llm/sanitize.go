package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

// NormalizeAndSanitizeJSON
// - Renames legacy keys and synonyms to canonical names (salario_bruto -> gross_pay)
// - Drops null/empty values
// - Coerces money to two-decimal strings and dates to YYYY-MM-DD
// - Removes keys the country's schema does not allow
func NormalizeAndSanitizeJSON(raw []byte, country constants.Country, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}
	allowed := SchemaFields(BuildPayslipJSONSchema(country))

	dropped := make([]string, 0, 8)

	// 1) rename aliases in precedence order; an existing canonical value is never overwritten
	keys := slices.Sorted(maps.Keys(m))
	slices.SortStableFunc(keys, func(a, b string) int {
		return aliasRank(a) - aliasRank(b)
	})
	for _, k := range keys {
		field, ok := entity.LookupField(strings.TrimSpace(strings.ToLower(k)))
		if !ok || string(field) == k {
			continue
		}
		if _, exists := m[string(field)]; !exists {
			m[string(field)] = m[k]
		}
		delete(m, k)
		dropped = append(dropped, k+"->"+string(field))
	}

	// 2) remove unknown keys
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// 3) coerce values per field kind
	for k, v := range maps.Clone(m) {
		field := entity.FieldName(k)
		var (
			out any
			ok  bool
		)
		switch field.Kind() {
		case entity.AmountField:
			out, ok = coerceMoney(v)
		case entity.DateField:
			out, ok = coerceDate(v)
		default:
			out, ok = coerceText(v)
		}
		if !ok {
			delete(m, k)
			dropped = append(dropped, k+"(invalid)")
			continue
		}
		m[k] = out
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		slices.Sort(dropped)
		logger.Warn("llm.extract.normalize_sanitize", "country", country, "dropped", dropped)
	}
	return out, dropped, nil
}

func coerceMoney(v any) (string, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return decimal.NewFromFloat(t).StringFixed(2), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") {
			return "", false
		}
		f, ok := normalize.ParseCurrency(s)
		if !ok {
			return "", false
		}
		return decimal.NewFromFloat(f).StringFixed(2), true
	default:
		return "", false
	}
}

func coerceDate(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return normalize.ParseDate(s)
}

func coerceText(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// aliasRank orders payload keys so that canonical names and higher priority
// aliases are renamed first. Unknown keys sort last.
func aliasRank(k string) int {
	_, rank, ok := entity.LookupFieldRank(strings.TrimSpace(strings.ToLower(k)))
	if !ok {
		return math.MaxInt32
	}
	return rank
}
