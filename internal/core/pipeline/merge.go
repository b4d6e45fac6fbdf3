package pipeline

import (
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/joseph-ayodele/payslip-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

// Merge returns a copy of base with nil fields filled from fallback. Values
// already set on base are never replaced. Keys may be canonical names or
// legacy aliases; unknown keys and undecodable values are ignored. When
// several keys name one field the canonical name wins, then the alias
// declared first.
// The adopted fields are returned in catalog order.
func Merge(base *entity.ExtractedPayslip, fallback map[string]any) (*entity.ExtractedPayslip, []entity.FieldName) {
	out := base.Clone()
	if out == nil {
		out = &entity.ExtractedPayslip{}
	}
	if len(fallback) == 0 {
		return out, nil
	}

	type candidate struct {
		raw  any
		rank int
	}
	candidates := make(map[entity.FieldName]candidate, len(fallback))
	for _, key := range slices.Sorted(maps.Keys(fallback)) {
		raw := fallback[key]
		field, rank, ok := entity.LookupFieldRank(strings.TrimSpace(key))
		if !ok || raw == nil {
			continue
		}
		if c, seen := candidates[field]; seen && c.rank <= rank {
			continue
		}
		candidates[field] = candidate{raw: raw, rank: rank}
	}

	var adopted []entity.FieldName
	for _, field := range entity.Fields() {
		c, ok := candidates[field]
		if !ok || out.IsSet(field) {
			continue
		}
		if adoptValue(out, field, c.raw) {
			adopted = append(adopted, field)
		}
	}
	return out, adopted
}

func adoptValue(p *entity.ExtractedPayslip, field entity.FieldName, raw any) bool {
	switch field.Kind() {
	case entity.AmountField:
		v, ok := decodeAmount(raw)
		if !ok {
			return false
		}
		return p.SetAmount(field, &v)
	case entity.DateField:
		s, ok := raw.(string)
		if !ok {
			return false
		}
		d, ok := normalize.ParseDate(s)
		if !ok {
			return false
		}
		return p.SetText(field, &d)
	default:
		s, ok := raw.(string)
		if !ok {
			return false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return false
		}
		return p.SetText(field, &s)
	}
}

func decodeAmount(raw any) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, ok := normalize.ParseCurrency(n)
		if !ok {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
