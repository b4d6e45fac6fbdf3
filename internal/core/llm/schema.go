package llm

import (
	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/scoring"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

const decimalPattern = `^-?\d+(\.\d{1,2})?$`

// BuildPayslipJSONSchema returns the JSON Schema the fallback payload must
// satisfy for a country. Money is a decimal string, dates are YYYY-MM-DD and
// fields the country never carries are left out.
func BuildPayslipJSONSchema(country constants.Country) map[string]any {
	props := map[string]any{}
	for _, f := range scoring.Scoreable(country) {
		switch f.Kind() {
		case entity.AmountField:
			props[string(f)] = map[string]any{"type": "string", "pattern": decimalPattern}
		case entity.DateField:
			props[string(f)] = map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
		default:
			props[string(f)] = map[string]any{"type": "string", "minLength": 1}
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// SchemaFields lists the property names of a schema built by BuildPayslipJSONSchema.
func SchemaFields(schema map[string]any) map[string]struct{} {
	props, _ := schema["properties"].(map[string]any)
	out := make(map[string]struct{}, len(props))
	for k := range props {
		out[k] = struct{}{}
	}
	return out
}
