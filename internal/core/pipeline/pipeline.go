// Package pipeline decides when the generative fallback runs and how its
// output is folded into the deterministic record.
package pipeline

import (
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

// CriticalFields are checked by the completeness gate.
var CriticalFields = []entity.FieldName{
	entity.FieldGrossPay,
	entity.FieldNetPay,
	entity.FieldEmployeeName,
	entity.FieldEmployerName,
}

// maxMissingCritical is the number of critical fields that may be absent
// before a record counts as incomplete.
const maxMissingCritical = 2

// MissingCritical lists the critical fields p lacks.
func MissingCritical(p *entity.ExtractedPayslip) []entity.FieldName {
	var missing []entity.FieldName
	for _, f := range CriticalFields {
		if !p.IsSet(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// NeedsFallback reports whether the adapter output is incomplete.
func NeedsFallback(p *entity.ExtractedPayslip) bool {
	return len(MissingCritical(p)) > maxMissingCritical
}
