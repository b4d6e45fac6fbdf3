package consistency

import (
	"math"

	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

// ApplyCorrections returns a copy of p with corrections written over the
// matching monetary fields. Non-monetary or unknown names are skipped.
func ApplyCorrections(p *entity.ExtractedPayslip, corrections map[entity.FieldName]float64) *entity.ExtractedPayslip {
	out := p.Clone()
	if out == nil {
		return nil
	}
	for f, value := range corrections {
		if f.Kind() != entity.AmountField || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		out.SetAmount(f, &value)
	}
	return out
}
