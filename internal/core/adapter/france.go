package adapter

import (
	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

// France reads bulletins de paie: SIRET/NIR identifiers, an aggregate of
// employee social charges and the prélèvement à la source.
type France struct {
	table *RuleTable
}

var _ PayslipAdapter = (*France)(nil)

func NewFrance(table *RuleTable) *France {
	return &France{table: table}
}

func (f *France) Country() constants.Country { return constants.France }

func (f *France) Extract(ocrText string) *entity.ExtractedPayslip {
	return extract(constants.France, f.table, ocrText)
}
