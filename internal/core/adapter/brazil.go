package adapter

import (
	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

// Brazil reads holerites (CLT payslips): CNPJ/CPF identifiers, INSS/IRRF
// withholdings and the FGTS severance fund. Portuguese payslips share the
// vocabulary and are served by the same implementation.
type Brazil struct {
	country constants.Country
	table   *RuleTable
}

var _ PayslipAdapter = (*Brazil)(nil)

func NewBrazil(table *RuleTable) *Brazil {
	return &Brazil{country: constants.Brazil, table: table}
}

func NewPortugal(table *RuleTable) *Brazil {
	return &Brazil{country: constants.Portugal, table: table}
}

func (b *Brazil) Country() constants.Country { return b.country }

func (b *Brazil) Extract(ocrText string) *entity.ExtractedPayslip {
	return extract(b.country, b.table, ocrText)
}
