package entity

// LegacyPayslip is the flattened, renamed view consumed by systems that
// predate the canonical schema. It is derived from ExtractedPayslip only.
type LegacyPayslip struct {
	Nome           *string        `json:"nome"`
	Empresa        *string        `json:"empresa"`
	SalarioBruto   *float64       `json:"salario_bruto"`
	SalarioLiquido *float64       `json:"salario_liquido"`
	Descontos      *float64       `json:"descontos"`
	Pays           string         `json:"pays"`
	Raw            map[string]any `json:"raw,omitempty"`
}

// legacyAliases lists legacy keys (and a few common synonyms) for canonical
// fields in priority order: when a payload carries several aliases of one
// field, the one listed first wins.
var legacyAliases = []struct {
	key   string
	field FieldName
}{
	{"nome", FieldEmployeeName},
	{"empresa", FieldEmployerName},
	{"salario_bruto", FieldGrossPay},
	{"salario_liquido", FieldNetPay},
	{"descontos", FieldTotalDeductions},
	{"employee", FieldEmployeeName},
	{"employer", FieldEmployerName},
	{"gross_salary", FieldGrossPay},
	{"net_salary", FieldNetPay},
	{"gross", FieldGrossPay},
	{"net", FieldNetPay},
	{"deductions", FieldTotalDeductions},
	{"inss", FieldSocialSecurity},
	{"irrf", FieldIncomeTax},
}

type aliasEntry struct {
	field FieldName
	rank  int
}

var aliasIndex = func() map[string]aliasEntry {
	m := make(map[string]aliasEntry, len(legacyAliases))
	for i, a := range legacyAliases {
		m[a.key] = aliasEntry{field: a.field, rank: i + 1}
	}
	return m
}()

// NewLegacyView projects p into the legacy shape. raw carries passthrough
// input metadata and may be nil.
func NewLegacyView(p *ExtractedPayslip, raw map[string]any) *LegacyPayslip {
	if p == nil {
		return nil
	}
	c := p.Clone()
	view := &LegacyPayslip{
		Nome:           c.EmployeeName,
		Empresa:        c.EmployerName,
		SalarioBruto:   c.GrossPay,
		SalarioLiquido: c.NetPay,
		Descontos:      c.TotalDeductions,
		Pays:           string(c.Country),
	}
	if len(raw) > 0 {
		view.Raw = make(map[string]any, len(raw))
		for k, v := range raw {
			view.Raw[k] = v
		}
	}
	return view
}
