package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/payslip-extractor/constants"
)

func TestClone_SharesNoPointers(t *testing.T) {
	p := &ExtractedPayslip{
		Country:      constants.Brazil,
		EmployerName: String("ACME"),
		GrossPay:     Float(8000),
	}
	c := p.Clone()
	require.Equal(t, p, c)

	*c.GrossPay = 1
	*c.EmployerName = "other"
	assert.Equal(t, 8000.0, *p.GrossPay)
	assert.Equal(t, "ACME", *p.EmployerName)

	assert.Nil(t, (*ExtractedPayslip)(nil).Clone())
}

func TestFieldAccessors(t *testing.T) {
	p := &ExtractedPayslip{}

	assert.True(t, p.SetAmount(FieldNetPay, Float(10)))
	assert.False(t, p.SetAmount(FieldEmployeeName, Float(10)))
	assert.False(t, p.SetText(FieldGrossPay, String("x")))
	assert.True(t, p.SetText(FieldPeriodEnd, String("2024-03-31")))
	assert.False(t, p.SetAmount("bogus", Float(1)))

	assert.Equal(t, 10.0, *p.NetPay)
	assert.Equal(t, "2024-03-31", *p.Text(FieldPeriodEnd))
	assert.Nil(t, p.Amount(FieldEmployeeName))
	assert.Equal(t, []FieldName{FieldPeriodEnd, FieldNetPay}, p.Populated())
	assert.False(t, (*ExtractedPayslip)(nil).IsSet(FieldNetPay))
}

func TestCatalogCoversEveryField(t *testing.T) {
	assert.Len(t, Fields(), len(catalog))
	for _, f := range Fields() {
		assert.True(t, f.Known(), f)
	}
	for _, f := range AmountFields() {
		assert.Equal(t, AmountField, f.Kind())
	}
	assert.Equal(t, DateField, FieldAdmissionDate.Kind())
	assert.Equal(t, "amount", AmountField.String())
}

func TestLookupField(t *testing.T) {
	tests := []struct {
		name string
		want FieldName
		ok   bool
	}{
		{"gross_pay", FieldGrossPay, true},
		{"salario_bruto", FieldGrossPay, true},
		{"descontos", FieldTotalDeductions, true},
		{"inss", FieldSocialSecurity, true},
		{"salary", "", false},
	}
	for _, tt := range tests {
		got, ok := LookupField(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestLookupFieldRank(t *testing.T) {
	_, canonical, ok := LookupFieldRank("gross_pay")
	require.True(t, ok)
	_, legacy, ok := LookupFieldRank("salario_bruto")
	require.True(t, ok)
	_, synonym, ok := LookupFieldRank("gross")
	require.True(t, ok)

	assert.Equal(t, 0, canonical)
	assert.Less(t, canonical, legacy)
	assert.Less(t, legacy, synonym)
}

func TestJSONKeepsNullFields(t *testing.T) {
	b, err := json.Marshal(&ExtractedPayslip{Country: constants.France, GrossPay: Float(4000)})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Contains(t, m, "net_pay")
	assert.Nil(t, m["net_pay"])
	assert.Equal(t, 4000.0, m["gross_pay"])
	assert.Equal(t, "fr", m["country"])
}

func TestNewLegacyView(t *testing.T) {
	p := &ExtractedPayslip{
		Country:         constants.Portugal,
		EmployeeName:    String("Ana"),
		EmployerName:    String("ACME"),
		GrossPay:        Float(1500),
		NetPay:          Float(1200),
		TotalDeductions: Float(300),
	}
	raw := map[string]any{"file_name": "a.txt"}
	v := NewLegacyView(p, raw)

	assert.Equal(t, "Ana", *v.Nome)
	assert.Equal(t, "ACME", *v.Empresa)
	assert.Equal(t, 1500.0, *v.SalarioBruto)
	assert.Equal(t, 1200.0, *v.SalarioLiquido)
	assert.Equal(t, 300.0, *v.Descontos)
	assert.Equal(t, "pt", v.Pays)
	assert.Equal(t, raw, v.Raw)

	raw["file_name"] = "changed"
	assert.Equal(t, "a.txt", v.Raw["file_name"])

	assert.Nil(t, NewLegacyView(nil, nil))
	assert.Nil(t, NewLegacyView(&ExtractedPayslip{}, nil).Raw)
}
