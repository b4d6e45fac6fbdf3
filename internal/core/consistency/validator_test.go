package consistency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

func payslip(country constants.Country, gross, net, deductions *float64) *entity.ExtractedPayslip {
	return &entity.ExtractedPayslip{
		Country:         country,
		GrossPay:        gross,
		NetPay:          net,
		TotalDeductions: deductions,
	}
}

func hasWarning(res entity.ValidationResult, substr string) bool {
	for _, w := range res.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestValidate_ConsistentRecord(t *testing.T) {
	p := payslip(constants.Brazil, entity.Float(8000), entity.Float(5920), entity.Float(2080))
	res := Validate(p)

	assert.Equal(t, 100, res.Confidence)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Corrections)
}

func TestValidate_Inversion(t *testing.T) {
	p := payslip(constants.Brazil, entity.Float(4000), entity.Float(5000), entity.Float(1000))
	res := Validate(p)

	assert.True(t, res.IsValid)
	assert.Equal(t, 90, res.Confidence)
	assert.True(t, hasWarning(res, "inversion"))
	assert.Equal(t, map[entity.FieldName]float64{
		entity.FieldGrossPay: 5000,
		entity.FieldNetPay:   4000,
	}, res.Corrections)

	// proposing never mutates
	assert.Equal(t, 4000.0, *p.GrossPay)
	assert.Equal(t, 5000.0, *p.NetPay)

	fixed := ApplyCorrections(p, res.Corrections)
	assert.Equal(t, 5000.0, *fixed.GrossPay)
	assert.Equal(t, 4000.0, *fixed.NetPay)

	again := Validate(fixed)
	assert.False(t, hasWarning(again, "inversion"))
	assert.Empty(t, again.Corrections)
}

func TestValidate_SwapNeedsBothInRange(t *testing.T) {
	// "8.000" misread as 8: repaired by the x1000 heuristic, not a swap
	p := payslip(constants.Brazil, entity.Float(8), entity.Float(5920), nil)
	res := Validate(p)

	assert.False(t, hasWarning(res, "inversion"))
	assert.Equal(t, 8000.0, res.Corrections[entity.FieldGrossPay])
	_, touchedNet := res.Corrections[entity.FieldNetPay]
	assert.False(t, touchedNet)
}

func TestValidate_RangeChecks(t *testing.T) {
	tests := []struct {
		name    string
		country constants.Country
		gross   float64
		net     float64
		want    int
	}{
		{"both in range", constants.France, 3000, 2340, 100},
		{"gross above max", constants.France, 70000, 54600, 90},
		{"both below min", constants.Portugal, 70, 40, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payslip(tt.country, entity.Float(tt.gross), entity.Float(tt.net), nil)
			assert.Equal(t, tt.want, Validate(p).Confidence)
		})
	}
}

func TestValidate_RecomputesDeductionsOnSmallGap(t *testing.T) {
	// 8000 - 2080 = 5920 but net reads 5500: 5.25% off
	p := payslip(constants.Brazil, entity.Float(8000), entity.Float(5500), entity.Float(2080))
	res := Validate(p)

	require.Contains(t, res.Corrections, entity.FieldTotalDeductions)
	assert.Equal(t, 2500.0, res.Corrections[entity.FieldTotalDeductions])
	assert.Equal(t, 85, res.Confidence)
	assert.True(t, res.IsValid)
}

func TestValidate_LargeGapWithoutRepair(t *testing.T) {
	p := payslip(constants.Brazil, entity.Float(8000), entity.Float(3000), entity.Float(1000))
	res := Validate(p)

	assert.Empty(t, res.Corrections)
	assert.Equal(t, 80, res.Confidence)
	assert.True(t, res.IsValid)
}

func TestValidate_UsesDeductionComponents(t *testing.T) {
	p := payslip(constants.Brazil, entity.Float(8000), entity.Float(5920), nil)
	p.SocialSecurity = entity.Float(880)
	p.IncomeTax = entity.Float(1200)

	res := Validate(p)
	assert.Equal(t, 100, res.Confidence)
	assert.Empty(t, res.Warnings)
}

func TestValidate_UnknownDeductionsSkipArithmetic(t *testing.T) {
	p := payslip(constants.Brazil, entity.Float(8000), entity.Float(5920), nil)
	res := Validate(p)
	assert.Equal(t, 100, res.Confidence)
}

func TestValidate_NegativeAmounts(t *testing.T) {
	p := payslip(constants.Brazil, entity.Float(8000), entity.Float(5920), entity.Float(-2080))
	res := Validate(p)

	assert.Equal(t, 2080.0, res.Corrections[entity.FieldTotalDeductions])
	assert.True(t, hasWarning(res, "negative"))
	assert.Less(t, res.Confidence, 100)
}

func TestValidate_ThousandsHeuristic(t *testing.T) {
	tests := []struct {
		name    string
		country constants.Country
		gross   float64
		want    float64
		applied bool
	}{
		{"brazil misread", constants.Brazil, 8, 8000, true},
		{"brazil below minimum wage after repair", constants.Brazil, 1.2, 0, false},
		{"portugal plausible low salary", constants.Portugal, 900, 0, false},
		{"portugal misread", constants.Portugal, 1.5, 1500, true},
		{"france above bounds after repair", constants.France, 75, 0, false},
		{"already plausible", constants.Brazil, 3000, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payslip(tt.country, entity.Float(tt.gross), nil, nil)
			res := Validate(p)
			got, ok := res.Corrections[entity.FieldGrossPay]
			assert.Equal(t, tt.applied, ok)
			if tt.applied {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidate_BrazilContributionFloor(t *testing.T) {
	low := payslip(constants.Brazil, entity.Float(8000), entity.Float(7900), entity.Float(100))
	res := Validate(low)
	assert.True(t, hasWarning(res, "minimum contribution"))

	intern := low.Clone()
	intern.ContractType = entity.String("Estágio")
	res = Validate(intern)
	assert.False(t, hasWarning(res, "minimum contribution"))
}

func TestValidate_FranceChargesBand(t *testing.T) {
	p := payslip(constants.France, entity.Float(4000), entity.Float(2870), nil)
	p.SocialCharges = entity.Float(880)
	p.IncomeTax = entity.Float(250)
	assert.Equal(t, 100, Validate(p).Confidence)

	p.SocialCharges = entity.Float(100)
	p.NetPay = entity.Float(3650)
	res := Validate(p)
	assert.True(t, hasWarning(res, "social charges"))

	p.ContractType = entity.String("Contrat d'apprentissage")
	assert.False(t, hasWarning(Validate(p), "social charges"))
}

func TestValidate_ConfidenceClamped(t *testing.T) {
	p := payslip(constants.France, entity.Float(-90000), entity.Float(-95000), entity.Float(-1))
	p.IncomeTax = entity.Float(-1)
	p.HealthPlan = entity.Float(-1)
	res := Validate(p)
	assert.GreaterOrEqual(t, res.Confidence, 0)
	assert.LessOrEqual(t, res.Confidence, 100)
	assert.False(t, res.IsValid)
}

func TestValidate_Nil(t *testing.T) {
	res := Validate(nil)
	assert.Equal(t, 100, res.Confidence)
	assert.True(t, res.IsValid)
}

func TestApplyCorrections(t *testing.T) {
	p := payslip(constants.Brazil, entity.Float(1), entity.Float(2), nil)
	out := ApplyCorrections(p, map[entity.FieldName]float64{
		entity.FieldGrossPay:     10,
		entity.FieldEmployerName: 3,
		"bogus":                  4,
	})
	assert.Equal(t, 10.0, *out.GrossPay)
	assert.Equal(t, 2.0, *out.NetPay)
	assert.Nil(t, out.EmployerName)
	assert.Equal(t, 1.0, *p.GrossPay)
	assert.Nil(t, ApplyCorrections(nil, nil))
}

func TestStandardEmployment(t *testing.T) {
	tests := []struct {
		contract *string
		want     bool
	}{
		{nil, true},
		{entity.String("CLT"), true},
		{entity.String("CDI"), true},
		{entity.String("Estagiário"), false},
		{entity.String("PJ"), false},
		{entity.String("Stage"), false},
		{entity.String("Apprenti"), false},
	}
	for _, tt := range tests {
		p := &entity.ExtractedPayslip{ContractType: tt.contract}
		assert.Equal(t, tt.want, StandardEmployment(p))
	}
}
