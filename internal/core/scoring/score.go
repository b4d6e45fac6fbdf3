// Package scoring computes extraction confidence: weighted coverage of the
// fields that apply to a payslip's country.
package scoring

import (
	"math"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

var weights = map[entity.FieldName]int{
	entity.FieldEmployerName:  8,
	entity.FieldEmployerTaxID: 4,
	entity.FieldEmployeeName:  8,
	entity.FieldEmployeeTaxID: 4,
	entity.FieldJobTitle:      2,
	entity.FieldContractType:  1,
	entity.FieldAdmissionDate: 2,
	entity.FieldPeriodStart:   3,
	entity.FieldPeriodEnd:     3,

	entity.FieldGrossPay:        15,
	entity.FieldNetPay:          15,
	entity.FieldTotalEarnings:   6,
	entity.FieldTotalDeductions: 8,

	entity.FieldSocialSecurity:    6,
	entity.FieldIncomeTax:         6,
	entity.FieldFGTSBase:          2,
	entity.FieldFGTSAmount:        2,
	entity.FieldSocialCharges:     2,
	entity.FieldSocialChargesBase: 2,

	entity.FieldVacationPay:      2,
	entity.FieldVacationBonus:    1,
	entity.FieldPerformanceBonus: 2,
	entity.FieldSalaryAdvance:    1,

	entity.FieldMealVoucher:    1,
	entity.FieldFoodAllowance:  1,
	entity.FieldHealthPlan:     1,
	entity.FieldDentalPlan:     1,
	entity.FieldPrivatePension: 1,
}

// notApplicable lists fields a country's payslips never carry.
var notApplicable = map[constants.Country]map[entity.FieldName]bool{
	constants.France: {
		entity.FieldFGTSBase:      true,
		entity.FieldFGTSAmount:    true,
		entity.FieldVacationBonus: true,
	},
	constants.Brazil: {
		entity.FieldSocialCharges:     true,
		entity.FieldSocialChargesBase: true,
	},
	constants.Portugal: {
		entity.FieldSocialCharges:     true,
		entity.FieldSocialChargesBase: true,
	},
}

// Scoreable lists the fields that count toward the score for country c.
func Scoreable(c constants.Country) []entity.FieldName {
	skip := notApplicable[c]
	var out []entity.FieldName
	for _, f := range entity.Fields() {
		if !skip[f] && weights[f] > 0 {
			out = append(out, f)
		}
	}
	return out
}

// Score returns round(100 * populated weight / scoreable weight) for p.
func Score(p *entity.ExtractedPayslip) int {
	if p == nil {
		return 0
	}
	var total, got int
	for _, f := range Scoreable(p.Country) {
		total += weights[f]
		if p.IsSet(f) {
			got += weights[f]
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(got) / float64(total)))
}
