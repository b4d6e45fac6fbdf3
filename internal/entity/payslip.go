package entity

import (
	"time"

	"github.com/joseph-ayodele/payslip-extractor/constants"
)

// ExtractedPayslip is the canonical record produced by an extraction.
// Every non-metadata field is nil until a rule or the fallback sets it.
type ExtractedPayslip struct {
	// Identity
	EmployerName  *string `json:"employer_name"`
	EmployerTaxID *string `json:"employer_tax_id"`
	EmployeeName  *string `json:"employee_name"`
	EmployeeTaxID *string `json:"employee_tax_id"`
	JobTitle      *string `json:"job_title"`
	ContractType  *string `json:"contract_type"`
	AdmissionDate *string `json:"admission_date"` // YYYY-MM-DD
	PeriodStart   *string `json:"period_start"`   // YYYY-MM-DD
	PeriodEnd     *string `json:"period_end"`     // YYYY-MM-DD

	// Core amounts
	GrossPay        *float64 `json:"gross_pay"`
	NetPay          *float64 `json:"net_pay"`
	TotalEarnings   *float64 `json:"total_earnings"`
	TotalDeductions *float64 `json:"total_deductions"`

	// Statutory contributions
	SocialSecurity    *float64 `json:"social_security"`
	IncomeTax         *float64 `json:"income_tax"`
	FGTSBase          *float64 `json:"fgts_base"`
	FGTSAmount        *float64 `json:"fgts_amount"`
	SocialCharges     *float64 `json:"social_charges"`
	SocialChargesBase *float64 `json:"social_charges_base"`

	// Variable pay
	VacationPay      *float64 `json:"vacation_pay"`
	VacationBonus    *float64 `json:"vacation_bonus"`
	PerformanceBonus *float64 `json:"performance_bonus"`
	SalaryAdvance    *float64 `json:"salary_advance"`

	// Benefits
	MealVoucher    *float64 `json:"meal_voucher"`
	FoodAllowance  *float64 `json:"food_allowance"`
	HealthPlan     *float64 `json:"health_plan"`
	DentalPlan     *float64 `json:"dental_plan"`
	PrivatePension *float64 `json:"private_pension"`

	// Metadata
	Country              constants.Country          `json:"country"`
	ExtractionConfidence int                        `json:"extraction_confidence"`
	ExtractionMethod     constants.ExtractionMethod `json:"extraction_method"`
	ExtractedAt          time.Time                  `json:"extracted_at"`
}

// Clone returns a deep copy; no pointer is shared with p.
func (p *ExtractedPayslip) Clone() *ExtractedPayslip {
	if p == nil {
		return nil
	}
	c := *p
	for _, name := range fieldOrder {
		spec := catalog[name]
		if spec.kind == AmountField {
			slot := spec.amount(&c)
			if *slot != nil {
				v := **slot
				*slot = &v
			}
			continue
		}
		slot := spec.text(&c)
		if *slot != nil {
			v := **slot
			*slot = &v
		}
	}
	return &c
}

// Populated lists the fields that hold a value, in catalog order.
func (p *ExtractedPayslip) Populated() []FieldName {
	var out []FieldName
	for _, name := range fieldOrder {
		if p.IsSet(name) {
			out = append(out, name)
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// Float returns a pointer to v; handy for building records.
func Float(v float64) *float64 { return ptr(v) }

// String returns a pointer to v; handy for building records.
func String(v string) *string { return ptr(v) }
