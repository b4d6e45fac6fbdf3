package entity

// FieldName is the canonical snake_case name of a payslip field.
type FieldName string

const (
	FieldEmployerName  FieldName = "employer_name"
	FieldEmployerTaxID FieldName = "employer_tax_id"
	FieldEmployeeName  FieldName = "employee_name"
	FieldEmployeeTaxID FieldName = "employee_tax_id"
	FieldJobTitle      FieldName = "job_title"
	FieldContractType  FieldName = "contract_type"
	FieldAdmissionDate FieldName = "admission_date"
	FieldPeriodStart   FieldName = "period_start"
	FieldPeriodEnd     FieldName = "period_end"

	FieldGrossPay        FieldName = "gross_pay"
	FieldNetPay          FieldName = "net_pay"
	FieldTotalEarnings   FieldName = "total_earnings"
	FieldTotalDeductions FieldName = "total_deductions"

	FieldSocialSecurity    FieldName = "social_security"
	FieldIncomeTax         FieldName = "income_tax"
	FieldFGTSBase          FieldName = "fgts_base"
	FieldFGTSAmount        FieldName = "fgts_amount"
	FieldSocialCharges     FieldName = "social_charges"
	FieldSocialChargesBase FieldName = "social_charges_base"

	FieldVacationPay      FieldName = "vacation_pay"
	FieldVacationBonus    FieldName = "vacation_bonus"
	FieldPerformanceBonus FieldName = "performance_bonus"
	FieldSalaryAdvance    FieldName = "salary_advance"

	FieldMealVoucher    FieldName = "meal_voucher"
	FieldFoodAllowance  FieldName = "food_allowance"
	FieldHealthPlan     FieldName = "health_plan"
	FieldDentalPlan     FieldName = "dental_plan"
	FieldPrivatePension FieldName = "private_pension"
)

// FieldKind tells how a field's value is captured and stored.
type FieldKind int

const (
	TextField FieldKind = iota
	AmountField
	DateField
)

func (k FieldKind) String() string {
	switch k {
	case AmountField:
		return "amount"
	case DateField:
		return "date"
	default:
		return "text"
	}
}

type fieldSpec struct {
	kind   FieldKind
	text   func(*ExtractedPayslip) **string
	amount func(*ExtractedPayslip) **float64
}

func textSpec(kind FieldKind, f func(*ExtractedPayslip) **string) fieldSpec {
	return fieldSpec{kind: kind, text: f}
}

func amountSpec(f func(*ExtractedPayslip) **float64) fieldSpec {
	return fieldSpec{kind: AmountField, amount: f}
}

var catalog = map[FieldName]fieldSpec{
	FieldEmployerName:  textSpec(TextField, func(p *ExtractedPayslip) **string { return &p.EmployerName }),
	FieldEmployerTaxID: textSpec(TextField, func(p *ExtractedPayslip) **string { return &p.EmployerTaxID }),
	FieldEmployeeName:  textSpec(TextField, func(p *ExtractedPayslip) **string { return &p.EmployeeName }),
	FieldEmployeeTaxID: textSpec(TextField, func(p *ExtractedPayslip) **string { return &p.EmployeeTaxID }),
	FieldJobTitle:      textSpec(TextField, func(p *ExtractedPayslip) **string { return &p.JobTitle }),
	FieldContractType:  textSpec(TextField, func(p *ExtractedPayslip) **string { return &p.ContractType }),
	FieldAdmissionDate: textSpec(DateField, func(p *ExtractedPayslip) **string { return &p.AdmissionDate }),
	FieldPeriodStart:   textSpec(DateField, func(p *ExtractedPayslip) **string { return &p.PeriodStart }),
	FieldPeriodEnd:     textSpec(DateField, func(p *ExtractedPayslip) **string { return &p.PeriodEnd }),

	FieldGrossPay:        amountSpec(func(p *ExtractedPayslip) **float64 { return &p.GrossPay }),
	FieldNetPay:          amountSpec(func(p *ExtractedPayslip) **float64 { return &p.NetPay }),
	FieldTotalEarnings:   amountSpec(func(p *ExtractedPayslip) **float64 { return &p.TotalEarnings }),
	FieldTotalDeductions: amountSpec(func(p *ExtractedPayslip) **float64 { return &p.TotalDeductions }),

	FieldSocialSecurity:    amountSpec(func(p *ExtractedPayslip) **float64 { return &p.SocialSecurity }),
	FieldIncomeTax:         amountSpec(func(p *ExtractedPayslip) **float64 { return &p.IncomeTax }),
	FieldFGTSBase:          amountSpec(func(p *ExtractedPayslip) **float64 { return &p.FGTSBase }),
	FieldFGTSAmount:        amountSpec(func(p *ExtractedPayslip) **float64 { return &p.FGTSAmount }),
	FieldSocialCharges:     amountSpec(func(p *ExtractedPayslip) **float64 { return &p.SocialCharges }),
	FieldSocialChargesBase: amountSpec(func(p *ExtractedPayslip) **float64 { return &p.SocialChargesBase }),

	FieldVacationPay:      amountSpec(func(p *ExtractedPayslip) **float64 { return &p.VacationPay }),
	FieldVacationBonus:    amountSpec(func(p *ExtractedPayslip) **float64 { return &p.VacationBonus }),
	FieldPerformanceBonus: amountSpec(func(p *ExtractedPayslip) **float64 { return &p.PerformanceBonus }),
	FieldSalaryAdvance:    amountSpec(func(p *ExtractedPayslip) **float64 { return &p.SalaryAdvance }),

	FieldMealVoucher:    amountSpec(func(p *ExtractedPayslip) **float64 { return &p.MealVoucher }),
	FieldFoodAllowance:  amountSpec(func(p *ExtractedPayslip) **float64 { return &p.FoodAllowance }),
	FieldHealthPlan:     amountSpec(func(p *ExtractedPayslip) **float64 { return &p.HealthPlan }),
	FieldDentalPlan:     amountSpec(func(p *ExtractedPayslip) **float64 { return &p.DentalPlan }),
	FieldPrivatePension: amountSpec(func(p *ExtractedPayslip) **float64 { return &p.PrivatePension }),
}

var fieldOrder = []FieldName{
	FieldEmployerName, FieldEmployerTaxID, FieldEmployeeName, FieldEmployeeTaxID,
	FieldJobTitle, FieldContractType, FieldAdmissionDate, FieldPeriodStart, FieldPeriodEnd,
	FieldGrossPay, FieldNetPay, FieldTotalEarnings, FieldTotalDeductions,
	FieldSocialSecurity, FieldIncomeTax, FieldFGTSBase, FieldFGTSAmount,
	FieldSocialCharges, FieldSocialChargesBase,
	FieldVacationPay, FieldVacationBonus, FieldPerformanceBonus, FieldSalaryAdvance,
	FieldMealVoucher, FieldFoodAllowance, FieldHealthPlan, FieldDentalPlan, FieldPrivatePension,
}

// Fields returns every non-metadata field in a stable order.
func Fields() []FieldName {
	out := make([]FieldName, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// AmountFields returns the monetary fields in a stable order.
func AmountFields() []FieldName {
	var out []FieldName
	for _, n := range fieldOrder {
		if catalog[n].kind == AmountField {
			out = append(out, n)
		}
	}
	return out
}

// LookupField resolves a canonical name or a legacy alias.
func LookupField(name string) (FieldName, bool) {
	f, _, ok := LookupFieldRank(name)
	return f, ok
}

// LookupFieldRank is LookupField plus the key's precedence among all keys
// naming the same field. Canonical names rank 0; aliases rank by their
// declared order. Lower wins.
func LookupFieldRank(name string) (FieldName, int, bool) {
	if _, ok := catalog[FieldName(name)]; ok {
		return FieldName(name), 0, true
	}
	if a, ok := aliasIndex[name]; ok {
		return a.field, a.rank, true
	}
	return "", 0, false
}

// Kind returns the field kind; unknown names report TextField.
func (n FieldName) Kind() FieldKind {
	return catalog[n].kind
}

// Known reports whether n is part of the catalog.
func (n FieldName) Known() bool {
	_, ok := catalog[n]
	return ok
}

// Amount returns the value of a monetary field, nil when unset or not monetary.
func (p *ExtractedPayslip) Amount(n FieldName) *float64 {
	spec, ok := catalog[n]
	if !ok || spec.kind != AmountField {
		return nil
	}
	return *spec.amount(p)
}

// SetAmount stores v in a monetary field. It reports false for non-monetary names.
func (p *ExtractedPayslip) SetAmount(n FieldName, v *float64) bool {
	spec, ok := catalog[n]
	if !ok || spec.kind != AmountField {
		return false
	}
	*spec.amount(p) = v
	return true
}

// Text returns the value of a text or date field.
func (p *ExtractedPayslip) Text(n FieldName) *string {
	spec, ok := catalog[n]
	if !ok || spec.kind == AmountField {
		return nil
	}
	return *spec.text(p)
}

// SetText stores v in a text or date field. It reports false for monetary names.
func (p *ExtractedPayslip) SetText(n FieldName, v *string) bool {
	spec, ok := catalog[n]
	if !ok || spec.kind == AmountField {
		return false
	}
	*spec.text(p) = v
	return true
}

// IsSet reports whether field n holds a value.
func (p *ExtractedPayslip) IsSet(n FieldName) bool {
	if p == nil {
		return false
	}
	if n.Kind() == AmountField {
		return p.Amount(n) != nil
	}
	return p.Text(n) != nil
}
