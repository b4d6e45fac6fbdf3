// Package consistency checks the cross-field plausibility of an extracted
// payslip and proposes corrections. Proposing and applying are separate
// steps; neither mutates its input.
package consistency

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/payslip-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

const (
	startConfidence = 100
	validAbove      = 70
)

var (
	arithmeticTolerance = decimal.NewFromFloat(0.05)
	smallGap            = decimal.NewFromFloat(0.10)
	thousand            = decimal.NewFromInt(1000)
)

// validation is the state of a single Validate call. work starts as a copy of
// the record and receives every proposal so later passes see earlier ones.
type validation struct {
	jurisdiction Jurisdiction
	work         *entity.ExtractedPayslip
	confidence   int
	warnings     []string
	corrections  map[entity.FieldName]float64
}

// Validate runs the range, arithmetic, heuristic and jurisdiction passes in
// that order and returns the warnings and proposed corrections.
func Validate(p *entity.ExtractedPayslip) entity.ValidationResult {
	if p == nil {
		p = &entity.ExtractedPayslip{}
	}
	v := &validation{
		jurisdiction: For(p.Country),
		work:         p.Clone(),
		confidence:   startConfidence,
		warnings:     []string{},
		corrections:  map[entity.FieldName]float64{},
	}

	v.rangePass()
	v.arithmeticPass()
	v.heuristicPass()
	v.jurisdictionPass()

	confidence := min(max(v.confidence, 0), 100)
	return entity.ValidationResult{
		Warnings:    v.warnings,
		Corrections: v.corrections,
		IsValid:     confidence > validAbove,
		Confidence:  confidence,
	}
}

func (v *validation) flag(delta int, warning string) {
	v.confidence += delta
	v.warnings = append(v.warnings, warning)
}

func (v *validation) propose(f entity.FieldName, value float64) {
	v.corrections[f] = value
	v.work.SetAmount(f, &value)
}

func (v *validation) rangePass() {
	b := v.jurisdiction.Bounds
	for _, f := range []entity.FieldName{entity.FieldGrossPay, entity.FieldNetPay} {
		a := v.work.Amount(f)
		if a == nil || b.contains(*a) {
			continue
		}
		v.flag(-10, fmt.Sprintf("%s %.2f is outside the plausible range [%.0f, %.0f]", f, *a, b.Min, b.Max))
	}
}

// arithmeticPass checks net = gross - deductions within tolerance and tries
// one repair: a gross/net swap when net exceeds gross, otherwise a deduction
// recompute when the gap is small. The swap is only proposed when both gross
// and net lie inside the country's plausible salary bounds; outside them the
// mismatch is flagged and left as read.
func (v *validation) arithmeticPass() {
	gross, net := v.work.GrossPay, v.work.NetPay
	if gross == nil || net == nil || *gross <= 0 {
		return
	}
	g, n := normalize.Decimal(*gross), normalize.Decimal(*net)

	ded, known := deductionsOf(v.work)
	if !known {
		if !n.GreaterThan(g) {
			return
		}
		ded = decimal.Zero
	}

	gap := n.Sub(g.Sub(ded)).Abs().Div(g)
	if gap.LessThanOrEqual(arithmeticTolerance) {
		return
	}
	v.flag(-20, fmt.Sprintf("net pay %s differs from gross %s minus deductions %s by %s%%",
		n.StringFixed(2), g.StringFixed(2), ded.StringFixed(2), gap.Mul(decimal.NewFromInt(100)).StringFixed(1)))

	switch {
	case n.GreaterThan(g):
		b := v.jurisdiction.Bounds
		if !b.contains(*gross) || !b.contains(*net) {
			return
		}
		oldGross, oldNet := *gross, *net
		v.propose(entity.FieldGrossPay, oldNet)
		v.propose(entity.FieldNetPay, oldGross)
		v.flag(10, fmt.Sprintf("probable gross/net inversion: proposing gross %.2f and net %.2f", oldNet, oldGross))
	case gap.LessThan(smallGap):
		recomputed, _ := g.Sub(n).Float64()
		v.propose(entity.FieldTotalDeductions, recomputed)
		v.flag(5, fmt.Sprintf("total deductions recomputed as gross minus net: %.2f", recomputed))
	}
}

// heuristicPass repairs sign errors and a gross pay read with a misplaced
// thousands separator ("8.000" parsed as 8).
func (v *validation) heuristicPass() {
	for _, f := range entity.AmountFields() {
		a := v.work.Amount(f)
		if a == nil || *a >= 0 {
			continue
		}
		fixed := -*a
		v.propose(f, fixed)
		v.flag(-5, fmt.Sprintf("%s was negative (%.2f), proposing %.2f", f, *a, fixed))
	}

	gross := v.work.GrossPay
	if gross == nil || *gross <= 0 || *gross >= 1000 {
		return
	}
	j := v.jurisdiction
	if j.MinimumWage > 0 && *gross >= j.MinimumWage {
		return
	}
	candidate := normalize.Decimal(*gross).Mul(thousand)
	floor := max(j.MinimumWage, j.Bounds.Min)
	c, _ := candidate.Float64()
	if c < floor || c > j.Bounds.Max {
		return
	}
	old := *gross
	v.propose(entity.FieldGrossPay, c)
	v.confidence += 5
	v.warnings = append(v.warnings, fmt.Sprintf("gross pay %.2f looks like a misread separator, proposing %.2f", old, c))
}

// deductionsOf returns total deductions, or the sum of the statutory
// components when no total was extracted. ok is false when neither is known.
func deductionsOf(p *entity.ExtractedPayslip) (decimal.Decimal, bool) {
	if p.TotalDeductions != nil {
		return normalize.Decimal(*p.TotalDeductions), true
	}
	contribution := p.SocialCharges
	if contribution == nil {
		contribution = p.SocialSecurity
	}
	if contribution == nil && p.IncomeTax == nil {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	if contribution != nil {
		sum = sum.Add(normalize.Decimal(*contribution))
	}
	if p.IncomeTax != nil {
		sum = sum.Add(normalize.Decimal(*p.IncomeTax))
	}
	return sum, true
}
