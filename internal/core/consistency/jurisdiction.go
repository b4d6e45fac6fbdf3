package consistency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

// Bounds is the plausible monthly range for gross and net pay.
type Bounds struct {
	Min float64
	Max float64
}

func (b Bounds) contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Jurisdiction holds the country figures the checks depend on.
type Jurisdiction struct {
	Country constants.Country
	Bounds  Bounds
	// MinimumWage gates the x1000 repair; zero disables the gate.
	MinimumWage float64
	// ContributionRate is the statutory minimum employee contribution (br, pt).
	ContributionRate float64
	// ChargesBand is the expected employee social-charge share of gross (fr).
	ChargesBand *Bounds
}

var jurisdictions = map[constants.Country]Jurisdiction{
	constants.Brazil: {
		Country:          constants.Brazil,
		Bounds:           Bounds{Min: 100, Max: 100000},
		MinimumWage:      1518,
		ContributionRate: 0.075,
	},
	constants.Portugal: {
		Country:          constants.Portugal,
		Bounds:           Bounds{Min: 100, Max: 60000},
		MinimumWage:      870,
		ContributionRate: 0.11,
	},
	constants.France: {
		Country:     constants.France,
		Bounds:      Bounds{Min: 100, Max: 60000},
		MinimumWage: 1801.80,
		ChargesBand: &Bounds{Min: 0.10, Max: 0.45},
	},
}

var fallbackJurisdiction = Jurisdiction{Bounds: Bounds{Min: 100, Max: 100000}}

// For returns the figures for c; unknown countries get generic bounds only.
func For(c constants.Country) Jurisdiction {
	if j, ok := jurisdictions[c]; ok {
		return j
	}
	return fallbackJurisdiction
}

// nonStandardContracts are internships, apprenticeships and self-employment,
// which carry reduced or no statutory contributions.
var nonStandardContracts = []string{"estagio", "estagiario", "autonomo", "pj", "stage", "stagiaire", "apprenti", "apprentissage"}

// StandardEmployment reports whether p looks like a regular employment
// contract. An unknown contract type counts as standard.
func StandardEmployment(p *entity.ExtractedPayslip) bool {
	if p.ContractType == nil {
		return true
	}
	folded := normalize.FoldString(*p.ContractType)
	for _, word := range strings.FieldsFunc(folded, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		for _, ns := range nonStandardContracts {
			if word == ns {
				return false
			}
		}
	}
	return true
}

// jurisdictionPass flags contribution levels that are implausible for the
// country's standard employment.
func (v *validation) jurisdictionPass() {
	j := v.jurisdiction
	gross := v.work.GrossPay
	if gross == nil || *gross <= 0 || !StandardEmployment(v.work) {
		return
	}
	g := normalize.Decimal(*gross)

	if j.ContributionRate > 0 {
		ded, ok := deductionsOf(v.work)
		if !ok {
			return
		}
		floor := decimal.NewFromFloat(j.ContributionRate).Div(decimal.NewFromInt(2))
		if ded.Div(g).LessThan(floor) {
			v.flag(-10, fmt.Sprintf("deductions %s are below half the minimum contribution rate (%.1f%%) for standard employment",
				ded.StringFixed(2), j.ContributionRate*100))
		}
		return
	}

	if j.ChargesBand != nil {
		charges, ok := chargesOf(v.work)
		if !ok {
			return
		}
		share, _ := charges.Div(g).Float64()
		if share < j.ChargesBand.Min || share > j.ChargesBand.Max {
			v.flag(-10, fmt.Sprintf("social charges are %.1f%% of gross pay, expected between %.0f%% and %.0f%%",
				share*100, j.ChargesBand.Min*100, j.ChargesBand.Max*100))
		}
	}
}

func chargesOf(p *entity.ExtractedPayslip) (decimal.Decimal, bool) {
	if p.SocialCharges != nil {
		return normalize.Decimal(*p.SocialCharges), true
	}
	return deductionsOf(p)
}
