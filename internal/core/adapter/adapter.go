// Package adapter holds the country-specific, rule-table driven extractors.
package adapter

import (
	"embed"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

// PayslipAdapter extracts a payslip record from OCR text using deterministic rules.
// Metadata other than the country is left for the caller to fill.
type PayslipAdapter interface {
	Country() constants.Country
	Extract(ocrText string) *entity.ExtractedPayslip
}

//go:embed rules/*.yaml
var embeddedRules embed.FS

var defaultTables = sync.OnceValues(func() (map[constants.Country]*RuleTable, error) {
	out := make(map[constants.Country]*RuleTable, 2)
	for _, c := range []constants.Country{constants.Brazil, constants.France} {
		data, err := embeddedRules.ReadFile("rules/" + string(c) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("read embedded rules %s: %w", c, err)
		}
		t, err := ParseRuleTable(data)
		if err != nil {
			return nil, err
		}
		out[c] = t
	}
	return out, nil
})

// DefaultTable returns the embedded rule table for a country with its own vocabulary.
func DefaultTable(c constants.Country) (*RuleTable, error) {
	tables, err := defaultTables()
	if err != nil {
		return nil, err
	}
	t, ok := tables[c]
	if !ok {
		return nil, fmt.Errorf("no embedded rule table for %s", c)
	}
	return t, nil
}

// extract is the generic table walk shared by every adapter.
func extract(country constants.Country, table *RuleTable, ocrText string) *entity.ExtractedPayslip {
	p := &entity.ExtractedPayslip{Country: country}
	if table == nil || ocrText == "" {
		return p
	}
	table.Apply(normalize.Fold(normalize.Normalize(ocrText)), p)
	return p
}

// Registry maps each supported country to its adapter.
type Registry map[constants.Country]PayslipAdapter

// Lookup returns the adapter for c.
func (r Registry) Lookup(c constants.Country) (PayslipAdapter, bool) {
	a, ok := r[c]
	return a, ok
}

// NewRegistry wires the adapters from a Brazilian and a French table.
// Portugal reuses the Brazilian vocabulary.
func NewRegistry(br, fr *RuleTable) Registry {
	return Registry{
		constants.Brazil:   NewBrazil(br),
		constants.Portugal: NewPortugal(br),
		constants.France:   NewFrance(fr),
	}
}

// DefaultRegistry builds the registry from the embedded tables.
func DefaultRegistry() (Registry, error) {
	br, err := DefaultTable(constants.Brazil)
	if err != nil {
		return nil, err
	}
	fr, err := DefaultTable(constants.France)
	if err != nil {
		return nil, err
	}
	return NewRegistry(br, fr), nil
}

// LoadRegistry builds the registry from br.yaml and fr.yaml in dir. Missing
// files fall back to the embedded tables.
func LoadRegistry(dir string) (Registry, error) {
	load := func(c constants.Country) (*RuleTable, error) {
		path := filepath.Join(dir, string(c)+".yaml")
		t, err := LoadRuleTable(path)
		if err == nil {
			return t, nil
		}
		if isNotExist(err) {
			return DefaultTable(c)
		}
		return nil, err
	}
	br, err := load(constants.Brazil)
	if err != nil {
		return nil, err
	}
	fr, err := load(constants.France)
	if err != nil {
		return nil, err
	}
	return NewRegistry(br, fr), nil
}
