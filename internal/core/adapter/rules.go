package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

// RuleSpec is one entry of a field's ordered rule list as written in YAML.
type RuleSpec struct {
	Label   string      `yaml:"label"`
	Capture CaptureKind `yaml:"capture"`
	Take    Take        `yaml:"take,omitempty"`
	Shape   string      `yaml:"shape,omitempty"`
}

type tableDocument struct {
	Country  string                `yaml:"country"`
	Grouping []string              `yaml:"grouping,omitempty"`
	Fields   map[string][]RuleSpec `yaml:"fields"`
}

type rule struct {
	spec RuleSpec
	re   *regexp.Regexp
}

// RuleTable is a compiled, read-only set of ordered label rules per field.
type RuleTable struct {
	country constants.Country
	amounts *regexp.Regexp
	fields  map[entity.FieldName][]rule
}

// ParseRuleTable compiles a YAML rule table. Every label must compile, must
// not declare its own capture groups, and must use a capture kind compatible
// with the field it fills. The optional grouping list names the thousands
// separators amounts may use; all of ".", "," and " " are accepted when absent.
func ParseRuleTable(data []byte) (*RuleTable, error) {
	var doc tableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode rule table: %w", err)
	}
	country, ok := constants.ParseCountry(doc.Country)
	if !ok {
		return nil, fmt.Errorf("rule table: unsupported country %q", doc.Country)
	}

	amounts, err := amountPattern(doc.Grouping)
	if err != nil {
		return nil, fmt.Errorf("rule table %s: %w", country, err)
	}

	t := &RuleTable{country: country, amounts: amounts, fields: make(map[entity.FieldName][]rule, len(doc.Fields))}
	for name, specs := range doc.Fields {
		field := entity.FieldName(name)
		if !field.Known() {
			return nil, fmt.Errorf("rule table %s: unknown field %q", country, name)
		}
		compiled := make([]rule, 0, len(specs))
		for i, spec := range specs {
			r, err := compileRule(field, spec)
			if err != nil {
				return nil, fmt.Errorf("rule table %s: %s[%d]: %w", country, name, i, err)
			}
			compiled = append(compiled, r)
		}
		t.fields[field] = compiled
	}
	return t, nil
}

// LoadRuleTable reads and compiles a rule table from disk.
func LoadRuleTable(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	return ParseRuleTable(data)
}

func compileRule(field entity.FieldName, spec RuleSpec) (rule, error) {
	if spec.Label == "" {
		return rule{}, fmt.Errorf("empty label")
	}
	if spec.Capture == "" {
		spec.Capture = defaultCapture(field.Kind())
	}
	if !spec.Capture.accepts(field.Kind()) {
		return rule{}, fmt.Errorf("capture %q cannot fill %s field", spec.Capture, field.Kind())
	}
	if spec.Capture == CaptureTaxID {
		if _, ok := taxIDShapes[spec.Shape]; !ok {
			return rule{}, fmt.Errorf("unknown tax id shape %q", spec.Shape)
		}
	}
	switch spec.Take {
	case "":
		spec.Take = TakeFirst
	case TakeFirst, TakeLast:
	default:
		return rule{}, fmt.Errorf("unknown take %q", spec.Take)
	}

	label, err := regexp.Compile(spec.Label)
	if err != nil {
		return rule{}, fmt.Errorf("label: %w", err)
	}
	if label.NumSubexp() > 0 {
		return rule{}, fmt.Errorf("label %q must use non-capturing groups", spec.Label)
	}
	re := regexp.MustCompile(`(?m)(?:` + spec.Label + `)([^\n]*)`)
	return rule{spec: spec, re: re}, nil
}

func defaultCapture(k entity.FieldKind) CaptureKind {
	switch k {
	case entity.AmountField:
		return CaptureAmount
	case entity.DateField:
		return CaptureDate
	default:
		return CaptureText
	}
}

// Country is the jurisdiction the table was written for.
func (t *RuleTable) Country() constants.Country {
	return t.country
}

// Fields lists the fields the table can fill, in catalog order.
func (t *RuleTable) Fields() []entity.FieldName {
	var out []entity.FieldName
	for _, f := range entity.Fields() {
		if _, ok := t.fields[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Apply fills p from folded text. For every field the rules are tried in
// priority order and the first rule yielding a value wins, regardless of
// where its label sits in the document.
func (t *RuleTable) Apply(f normalize.Folded, p *entity.ExtractedPayslip) {
	for _, field := range t.Fields() {
		v, ok := t.match(field, f)
		if !ok {
			continue
		}
		if v.amount != nil {
			p.SetAmount(field, v.amount)
		} else {
			p.SetText(field, v.text)
		}
	}
}

// MatchField runs a single field's rules; used to test tables field by field.
func (t *RuleTable) MatchField(field entity.FieldName, text string) (any, bool) {
	v, ok := t.match(field, normalize.Fold(normalize.Normalize(text)))
	if !ok {
		return nil, false
	}
	if v.amount != nil {
		return *v.amount, true
	}
	return *v.text, true
}

func (t *RuleTable) match(field entity.FieldName, f normalize.Folded) (value, bool) {
	for _, r := range t.fields[field] {
		for _, m := range r.re.FindAllStringSubmatchIndex(f.Text, -1) {
			if v, ok := r.capture(f, m[2], m[3], t.amounts); ok {
				return v, true
			}
		}
	}
	return value{}, false
}

func (r rule) capture(f normalize.Folded, start, end int, amounts *regexp.Regexp) (value, bool) {
	rest := f.Text[start:end]
	switch r.spec.Capture {
	case CaptureAmount:
		return amountOnLine(rest, r.spec.Take, amounts)
	case CaptureText:
		return textOnLine(f, start, end)
	case CaptureTaxID:
		return taxIDOnLine(rest, r.spec.Shape)
	case CaptureDate:
		return dateOnLine(rest, r.spec.Take)
	case CaptureMonthStart, CaptureMonthEnd:
		return monthOnLine(rest, r.spec.Capture)
	default:
		return value{}, false
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
