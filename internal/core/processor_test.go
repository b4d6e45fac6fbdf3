package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/common"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/adapter"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

const brHolerite = `Empresa: Empresa Exemplo Ltda
CNPJ: 12.345.678/0001-90
Funcionário: João da Silva
CPF: 123.456.789-00
Cargo: Analista de Sistemas
Admissão: 01/02/2020
Mês de referência: 03/2024
Salário Bruto: R$ 8.000,00
INSS: R$ 880,00
IRRF: R$ 1.200,00
Total de Descontos: R$ 2.080,00
Salário Líquido: R$ 5.920,00
`

var fixedClock = func() time.Time { return time.Date(2024, 4, 5, 10, 0, 0, 0, time.UTC) }

func newProcessor(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	reg, err := adapter.DefaultRegistry()
	require.NoError(t, err)
	return NewProcessor(nil, reg, append([]Option{WithClock(fixedClock)}, opts...)...)
}

func TestExtract_BrazilFixture(t *testing.T) {
	res := newProcessor(t).Extract(context.Background(), brHolerite, "br", nil)
	require.True(t, res.Success, res.Error)

	d := res.Data
	assert.Equal(t, constants.Brazil, d.Country)
	assert.Equal(t, 8000.0, *d.GrossPay)
	assert.Equal(t, 5920.0, *d.NetPay)
	assert.Equal(t, 880.0, *d.SocialSecurity)
	assert.Equal(t, 1200.0, *d.IncomeTax)
	assert.Greater(t, d.ExtractionConfidence, 0)
	assert.Equal(t, constants.MethodRegex, d.ExtractionMethod)
	assert.Equal(t, fixedClock(), d.ExtractedAt)

	require.NotNil(t, res.Validation)
	assert.True(t, res.Validation.IsValid)
	assert.Equal(t, 100, res.Validation.Confidence)
	assert.Empty(t, res.Warnings)
}

func TestExtract_InversionIsCorrected(t *testing.T) {
	text := "Empresa: ACME Ltda\nFuncionário: Ana Souza\nSalário Bruto: R$ 4.000,00\nTotal de Descontos: R$ 1.000,00\nSalário Líquido: R$ 5.000,00"
	res := newProcessor(t).Extract(context.Background(), text, "br", nil)
	require.True(t, res.Success)

	assert.Equal(t, 5000.0, *res.Data.GrossPay)
	assert.Equal(t, 4000.0, *res.Data.NetPay)
	assert.True(t, res.Validation.IsValid)
	assert.Equal(t, map[entity.FieldName]float64{
		entity.FieldGrossPay: 5000,
		entity.FieldNetPay:   4000,
	}, res.Validation.Corrections)

	var mentions bool
	for _, w := range res.Validation.Warnings {
		mentions = mentions || strings.Contains(w, "inversion")
	}
	assert.True(t, mentions)
	assert.Equal(t, 5000.0, *res.Legacy.SalarioBruto)
}

func TestExtract_IncompleteDocument(t *testing.T) {
	res := newProcessor(t).Extract(context.Background(), "Empresa: Empresa Exemplo Ltda\nCompetência: 03/2024", "br", nil)
	require.True(t, res.Success)

	for _, f := range entity.AmountFields() {
		assert.Nil(t, res.Data.Amount(f), f)
	}
	assert.Less(t, res.Data.ExtractionConfidence, 50)
	assert.Equal(t, "Empresa Exemplo Ltda", *res.Data.EmployerName)
	assert.Equal(t, "2024-03-01", *res.Data.PeriodStart)
}

func TestExtract_FatalErrors(t *testing.T) {
	p := newProcessor(t)
	tests := []struct {
		name     string
		input    any
		country  string
		sentinel error
		contains string
	}{
		{"unsupported country", brHolerite, "us", common.ErrUnsupportedCountry, "Unsupported country"},
		{"number input", 42, "br", common.ErrInvalidInput, "ocr_text"},
		{"map without text", map[string]any{"text": "x"}, "br", common.ErrInvalidInput, "ocr_text"},
		{"nil pointer", (*Input)(nil), "br", common.ErrInvalidInput, "ocr_text"},
		{"nil input", nil, "br", common.ErrInvalidInput, "ocr_text"},
		{"blank text", "  \n\t ", "br", common.ErrEmptyInput, "empty"},
		{"empty text before country", "", "us", common.ErrEmptyInput, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Extract(context.Background(), tt.input, tt.country, nil)
			require.NotNil(t, res)
			assert.False(t, res.Success)
			assert.Nil(t, res.Data)
			assert.ErrorIs(t, res.Err, tt.sentinel)
			assert.Contains(t, res.Error, tt.contains)
		})
	}
}

func TestExtract_CountryCodeIsNormalized(t *testing.T) {
	res := newProcessor(t).Extract(context.Background(), brHolerite, " BR ", nil)
	require.True(t, res.Success)
	assert.Equal(t, constants.Brazil, res.Data.Country)

	res = newProcessor(t).Extract(context.Background(), brHolerite, "pt", nil)
	require.True(t, res.Success)
	assert.Equal(t, constants.Portugal, res.Data.Country)
	assert.Equal(t, "pt", res.Legacy.Pays)
}

func TestExtract_FallbackFillsOnlyMissingFields(t *testing.T) {
	var calls atomic.Int32
	fallback := func(_ context.Context, text string) (map[string]any, error) {
		calls.Add(1)
		return map[string]any{
			"gross_pay":     "9999.00",
			"net_pay":       "5920.00",
			"employee_name": "João da Silva",
			"empresa":       "Empresa Exemplo Ltda",
		}, nil
	}
	text := "Competência: 03/2024\nSalário Bruto: R$ 8.000,00"
	res := newProcessor(t).Extract(context.Background(), text, "br", fallback)
	require.True(t, res.Success)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, constants.MethodHybrid, res.Data.ExtractionMethod)
	assert.NoError(t, res.FallbackErr)
	assert.Equal(t, 8000.0, *res.Data.GrossPay)
	assert.Equal(t, 5920.0, *res.Data.NetPay)
	assert.Equal(t, "Empresa Exemplo Ltda", *res.Data.EmployerName)
	assert.Empty(t, res.Warnings)
}

func TestExtract_FallbackSkippedWhenComplete(t *testing.T) {
	called := false
	fallback := func(context.Context, string) (map[string]any, error) {
		called = true
		return nil, nil
	}
	res := newProcessor(t).Extract(context.Background(), brHolerite, "br", fallback)
	require.True(t, res.Success)
	assert.False(t, called)
	assert.Equal(t, constants.MethodRegex, res.Data.ExtractionMethod)
}

func TestExtract_FallbackFailuresAreNonFatal(t *testing.T) {
	tests := []struct {
		name     string
		fallback func(context.Context, string) (map[string]any, error)
	}{
		{"error", func(context.Context, string) (map[string]any, error) {
			return nil, errors.New("provider down")
		}},
		{"panic", func(context.Context, string) (map[string]any, error) {
			panic("boom")
		}},
		{"timeout", func(ctx context.Context, _ string) (map[string]any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}},
		{"empty payload", func(context.Context, string) (map[string]any, error) {
			return map[string]any{}, nil
		}},
		{"unusable payload", func(context.Context, string) (map[string]any, error) {
			return map[string]any{"gross_pay": "n/a", "salary": 1}, nil
		}},
	}
	p := newProcessor(t, WithFallbackTimeout(20*time.Millisecond))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Extract(context.Background(), "Empresa: ACME Ltda", "fr", tt.fallback)
			require.True(t, res.Success)
			assert.Equal(t, constants.MethodRegex, res.Data.ExtractionMethod)
			require.Len(t, res.Warnings, 1)
			assert.Contains(t, res.Warnings[0], common.CodeFallbackUnavailable)
			assert.ErrorIs(t, res.FallbackErr, common.ErrFallbackUnavailable)
			assert.False(t, common.IsFatal(res.FallbackErr))
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	p := newProcessor(t)
	a := p.Extract(context.Background(), brHolerite, "br", nil)
	b := p.Extract(context.Background(), brHolerite, "br", nil)

	ja, err := json.Marshal(a.Data)
	require.NoError(t, err)
	jb, err := json.Marshal(b.Data)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
	assert.Equal(t, a.Validation, b.Validation)
}

func TestExtract_LegacyView(t *testing.T) {
	input := map[string]any{
		"ocr_text":  brHolerite,
		"file_name": "holerite-2024-03.txt",
		"file_size": float64(512),
		"file_type": "text/plain",
	}
	res := newProcessor(t).Extract(context.Background(), input, "br", nil)
	require.True(t, res.Success)

	l := res.Legacy
	assert.Equal(t, *res.Data.GrossPay, *l.SalarioBruto)
	assert.Equal(t, *res.Data.NetPay, *l.SalarioLiquido)
	assert.Equal(t, *res.Data.TotalDeductions, *l.Descontos)
	assert.Equal(t, "João da Silva", *l.Nome)
	assert.Equal(t, "Empresa Exemplo Ltda", *l.Empresa)
	assert.Equal(t, "br", l.Pays)
	assert.Equal(t, map[string]any{
		"file_name": "holerite-2024-03.txt",
		"file_size": int64(512),
		"file_type": "text/plain",
	}, l.Raw)

	// projection shares nothing with the canonical record
	*l.SalarioBruto = 1
	assert.Equal(t, 8000.0, *res.Data.GrossPay)
}

func TestExtract_ConfidenceBounds(t *testing.T) {
	p := newProcessor(t)
	inputs := []string{
		brHolerite,
		"Salário Bruto: R$ -90.000,00\nSalário Líquido: R$ 950.000,00\nTotal de Descontos: -5",
		"Salário Bruto: 8\nSalário Líquido: 5.920,00",
		"lorem ipsum",
	}
	for _, in := range inputs {
		for _, c := range []string{"br", "fr", "pt"} {
			res := p.Extract(context.Background(), in, c, nil)
			require.True(t, res.Success)
			assert.GreaterOrEqual(t, res.Data.ExtractionConfidence, 0)
			assert.LessOrEqual(t, res.Data.ExtractionConfidence, 100)
			assert.GreaterOrEqual(t, res.Validation.Confidence, 0)
			assert.LessOrEqual(t, res.Validation.Confidence, 100)
		}
	}
}

type panickingAdapter struct{}

func (panickingAdapter) Country() constants.Country { return constants.Brazil }

func (panickingAdapter) Extract(string) *entity.ExtractedPayslip { panic("table corrupted") }

func TestExtract_RecoversPanics(t *testing.T) {
	p := NewProcessor(nil, adapter.Registry{constants.Brazil: panickingAdapter{}})
	res := p.Extract(context.Background(), "x", "br", nil)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, common.ErrInternal)
	assert.Contains(t, res.Error, "table corrupted")
}

func TestExtract_ConcurrentUse(t *testing.T) {
	p := newProcessor(t)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			country := []string{"br", "fr", "pt"}[i%3]
			res := p.Extract(context.Background(), brHolerite, country, nil)
			assert.True(t, res.Success)
		}()
	}
	wg.Wait()
}

func TestCountries(t *testing.T) {
	assert.ElementsMatch(t, constants.SupportedCountries(), newProcessor(t).Countries())
}
