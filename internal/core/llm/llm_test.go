package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/payslip-extractor/constants"
)

func TestBuildPayslipJSONSchema_PerCountry(t *testing.T) {
	br := SchemaFields(BuildPayslipJSONSchema(constants.Brazil))
	fr := SchemaFields(BuildPayslipJSONSchema(constants.France))

	assert.Contains(t, br, "fgts_amount")
	assert.NotContains(t, br, "social_charges")
	assert.Contains(t, fr, "social_charges")
	assert.NotContains(t, fr, "fgts_amount")
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildPayslipJSONSchema(constants.Brazil)

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"gross_pay":"8000.00","employee_name":"João","period_start":"2024-03-01"}`, false},
		{"empty object", `{}`, false},
		{"number instead of decimal string", `{"gross_pay":8000}`, true},
		{"comma decimal", `{"gross_pay":"8000,00"}`, true},
		{"unknown key", `{"salary":"1.00"}`, true},
		{"bad date", `{"period_start":"03/2024"}`, true},
		{"not an object", `["gross_pay"]`, true},
		{"not json", `gross`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONAgainstSchema(schema, []byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeAndSanitizeJSON(t *testing.T) {
	raw := []byte(`{
		"salario_bruto": "R$ 8.000,00",
		"net_pay": 5920,
		"net": "1,00",
		"income_tax": null,
		"social_security": "n/a",
		"employer_name": "  Empresa Exemplo  ",
		"employee_name": "",
		"period_start": "01/03/2024",
		"social_charges": "10.00",
		"confidence": 0.9
	}`)

	out, dropped, err := NormalizeAndSanitizeJSON(raw, constants.Brazil, nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, map[string]any{
		"gross_pay":     "8000.00",
		"net_pay":       "5920.00",
		"employer_name": "Empresa Exemplo",
		"period_start":  "2024-03-01",
	}, m)
	assert.Contains(t, dropped, "salario_bruto->gross_pay")
	assert.Contains(t, dropped, "social_charges(unknown)")
	assert.Contains(t, dropped, "confidence(unknown)")
	assert.Contains(t, dropped, "income_tax(invalid)")

	require.NoError(t, ValidateJSONAgainstSchema(BuildPayslipJSONSchema(constants.Brazil), out))
}

func TestNormalizeAndSanitizeJSON_AliasPriority(t *testing.T) {
	for i := 0; i < 50; i++ {
		out, _, err := NormalizeAndSanitizeJSON([]byte(`{"gross": 1000, "salario_bruto": 2000}`), constants.Brazil, nil)
		require.NoError(t, err)
		require.JSONEq(t, `{"gross_pay": "2000.00"}`, string(out), "run %d", i)
	}
}

func TestDecodeFields(t *testing.T) {
	t.Run("strict", func(t *testing.T) {
		fields, _, err := DecodeFields([]byte(`{"gross_pay":"4000.00"}`), constants.France, false, nil)
		require.NoError(t, err)
		assert.Equal(t, "4000.00", fields["gross_pay"])
	})
	t.Run("code fence and lenient", func(t *testing.T) {
		content := "```json\n{\"salaire_brut\": 1, \"gross_pay\": 4000}\n```"
		fields, raw, err := DecodeFields([]byte(content), constants.France, true, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"gross_pay": "4000.00"}, fields)
		assert.JSONEq(t, `{"gross_pay":"4000.00"}`, string(raw))
	})
	t.Run("strict rejects", func(t *testing.T) {
		_, _, err := DecodeFields([]byte(`{"gross_pay":4000}`), constants.France, false, nil)
		assert.Error(t, err)
	})
	t.Run("garbage", func(t *testing.T) {
		_, _, err := DecodeFields([]byte(`not json`), constants.France, true, nil)
		assert.Error(t, err)
	})
}

func TestSendJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		if strings.HasSuffix(r.URL.Path, "/fail") {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	headers := map[string]string{"Authorization": "Bearer k"}
	raw, status, err := SendJSON(context.Background(), srv.Client(), srv.URL+"/ok", map[string]any{"a": 1}, headers, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	raw, status, err = SendJSON(context.Background(), srv.Client(), srv.URL+"/fail", nil, headers, nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, string(raw), "rate")
}

type stubExtractor struct {
	mu     sync.Mutex
	calls  int
	fields map[string]any
	err    error
}

func (s *stubExtractor) ExtractFields(_ context.Context, req ExtractRequest) (map[string]any, []byte, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, nil, s.err
	}
	raw, _ := json.Marshal(s.fields)
	return s.fields, raw, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memCache) Put(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	m.entries[key] = payload
	return nil
}

func TestCachedExtractor(t *testing.T) {
	ctx := context.Background()
	next := &stubExtractor{fields: map[string]any{"gross_pay": "8000.00"}}
	cache := &memCache{}
	ex := NewCachedExtractor(next, cache, "openai/test", nil)

	req := ExtractRequest{OCRText: "Salário Bruto 8.000,00", Country: constants.Brazil}
	for range 3 {
		fields, _, err := ex.ExtractFields(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "8000.00", fields["gross_pay"])
	}
	assert.Equal(t, 1, next.calls)

	// another country is another key
	_, _, err := ex.ExtractFields(ctx, ExtractRequest{OCRText: req.OCRText, Country: constants.Portugal})
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)

	cache.getErr = errors.New("db down")
	_, _, err = ex.ExtractFields(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("openai/x", ExtractRequest{OCRText: " text ", Country: constants.Brazil})
	b := CacheKey("openai/x", ExtractRequest{OCRText: "text", Country: constants.Brazil})
	c := CacheKey("gemini/x", ExtractRequest{OCRText: "text", Country: constants.Brazil})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestNewFallback(t *testing.T) {
	assert.Nil(t, NewFallback(nil, constants.Brazil, nil))

	fb := NewFallback(&stubExtractor{err: errors.New("boom")}, constants.Brazil, nil)
	_, err := fb(context.Background(), "x")
	assert.ErrorContains(t, err, "boom")

	resolve := NewResolver(&stubExtractor{fields: map[string]any{"net_pay": "1.00"}}, nil)
	for _, c := range constants.SupportedCountries() {
		fb := resolve(c)
		require.NotNil(t, fb)
		fields, err := fb(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, "1.00", fields["net_pay"])
	}
	assert.Nil(t, resolve("us"))
	assert.Nil(t, NewResolver(nil, nil)(constants.Brazil))
}

func TestBuildUserPrompt_Truncates(t *testing.T) {
	long := strings.Repeat("é", maxPromptText)
	p := BuildUserPrompt(ExtractRequest{OCRText: long, FilenameHint: "holerite.txt"})
	assert.True(t, strings.HasPrefix(p, "Filename: holerite.txt\n"))
	assert.Contains(t, p, "(truncated)")
	assert.True(t, strings.ToValidUTF8(p, "?") == p)
}
