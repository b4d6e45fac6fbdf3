package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/common"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(common.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "v", line["k"])

	buf.Reset()
	NewLogger(common.LogConfig{Level: "bogus", Format: "text"}, &buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func baseConfig() *common.Config {
	return &common.Config{
		Extraction: common.ExtractionConfig{EnableFallback: true, FallbackTimeout: time.Second, Workers: 1},
		LLM:        common.LLMConfig{Provider: "none"},
	}
}

func TestNew_WithoutFallback(t *testing.T) {
	app, err := New(context.Background(), baseConfig(), nil)
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Store)
	require.NotNil(t, app.Resolver)
	assert.Nil(t, app.Resolver(constants.Brazil))
	assert.Equal(t, constants.SupportedCountries(), app.Processor.Countries())
}

func TestNew_OpenAIWithSQLiteCache(t *testing.T) {
	cfg := baseConfig()
	cfg.LLM = common.LLMConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini", Timeout: time.Second}
	cfg.Database.DSN = "sqlite://:memory:"

	app, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.Store)
	assert.NotNil(t, app.Resolver(constants.France))
}

func TestNew_EmptyRulesDir(t *testing.T) {
	cfg := baseConfig()
	cfg.Extraction.RulesDir = t.TempDir()
	app, err := New(context.Background(), cfg, nil)
	require.NoError(t, err, "missing files fall back to the embedded tables")
	app.Close()
}
