// Package provider selects the fallback extractor from configuration.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/payslip-extractor/internal/common"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm/gemini"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm/openai"
)

const (
	OpenAI   = "openai"
	Gemini   = "gemini"
	VertexAI = "vertexai"
	None     = "none"
)

// Extractor is a FieldExtractor that can name itself for cache keys.
type Extractor interface {
	llm.FieldExtractor
	Namespace() string
}

// NewExtractor builds the configured provider. It returns (nil, nil) when
// the provider is "none" or empty.
func NewExtractor(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Provider {
	case "", None:
		return nil, nil
	case OpenAI:
		logger.Info("llm.provider.selected", "provider", OpenAI, "model", cfg.Model)
		return openai.NewClient(openai.Config{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			Temperature:     cfg.Temperature,
			Timeout:         cfg.Timeout,
			LenientOptional: true,
		}, logger), nil
	case Gemini, VertexAI:
		logger.Info("llm.provider.selected", "provider", cfg.Provider, "model", cfg.Model)
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			UseVertexAI: cfg.Provider == VertexAI,
			Project:     cfg.GCPProject,
			Location:    cfg.GCPLocation,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			BaseURL:     cfg.BaseURL,
			Lenient:     true,
		}, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
