// Package gemini implements the fallback extractor on Google's Gemini models,
// through either the Gemini API or Vertex AI.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm"
)

type Config struct {
	APIKey      string
	UseVertexAI bool
	Project     string
	Location    string
	Model       string // e.g., "gemini-2.5-flash"
	Temperature float32
	BaseURL     string // overrides the service endpoint
	Lenient     bool
}

type Client struct {
	cfg    Config
	models *genai.Models
	log    *slog.Logger
}

var _ llm.FieldExtractor = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	var clientConfig *genai.ClientConfig
	if cfg.UseVertexAI {
		if cfg.Project == "" || cfg.Location == "" {
			return nil, fmt.Errorf("gemini: project and location are required for Vertex AI")
		}
		clientConfig = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	} else {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini: api key is required for the Gemini API backend")
		}
		clientConfig = &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{cfg: cfg, models: client.Models, log: logger}, nil
}

// Namespace identifies the provider and model in cache keys.
func (c *Client) Namespace() string {
	return "gemini/" + c.cfg.Model
}

func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (map[string]any, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "gemini",
		"model", c.cfg.Model,
		"country", req.Country,
		"text_len", len(req.OCRText),
	)

	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr(c.cfg.Temperature),
		SystemInstruction: genai.NewContentFromText(llm.BuildSystemPrompt(req.Country), genai.RoleUser),
	}
	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, genai.Text(llm.BuildUserPrompt(req)), config)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		c.log.Error("llm.extract.no_choices", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, nil, fmt.Errorf("empty gemini response")
	}

	fields, content, err := llm.DecodeFields([]byte(text), req.Country, c.cfg.Lenient, c.log)
	if err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, content, err
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"fields", len(fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, content, nil
}
