package openai

import (
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Config for the OpenAI client. Nothing is read from the environment.
type Config struct {
	APIKey          string
	BaseURL         string  // default https://api.openai.com/v1
	Model           string  // e.g., "gpt-4o-mini"
	Temperature     float32 // 0..2
	Timeout         time.Duration
	LenientOptional bool
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

// Namespace identifies the provider and model in cache keys.
func (c *Client) Namespace() string {
	return "openai/" + c.cfg.Model
}
