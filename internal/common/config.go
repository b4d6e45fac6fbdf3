package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Extraction ExtractionConfig
	LLM        LLMConfig
	Log        LogConfig
}

// DatabaseConfig holds the fallback cache store configuration.
// An empty DSN disables the cache.
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr     string
	MaxTextBytes int
}

// ExtractionConfig holds pipeline-related configuration
type ExtractionConfig struct {
	EnableFallback  bool
	FallbackTimeout time.Duration
	RulesDir        string
	Workers         int
	QueueSize       int
	JobTimeout      time.Duration
}

// LLMConfig holds fallback provider configuration
type LLMConfig struct {
	Provider    string // openai | gemini | vertexai | none
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
	GCPProject  string
	GCPLocation string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // json | text
}

var knownProviders = map[string]struct{}{
	"none": {}, "openai": {}, "gemini": {}, "vertexai": {},
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:     getEnv("GRPC_ADDR", ":8080"),
			MaxTextBytes: getEnvAsInt("MAX_OCR_TEXT_BYTES", 512*1024),
		},
		Extraction: ExtractionConfig{
			EnableFallback:  getEnvAsBool("EXTRACTION_ENABLE_FALLBACK", true),
			FallbackTimeout: getEnvAsDuration("EXTRACTION_FALLBACK_TIMEOUT", 45*time.Second),
			RulesDir:        getEnv("EXTRACTION_RULES_DIR", ""),
			Workers:         getEnvAsInt("EXTRACTION_WORKERS", 4),
			QueueSize:       getEnvAsInt("EXTRACTION_QUEUE_SIZE", 256),
			JobTimeout:      getEnvAsDuration("EXTRACTION_JOB_TIMEOUT", 2*time.Minute),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(getEnv("LLM_PROVIDER", "none")),
			Model:       getEnv("LLM_MODEL", ""),
			APIKey:      getEnv("LLM_API_KEY", ""),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
			GCPProject:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
			GCPLocation: getEnv("GOOGLE_CLOUD_LOCATION", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// FallbackConfigured reports whether a generative provider should be wired.
func (c *Config) FallbackConfigured() bool {
	return c.Extraction.EnableFallback && c.LLM.Provider != "" && c.LLM.Provider != "none"
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "GRPC_ADDR is required", ErrInvalidInput)
	}
	if _, ok := knownProviders[c.LLM.Provider]; !ok {
		return NewAppError(CodeConfig, fmt.Sprintf("LLM_PROVIDER %q is not supported", c.LLM.Provider), ErrInvalidInput)
	}
	if c.FallbackConfigured() {
		switch c.LLM.Provider {
		case "vertexai":
			if c.LLM.GCPProject == "" || c.LLM.GCPLocation == "" {
				return NewAppError(CodeConfig, "GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_LOCATION are required for vertexai", ErrInvalidInput)
			}
		default:
			if c.LLM.APIKey == "" {
				return NewAppError(CodeConfig, "LLM_API_KEY is required when a fallback provider is enabled", ErrInvalidInput)
			}
		}
	}
	if c.Extraction.Workers <= 0 {
		return NewAppError(CodeConfig, "EXTRACTION_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
