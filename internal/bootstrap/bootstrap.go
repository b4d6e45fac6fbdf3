// Package bootstrap assembles the processor, fallback provider and cache from
// configuration. Commands share it so they wire the pipeline the same way.
package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/payslip-extractor/internal/common"
	"github.com/joseph-ayodele/payslip-extractor/internal/core"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/adapter"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm/provider"
	"github.com/joseph-ayodele/payslip-extractor/internal/repository"
)

// NewLogger builds a JSON or text handler at the configured level.
func NewLogger(cfg common.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

type App struct {
	Logger    *slog.Logger
	Processor *core.Processor
	// Resolver is never nil; it yields nil fallbacks when none is configured.
	Resolver llm.FallbackResolver
	Store    *repository.Store
}

// New wires the pipeline. The store is opened only when a DSN is set and a
// fallback provider is in use.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Logger: logger, Resolver: llm.NewResolver(nil, logger)}

	registry, err := loadRegistry(cfg.Extraction.RulesDir)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "load rule tables", err)
	}
	app.Processor = core.NewProcessor(logger, registry, core.WithFallbackTimeout(cfg.Extraction.FallbackTimeout))

	if !cfg.FallbackConfigured() {
		logger.Info("bootstrap.fallback.disabled")
		return app, nil
	}

	ex, err := provider.NewExtractor(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "build llm provider", err)
	}
	if ex == nil {
		return app, nil
	}

	var fields llm.FieldExtractor = ex
	if cfg.Database.DSN != "" {
		store, err := repository.Open(ctx, repository.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, common.WrapError(err, "open fallback cache")
		}
		cache, err := repository.NewFallbackCache(ctx, store, logger)
		if err != nil {
			store.Close(logger)
			return nil, err
		}
		app.Store = store
		fields = llm.NewCachedExtractor(ex, cache, ex.Namespace(), logger)
		logger.Info("bootstrap.fallback.cached", "dialect", store.Dialect)
	}

	app.Resolver = llm.NewResolver(fields, logger)
	return app, nil
}

// Close releases the store, if any.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close(a.Logger)
	}
}

func loadRegistry(dir string) (adapter.Registry, error) {
	if dir == "" {
		return adapter.DefaultRegistry()
	}
	return adapter.LoadRegistry(dir)
}
