package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joseph-ayodele/payslip-extractor/internal/bootstrap"
	"github.com/joseph-ayodele/payslip-extractor/internal/common"
	"github.com/joseph-ayodele/payslip-extractor/internal/mcptools"
)

var version = "dev"

func main() {
	cfg := common.LoadConfig()
	// stdout carries the protocol
	logger := bootstrap.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := mcp.NewServer(&mcp.Implementation{Name: "payslip-extractor", Version: version}, nil)
	mcptools.New(app.Processor, app.Resolver, cfg.Server.MaxTextBytes, logger).Register(srv)

	logger.Info("payslip-mcp serving on stdio")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
