package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/bootstrap"
	"github.com/joseph-ayodele/payslip-extractor/internal/common"
	"github.com/joseph-ayodele/payslip-extractor/internal/ingest"
)

func main() {
	var (
		country    = flag.String("country", "", "country code when the dump does not carry one")
		times      = flag.Int("times", 1, "run the extraction N times (checks determinism and cache hits)")
		noFallback = flag.Bool("no-fallback", false, "disable the generative fallback")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	if *noFallback {
		cfg.Extraction.EnableFallback = false
	}
	logger := bootstrap.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "payslip-extract [-country br] <dump.txt|dump.json>")
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	dump, err := ingest.LoadFile(flag.Arg(0), *country)
	if err != nil {
		logger.Error("load dump", "path", flag.Arg(0), "error", err)
		os.Exit(1)
	}
	c, _ := constants.ParseCountry(dump.Country)
	fb := app.Resolver(c)

	base := filepath.Base(dump.Path)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	exit := 0
	for i := 1; i <= max(*times, 1); i++ {
		start := time.Now()
		res := app.Processor.Extract(ctx, dump.Input, dump.Country, fb)
		if !res.Success {
			logger.Error("extract.run.error", "iter", i, "file", base, "error", res.Error)
			exit = 1
		} else {
			logger.Info("extract.run.ok", "iter", i, "file", base, "method", res.Data.ExtractionMethod, "elapsed_ms", time.Since(start).Milliseconds())
		}
		if i == 1 {
			_ = enc.Encode(res)
		}
	}
	if exit != 0 {
		app.Close()
		os.Exit(exit)
	}
}
