package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/bootstrap"
	"github.com/joseph-ayodele/payslip-extractor/internal/common"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/async"
	"github.com/joseph-ayodele/payslip-extractor/internal/export"
	"github.com/joseph-ayodele/payslip-extractor/internal/ingest"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory of .txt/.json OCR dumps (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		country    = flag.String("country", "", "country for dumps that do not carry one (br, fr, pt)")
		noFallback = flag.Bool("no-fallback", false, "disable the generative fallback")
		hidden     = flag.Bool("hidden", false, "include hidden files and directories")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "payslips.xlsx")
	}

	cfg := common.LoadConfig()
	if *noFallback {
		cfg.Extraction.EnableFallback = false
	}
	logger := bootstrap.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		printError("Error: %s\n", common.Message(err))
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

	dumps, unreadable, stats, err := ingest.ScanDirectory(ctx, *dir, *country, nil, !*hidden)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	for _, f := range unreadable {
		logger.Warn("batch.file.unreadable", "path", f.Path, "error", f.Err)
	}
	logger.Info("batch.scan.ok", "scanned", stats.Scanned, "matched", stats.Matched, "loaded", stats.Loaded, "failed", stats.Failed)

	var (
		mu      sync.Mutex
		rows    = make([]export.Row, len(dumps))
		index   = make(map[string]int, len(dumps))
		failed  int
		handled int
	)
	for i, d := range dumps {
		index[d.Path] = i
		rows[i] = export.Row{Source: d.Path, Country: d.Country}
	}
	queue := async.NewProcessorQueue(app.Processor, logger,
		async.WithWorkers(cfg.Extraction.Workers),
		async.WithQueueSize(cfg.Extraction.QueueSize),
		async.WithProcessTimeout(cfg.Extraction.JobTimeout),
		async.WithResultHandler(func(r async.JobResult) {
			mu.Lock()
			defer mu.Unlock()
			rows[index[r.Job.Source]].Result = r.Result
			handled++
			if r.Status == constants.JobStatusFailed {
				failed++
			}
		}),
	)

	for _, d := range dumps {
		fb := app.Resolver(parseCountry(d.Country))
		if _, err := queue.Enqueue(ctx, async.Job{Source: d.Path, Input: d.Input, Country: d.Country, Fallback: fb}); err != nil {
			logger.Error("batch.enqueue.failed", "path", d.Path, "error", err)
			break
		}
	}
	queue.Shutdown(context.Background())

	xlsx, err := export.NewService(logger).PayslipsXLSX(context.Background(), rows)
	if err != nil {
		logger.Error("failed to export payslips", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete", "files", len(dumps), "processed", handled, "failures", failed, "output_file", *out)
	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files loaded: %d (unreadable: %d)\n", len(dumps), len(unreadable))
	fmt.Printf("- Files processed: %d\n", handled)
	fmt.Printf("- Failures: %d\n", failed)
	fmt.Printf("- Output: %s\n", *out)
}

func parseCountry(code string) constants.Country {
	c, _ := constants.ParseCountry(code)
	return c
}
