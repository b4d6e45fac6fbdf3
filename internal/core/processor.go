// Package core runs the extraction pipeline: country adapter, optional
// generative fallback, scoring, validation and correction.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/common"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/adapter"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/consistency"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/pipeline"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/scoring"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

const defaultFallbackTimeout = 45 * time.Second

// Input is the structured form of an extraction request. Everything except
// OCRText is passthrough metadata copied to the legacy view.
type Input struct {
	OCRText  string `json:"ocr_text"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	FileType string `json:"file_type,omitempty"`
}

// Raw returns the passthrough metadata that is set.
func (in Input) Raw() map[string]any {
	raw := map[string]any{}
	if in.FileName != "" {
		raw["file_name"] = in.FileName
	}
	if in.FileSize != 0 {
		raw["file_size"] = in.FileSize
	}
	if in.FileType != "" {
		raw["file_type"] = in.FileType
	}
	return raw
}

// Result is the outcome of one extraction. On failure only Success, Error
// and Err are set.
type Result struct {
	Success    bool                     `json:"success"`
	Data       *entity.ExtractedPayslip `json:"data,omitempty"`
	Validation *entity.ValidationResult `json:"validation,omitempty"`
	Legacy     *entity.LegacyPayslip    `json:"legacy,omitempty"`
	Warnings   []string                 `json:"warnings,omitempty"`
	Error      string                   `json:"error,omitempty"`
	Err        error                    `json:"-"`

	// FallbackErr wraps common.ErrFallbackUnavailable when the fallback was
	// tried and contributed nothing. The result is still a success.
	FallbackErr error `json:"-"`
}

func failure(err error) *Result {
	return &Result{Success: false, Error: common.Message(err), Err: err}
}

// Processor is safe for concurrent use; adapters and rule tables are
// read-only after construction.
type Processor struct {
	logger          *slog.Logger
	registry        adapter.Registry
	fallbackTimeout time.Duration
	now             func() time.Time
}

type Option func(*Processor)

// WithFallbackTimeout bounds each fallback call.
func WithFallbackTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.fallbackTimeout = d
		}
	}
}

// WithClock replaces the clock used for extracted_at.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

func NewProcessor(logger *slog.Logger, registry adapter.Registry, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:          logger,
		registry:        registry,
		fallbackTimeout: defaultFallbackTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Countries lists the countries the processor has adapters for.
func (p *Processor) Countries() []constants.Country {
	var out []constants.Country
	for _, c := range constants.SupportedCountries() {
		if _, ok := p.registry.Lookup(c); ok {
			out = append(out, c)
		}
	}
	return out
}

// Extract runs the full pipeline. input is a string, an Input (or *Input),
// or a map carrying "ocr_text". fallback may be nil. Extract never panics and
// never returns nil.
func (p *Processor) Extract(ctx context.Context, input any, country string, fallback llm.FallbackFunc) (res *Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("processor.extract.panic", "country", country, "panic", r)
			res = failure(common.NewAppError(common.CodeInternal, fmt.Sprintf("internal error: %v", r), common.ErrInternal))
		}
	}()

	in, err := ParseInput(input)
	if err != nil {
		return failure(err)
	}
	if strings.TrimSpace(in.OCRText) == "" {
		return failure(common.NewAppError(common.CodeEmptyInput, "OCR text is empty", common.ErrEmptyInput))
	}
	c, a, err := p.resolve(country)
	if err != nil {
		return failure(err)
	}

	record := a.Extract(in.OCRText)
	method := constants.MethodRegex
	var (
		warnings    []string
		fallbackErr error
	)

	if fallback != nil && pipeline.NeedsFallback(record) {
		missing := pipeline.MissingCritical(record)
		payload, err := p.runFallback(ctx, fallback, in.OCRText)
		if err == nil {
			merged, adopted := pipeline.Merge(record, payload)
			if len(adopted) > 0 {
				record = merged
				method = constants.MethodHybrid
				p.logger.Info("processor.fallback.merged", "country", c, "missing", missing, "adopted", adopted)
			} else {
				err = fmt.Errorf("no usable fields in fallback payload")
			}
		}
		if err != nil {
			fallbackErr = fmt.Errorf("%w: %w", common.ErrFallbackUnavailable, err)
			p.logger.Warn("processor.fallback.unavailable", "country", c, "error", err)
			warnings = append(warnings, fmt.Sprintf("%s: %v", common.CodeFallbackUnavailable, fallbackErr))
		}
	}

	record.Country = c
	record.ExtractionMethod = method
	record.ExtractedAt = p.now().UTC()
	record.ExtractionConfidence = scoring.Score(record)

	validation := consistency.Validate(record)
	final := consistency.ApplyCorrections(record, validation.Corrections)

	p.logger.Info("processor.extract.ok",
		"country", c,
		"method", method,
		"confidence", final.ExtractionConfidence,
		"validation_confidence", validation.Confidence,
		"warnings", len(validation.Warnings)+len(warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Result{
		Success:     true,
		Data:        final,
		Validation:  &validation,
		Legacy:      entity.NewLegacyView(final, in.Raw()),
		Warnings:    warnings,
		FallbackErr: fallbackErr,
	}
}

func (p *Processor) resolve(country string) (constants.Country, adapter.PayslipAdapter, error) {
	unsupported := func() error {
		code := strings.ToLower(strings.TrimSpace(country))
		return common.NewAppError(common.CodeUnsupportedCountry, "Unsupported country: "+code, common.ErrUnsupportedCountry)
	}
	c, ok := constants.ParseCountry(country)
	if !ok {
		return "", nil, unsupported()
	}
	a, ok := p.registry.Lookup(c)
	if !ok {
		return "", nil, unsupported()
	}
	return c, a, nil
}

// runFallback calls fb under the fallback timeout. Errors, panics and
// timeouts all come back as an error.
func (p *Processor) runFallback(ctx context.Context, fb llm.FallbackFunc, text string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, p.fallbackTimeout)
	defer cancel()

	type outcome struct {
		payload map[string]any
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("fallback panicked: %v", r)}
			}
		}()
		payload, err := fb(ctx, text)
		done <- outcome{payload: payload, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fallback: %w", ctx.Err())
	case o := <-done:
		if o.err != nil {
			return nil, o.err
		}
		if len(o.payload) == 0 {
			return nil, fmt.Errorf("fallback returned no data")
		}
		return o.payload, nil
	}
}

// ParseInput accepts the request shapes Extract supports.
func ParseInput(input any) (Input, error) {
	invalid := func(msg string) (Input, error) {
		return Input{}, common.NewAppError(common.CodeInvalidInput, msg, common.ErrInvalidInput)
	}
	switch v := input.(type) {
	case string:
		return Input{OCRText: v}, nil
	case Input:
		return v, nil
	case *Input:
		if v == nil {
			return invalid("input must be a string or an object with ocr_text")
		}
		return *v, nil
	case map[string]any:
		text, ok := v["ocr_text"].(string)
		if !ok {
			return invalid("input object must carry a string ocr_text")
		}
		in := Input{OCRText: text}
		in.FileName, _ = v["file_name"].(string)
		in.FileType, _ = v["file_type"].(string)
		in.FileSize = toInt64(v["file_size"])
		return in, nil
	default:
		return invalid("input must be a string or an object with ocr_text")
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
