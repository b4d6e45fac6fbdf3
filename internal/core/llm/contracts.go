package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/payslip-extractor/constants"
)

// FallbackFunc is the generative fallback handed to the processor. It returns
// a partial record keyed by canonical field names or legacy aliases.
type FallbackFunc func(ctx context.Context, ocrText string) (map[string]any, error)

// FallbackResolver returns the fallback to use for a country, or nil to run
// deterministic extraction only.
type FallbackResolver func(country constants.Country) FallbackFunc

type ExtractRequest struct {
	OCRText      string
	Country      constants.Country
	FilenameHint string
}

// FieldExtractor is the interface our providers implement. fields holds the
// sanitized payload; raw is the provider content it was decoded from.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (fields map[string]any, raw []byte, err error)
}

// NewFallback adapts a FieldExtractor to a FallbackFunc bound to one country.
func NewFallback(ex FieldExtractor, country constants.Country, logger *slog.Logger) FallbackFunc {
	if ex == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, ocrText string) (map[string]any, error) {
		fields, _, err := ex.ExtractFields(ctx, ExtractRequest{OCRText: ocrText, Country: country})
		if err != nil {
			logger.Warn("llm.fallback.failed", "country", country, "error", err)
			return nil, fmt.Errorf("fallback %s: %w", country, err)
		}
		return fields, nil
	}
}

// NewResolver binds one extractor to every supported country.
func NewResolver(ex FieldExtractor, logger *slog.Logger) FallbackResolver {
	if ex == nil {
		return func(constants.Country) FallbackFunc { return nil }
	}
	byCountry := make(map[constants.Country]FallbackFunc, len(constants.SupportedCountries()))
	for _, c := range constants.SupportedCountries() {
		byCountry[c] = NewFallback(ex, c, logger)
	}
	return func(c constants.Country) FallbackFunc {
		return byCountry[c]
	}
}
