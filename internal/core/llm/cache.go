package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
)

// FallbackCache stores provider payloads by content key.
type FallbackCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// CacheKey is the content address of a fallback call: the same provider,
// country and OCR text always map to the same key.
func CacheKey(namespace string, req ExtractRequest) string {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(req.Country))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(req.OCRText)))
	return hex.EncodeToString(h.Sum(nil))
}

// CachedExtractor serves repeated extractions from a FallbackCache. Cache
// errors are logged and never fail the extraction.
type CachedExtractor struct {
	next      FieldExtractor
	cache     FallbackCache
	namespace string
	logger    *slog.Logger
}

var _ FieldExtractor = (*CachedExtractor)(nil)

// NewCachedExtractor wraps next. namespace separates providers and models
// sharing one cache, e.g. "openai/gpt-4o-mini".
func NewCachedExtractor(next FieldExtractor, cache FallbackCache, namespace string, logger *slog.Logger) *CachedExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedExtractor{next: next, cache: cache, namespace: namespace, logger: logger}
}

func (c *CachedExtractor) ExtractFields(ctx context.Context, req ExtractRequest) (map[string]any, []byte, error) {
	key := CacheKey(c.namespace, req)

	raw, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("llm.cache.get_failed", "key", key, "error", err)
	case ok:
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err == nil {
			c.logger.Debug("llm.cache.hit", "key", key, "country", req.Country)
			return fields, raw, nil
		}
		c.logger.Warn("llm.cache.corrupt_entry", "key", key)
	}

	fields, raw, err := c.next.ExtractFields(ctx, req)
	if err != nil {
		return nil, raw, err
	}
	if err := c.cache.Put(ctx, key, raw); err != nil {
		c.logger.Warn("llm.cache.put_failed", "key", key, "error", err)
	}
	return fields, raw, nil
}
