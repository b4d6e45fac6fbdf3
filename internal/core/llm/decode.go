package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/payslip-extractor/constants"
)

// DecodeFields validates provider content against the country schema and
// returns the decoded payload. When strict validation fails and lenient is
// set, the content is sanitized and validated again.
func DecodeFields(content []byte, country constants.Country, lenient bool, logger *slog.Logger) (map[string]any, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	content = stripCodeFence(content)
	schema := BuildPayslipJSONSchema(country)

	if err := ValidateJSONAgainstSchema(schema, content); err != nil {
		if !lenient {
			return nil, content, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, dropped, sErr := NormalizeAndSanitizeJSON(content, country, logger)
		if sErr != nil {
			return nil, content, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			return nil, cleaned, fmt.Errorf("schema validation failed: %w", vErr)
		}
		logger.Warn("llm.extract.lenient_sanitize_applied", "country", country, "dropped", dropped)
		content = cleaned
	}

	var fields map[string]any
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, content, fmt.Errorf("unmarshal fields: %w", err)
	}
	return fields, content, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add.
func stripCodeFence(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```"))
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}
