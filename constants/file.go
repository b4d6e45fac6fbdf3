package constants

import "strings"

// AllowedExtensions holds the OCR dump extensions accepted by batch processing.
// ".txt" files carry raw OCR text, ".json" files an object with "ocr_text".
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"text": {},
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsStructuredDump reports whether the extension holds a JSON input object.
func IsStructuredDump(ext string) bool {
	return NormalizeExt(ext) == "json"
}
