// Package ingest loads OCR dumps from disk for batch re-processing.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/core"
)

// Dump is one OCR text file ready to be extracted. Input is a core.Input for
// text dumps and the decoded object for JSON dumps.
type Dump struct {
	Path    string
	Country string // from the JSON "country" key, else the caller's default
	Input   any
}

// FileResult records a file that could not be loaded.
type FileResult struct {
	Path string
	Err  string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Loaded  uint32
	Failed  uint32
}

// LoadFile reads a .txt dump as raw OCR text, or a .json dump as an object
// carrying "ocr_text" and optionally "country" and file metadata.
func LoadFile(path, defaultCountry string) (Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dump{}, err
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsStructuredDump(ext) {
		return Dump{
			Path:    path,
			Country: defaultCountry,
			Input: core.Input{
				OCRText:  string(data),
				FileName: filepath.Base(path),
				FileSize: int64(len(data)),
				FileType: ext,
			},
		}, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return Dump{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	country := defaultCountry
	if c, ok := obj["country"].(string); ok && c != "" {
		country = c
	}
	delete(obj, "country")
	if _, ok := obj["file_name"]; !ok {
		obj["file_name"] = filepath.Base(path)
	}
	return Dump{Path: path, Country: country, Input: obj}, nil
}
