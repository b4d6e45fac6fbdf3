package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDirectory walks root, filters by includeExts (or the allowed dump
// extensions), skips hidden entries if requested and loads every match.
// Unreadable files are reported in the results and do not stop the walk.
func ScanDirectory(ctx context.Context, root, defaultCountry string, includeExts []string, skipHidden bool) ([]Dump, []FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, errors.New("root path is required")
	}

	exts := map[string]struct{}{}
	for _, e := range includeExts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts[e] = struct{}{}
		}
	}
	allowed := func(path string) bool {
		if len(exts) == 0 {
			return AllowedExt(filepath.Ext(path))
		}
		_, ok := exts[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))]
		return ok
	}

	var (
		dumps   []Dump
		results []FileResult
		stats   DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !allowed(path) {
			return nil
		}
		stats.Matched++

		dump, err := LoadFile(path, defaultCountry)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		dumps = append(dumps, dump)
		stats.Loaded++
		return nil
	})
	if err != nil {
		return dumps, results, stats, fmt.Errorf("walk: %w", err)
	}
	sort.Slice(dumps, func(i, j int) bool { return dumps[i].Path < dumps[j].Path })
	return dumps, results, stats, nil
}
