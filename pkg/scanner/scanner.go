package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattermost/mmjstool/pkg/extractor"
)

// Scanner runs directory extraction: discovery, concurrent per-file
// extraction and ordered merge.
type Scanner struct {
	ext      FileExtractor
	cfg      ScanConfig
	progress ProgressCallback
	log      *slog.Logger
}

// NewScanner creates a scanner that extracts files with ext.
func NewScanner(ext FileExtractor, cfg ScanConfig, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ConflictPolicy == "" {
		cfg.ConflictPolicy = ConflictLastWins
	}
	return &Scanner{ext: ext, cfg: cfg, log: logger}
}

// SetProgress installs a callback receiving per-file progress.
func (s *Scanner) SetProgress(progress ProgressCallback) {
	s.progress = progress
}

// Config returns the scanner configuration.
func (s *Scanner) Config() ScanConfig {
	return s.cfg
}

// ExtractRoot extracts every eligible file under root.
//
// A file that fails to parse does not make ExtractRoot fail: the failure is
// logged, reported in RootResult.Failure, and the translations merged before
// it are returned. Discovery and read failures are returned as errors.
func (s *Scanner) ExtractRoot(ctx context.Context, root string) (*RootResult, error) {
	stats := ScanStats{}

	discoveryStart := time.Now()
	files, err := DiscoverFiles(root, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	s.log.Debug("discovery complete", "root", root, "files", len(files), "ms", stats.DiscoveryTimeMs)

	extractionStart := time.Now()
	results := ExtractAll(ctx, files, s.ext, s.cfg.Workers, s.progress, s.log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	translations, failure, err := MergeResults(results, s.cfg.ConflictPolicy)
	if err != nil {
		return nil, err
	}
	stats.ExtractionTimeMs = time.Since(extractionStart).Milliseconds()

	for _, r := range results {
		switch {
		case r.Skipped:
			stats.FilesSkipped++
		case r.Err == nil:
			stats.FilesExtracted++
		}
	}
	stats.Keys = len(translations)

	if failure != nil {
		s.log.Warn("stopping extraction at unparseable file",
			"root", root,
			"file", failure.Path,
			"line", failure.Line,
			"column", failure.Column,
			"error", failure.Err)
	}

	s.log.Info("extraction complete",
		"root", root,
		"files", stats.FilesExtracted,
		"keys", stats.Keys,
		"ms", stats.ExtractionTimeMs)

	return &RootResult{
		Root:         root,
		Translations: translations,
		Failure:      failure,
		Stats:        stats,
	}, nil
}

// ExtractDirectories extracts each root independently and unions the
// results, later roots overriding earlier ones (subject to the conflict
// policy).
func (s *Scanner) ExtractDirectories(ctx context.Context, roots []string) (extractor.TranslationMap, []*RootResult, error) {
	merged := make(extractor.TranslationMap)
	origin := make(map[string]string)
	perRoot := make([]*RootResult, 0, len(roots))

	for _, root := range roots {
		result, err := s.ExtractRoot(ctx, root)
		if err != nil {
			return nil, perRoot, fmt.Errorf("failed to extract %s: %w", root, err)
		}
		perRoot = append(perRoot, result)

		if err := mergeInto(merged, origin, result.Translations, root, s.cfg.ConflictPolicy); err != nil {
			return nil, perRoot, err
		}
	}

	return merged, perRoot, nil
}
