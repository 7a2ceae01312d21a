// Package scanner extracts translations from whole directory trees: it
// discovers source files, extracts them concurrently and merges the per-file
// results in a deterministic order.
package scanner

import (
	"fmt"
	"strings"

	"github.com/mattermost/mmjstool/pkg/extractor"
)

// ConflictPolicy decides what happens when two files produce the same key.
type ConflictPolicy string

const (
	// ConflictLastWins keeps the message of the file merged last.
	ConflictLastWins ConflictPolicy = "last-wins"
	// ConflictError fails the run when two files give the same key
	// different non-empty messages.
	ConflictError ConflictPolicy = "error"
)

// ParseConflictPolicy validates a policy name. The empty string selects
// ConflictLastWins.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ConflictLastWins, nil
	case ConflictLastWins, ConflictError:
		return p, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q (want %s or %s)", s, ConflictLastWins, ConflictError)
	}
}

// ScanConfig configures discovery and merging.
type ScanConfig struct {
	// Extensions lists the file extensions to extract, with leading dot.
	Extensions []string
	// Filters excludes every path whose root-relative form contains one of
	// these substrings.
	Filters []string
	// Exclude holds doublestar globs matched against root-relative,
	// slash-separated paths.
	Exclude []string
	// ConflictPolicy selects how same-key collisions are resolved.
	ConflictPolicy ConflictPolicy
	// Workers bounds extraction concurrency; 0 selects util.GetOptimalPoolSize().
	Workers int
}

// DefaultScanConfig returns the configuration shared by every target.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Extensions:     []string{".js", ".jsx", ".ts", ".tsx"},
		ConflictPolicy: ConflictLastWins,
	}
}

// ProgressCallback is invoked after each file is extracted, from a single
// goroutine.
type ProgressCallback func(done, total int, file string)

// FileResult is the outcome of extracting one file.
type FileResult struct {
	Path         string
	Translations extractor.TranslationMap
	Err          error
	// Skipped marks files that were not extracted because an earlier file
	// in enumeration order had already failed.
	Skipped bool
}

// ScanStats tracks counts and timings of one root.
type ScanStats struct {
	FilesDiscovered  int   `json:"files_discovered"`
	FilesExtracted   int   `json:"files_extracted"`
	FilesSkipped     int   `json:"files_skipped"`
	Keys             int   `json:"keys"`
	DiscoveryTimeMs  int64 `json:"discovery_time_ms"`
	ExtractionTimeMs int64 `json:"extraction_time_ms"`
}

// RootResult is the merged extraction of one root directory.
type RootResult struct {
	Root         string
	Translations extractor.TranslationMap
	// Failure is the first unparseable file. When set, Translations holds
	// only the files merged before it.
	Failure *extractor.ExtractionError
	Stats   ScanStats
}

// ConflictKeyError reports two files giving one key different messages.
type ConflictKeyError struct {
	Key          string
	FirstFile    string
	FirstMessage string
	File         string
	Message      string
}

func (e *ConflictKeyError) Error() string {
	return fmt.Sprintf("conflicting default messages for %q: %q in %s, %q in %s",
		e.Key, e.FirstMessage, e.FirstFile, e.Message, e.File)
}
