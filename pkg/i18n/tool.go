package i18n

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattermost/mmjstool/pkg/dictionary"
	"github.com/mattermost/mmjstool/pkg/extractor"
	"github.com/mattermost/mmjstool/pkg/scanner"
)

var (
	// ErrChangesFound is returned by Check when the sources and the base
	// dictionary disagree. The differences have already been reported.
	ErrChangesFound = errors.New("changes found")

	// ErrEmptyTranslations is returned by checking cleanups when empty
	// messages were found.
	ErrEmptyTranslations = errors.New("empty translations found")

	// ErrNotEnoughInputs is returned by Combine with fewer than two inputs.
	ErrNotEnoughInputs = errors.New("combine needs at least two input files")
)

// Options configures a Tool.
type Options struct {
	// Extractor parses single files.
	Extractor scanner.FileExtractor
	// Scan is the base scanner configuration; target filters are added to it.
	Scan scanner.ScanConfig
	// Progress receives per-file extraction progress.
	Progress scanner.ProgressCallback
	// Refresh lets Update replace persisted messages with differing
	// non-empty defaults extracted from the sources.
	Refresh bool
	// Out receives the report lines. Defaults to os.Stdout.
	Out    io.Writer
	Logger *slog.Logger
}

// CleanOptions configures the cleanup operations.
type CleanOptions struct {
	// DryRun reports without writing.
	DryRun bool
	// Check makes the operation return ErrEmptyTranslations when empty
	// messages were found.
	Check bool
}

// Tool runs the translation workflows.
type Tool struct {
	ext      scanner.FileExtractor
	scan     scanner.ScanConfig
	progress scanner.ProgressCallback
	refresh  bool
	out      io.Writer
	log      *slog.Logger
}

// New creates a Tool.
func New(opts Options) *Tool {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scan := opts.Scan
	if len(scan.Extensions) == 0 {
		scan.Extensions = scanner.DefaultScanConfig().Extensions
	}

	return &Tool{
		ext:      opts.Extractor,
		scan:     scan,
		progress: opts.Progress,
		refresh:  opts.Refresh,
		out:      out,
		log:      logger,
	}
}

func (t *Tool) scannerFor(target Target) *scanner.Scanner {
	cfg := t.scan
	cfg.Filters = append(append([]string(nil), t.scan.Filters...), target.Filters...)
	cfg.Exclude = append(append([]string(nil), t.scan.Exclude...), target.Exclude...)

	s := scanner.NewScanner(t.ext, cfg, t.log.With("target", target.Name))
	s.SetProgress(t.progress)
	return s
}

// Extract returns the translations used by the target's sources.
func (t *Tool) Extract(ctx context.Context, target Target) (extractor.TranslationMap, error) {
	translations, _, err := t.scannerFor(target).ExtractDirectories(ctx, target.Roots)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", target.Name, err)
	}
	return translations, nil
}

// ExtractDirectory extracts every source file under dir with the base
// scanner configuration.
func (t *Tool) ExtractDirectory(ctx context.Context, dir string) (*scanner.RootResult, error) {
	return t.scannerFor(Target{Name: filepath.Base(dir)}).ExtractRoot(ctx, dir)
}

// Diff compares the target's sources against its base dictionary.
func (t *Tool) Diff(ctx context.Context, target Target) (dictionary.Diff, error) {
	base, err := dictionary.Load(target.BaseFile())
	if err != nil {
		return dictionary.Diff{}, err
	}
	fresh, err := t.Extract(ctx, target)
	if err != nil {
		return dictionary.Diff{}, err
	}
	return dictionary.Compare(base, fresh), nil
}

// Check reports the differences of every target and returns
// ErrChangesFound if any target changed.
func (t *Tool) Check(ctx context.Context, targets ...Target) error {
	changed := false
	for _, target := range targets {
		diff, err := t.Diff(ctx, target)
		if err != nil {
			return err
		}
		t.printDiff(target, diff)
		changed = changed || diff.Changed()
	}

	if changed {
		fmt.Fprintln(t.out, "Changes found")
		return ErrChangesFound
	}
	return nil
}

// Update brings the target's base dictionary in line with its sources and
// writes it back sorted.
func (t *Tool) Update(ctx context.Context, target Target) (dictionary.UpdateResult, error) {
	path := target.BaseFile()
	base, err := dictionary.Load(path)
	if err != nil {
		return dictionary.UpdateResult{}, err
	}
	fresh, err := t.Extract(ctx, target)
	if err != nil {
		return dictionary.UpdateResult{}, err
	}

	result := dictionary.Update(base, fresh, t.refresh)
	t.printDiff(target, result.Diff)
	for _, key := range result.Refreshed {
		fmt.Fprintf(t.out, "Updated in %s: %s\n", target.Name, key)
	}

	if err := base.Save(path); err != nil {
		return result, err
	}

	t.log.Info("base dictionary updated",
		"target", target.Name,
		"file", path,
		"added", len(result.Added),
		"removed", len(result.Removed),
		"refreshed", len(result.Refreshed))
	return result, nil
}

func (t *Tool) printDiff(target Target, diff dictionary.Diff) {
	for _, key := range diff.Removed {
		fmt.Fprintf(t.out, "Removed from %s: %s\n", target.Name, key)
	}
	for _, key := range diff.Added {
		fmt.Fprintf(t.out, "Added to %s: %s\n", target.Name, key)
	}
}

// Combine merges the input dictionaries into output, later inputs winning.
func (t *Tool) Combine(output string, inputs []string) error {
	if len(inputs) < 2 {
		return ErrNotEnoughInputs
	}
	combined, err := dictionary.CombineFiles(inputs)
	if err != nil {
		return err
	}
	t.log.Debug("combined dictionaries", "inputs", len(inputs), "keys", combined.Len())
	return combined.Save(output)
}

// Sort rewrites input sorted into output.
func (t *Tool) Sort(input, output string) error {
	return dictionary.SortFile(input, output)
}

// Split partitions each combined input between the webapp and mobile
// translations directories, keeping only the keys each codebase uses. The
// output file name is the input's base name.
func (t *Tool) Split(ctx context.Context, targets Targets, inputs []string) error {
	webappKeys, err := t.Extract(ctx, targets.Webapp)
	if err != nil {
		return err
	}
	mobileKeys, err := t.Extract(ctx, targets.Mobile)
	if err != nil {
		return err
	}

	for _, input := range inputs {
		webappOut := targets.Webapp.TranslationFile(input)
		mobileOut := targets.Mobile.TranslationFile(input)
		if err := dictionary.SplitFile(input, webappOut, mobileOut, webappKeys, mobileKeys); err != nil {
			return fmt.Errorf("failed to split %s: %w", input, err)
		}
		t.log.Debug("split dictionary", "input", input, "webapp", webappOut, "mobile", mobileOut)
	}
	return nil
}

// Clean removes the empty messages of one translation file in every
// target. The base dictionary and non-JSON names are left alone.
func (t *Tool) Clean(file string, opts CleanOptions, targets ...Target) error {
	if !isTranslationFile(file) {
		t.log.Debug("not a translation file, skipping", "file", file)
		return nil
	}

	found := false
	for _, target := range targets {
		result, err := dictionary.CleanFile(target.TranslationFile(file), opts.DryRun)
		if err != nil {
			return err
		}
		if result.Empty > 0 {
			fmt.Fprintln(t.out, result)
			found = true
		}
	}
	return t.cleanOutcome(found, opts)
}

// CleanAll removes the empty messages of every translation file in every
// target, reporting per directory.
func (t *Tool) CleanAll(opts CleanOptions, targets ...Target) error {
	found := false
	for _, target := range targets {
		results, err := dictionary.CleanDir(target.TranslationsDir, opts.DryRun)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			continue
		}
		found = true
		fmt.Fprintln(t.out, target.TranslationsDir)
		for _, r := range results {
			fmt.Fprintln(t.out, r)
		}
	}
	return t.cleanOutcome(found, opts)
}

// CleanEmpty removes the empty messages of the base dictionary.
func (t *Tool) CleanEmpty(opts CleanOptions, targets ...Target) error {
	found := false
	for _, target := range targets {
		result, err := dictionary.CleanFile(target.BaseFile(), opts.DryRun)
		if err != nil {
			return err
		}
		if result.Empty > 0 {
			fmt.Fprintln(t.out, result)
			found = true
		}
	}
	return t.cleanOutcome(found, opts)
}

func (t *Tool) cleanOutcome(found bool, opts CleanOptions) error {
	if found && opts.Check {
		return ErrEmptyTranslations
	}
	return nil
}

// EmptyKeys returns the base dictionary keys of target with an empty
// message, in file order.
func (t *Tool) EmptyKeys(target Target) ([]string, error) {
	base, err := dictionary.Load(target.BaseFile())
	if err != nil {
		return nil, err
	}
	return base.EmptyKeys(), nil
}

// CheckEmptySource reports base dictionary keys that have no message and
// returns ErrEmptyTranslations if there are any.
func (t *Tool) CheckEmptySource(targets ...Target) error {
	found := false
	for _, target := range targets {
		keys, err := t.EmptyKeys(target)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintf(t.out, "Empty translation in %s: %s\n", target.Name, key)
		}
		found = found || len(keys) > 0
	}
	if found {
		return ErrEmptyTranslations
	}
	return nil
}

func isTranslationFile(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), ".json") && base != dictionary.BaseFile
}
