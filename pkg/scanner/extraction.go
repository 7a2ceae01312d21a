package scanner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mattermost/mmjstool/pkg/extractor"
	"github.com/mattermost/mmjstool/pkg/util"
)

// FileExtractor is the per-file extraction step used by ExtractAll.
type FileExtractor interface {
	ExtractFile(path string) (extractor.TranslationMap, error)
}

// ExtractAll extracts files on a pool of workers. Results are returned in
// the order of files, whatever order the workers finish in.
//
// Once a file fails to parse, files after it in the slice are not extracted
// and come back with Skipped set; files before it are always extracted. A
// cancelled ctx skips every file not yet started.
func ExtractAll(
	ctx context.Context,
	files []string,
	ext FileExtractor,
	workers int,
	progress ProgressCallback,
	logger *slog.Logger,
) []FileResult {
	if len(files) == 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	numWorkers := util.GetOptimalPoolSizeWithOverride(workers)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	results := make([]FileResult, len(files))

	// firstFailure holds the lowest index that failed to parse.
	var firstFailure atomic.Int64
	firstFailure.Store(int64(len(files)))

	jobs := make(chan int, numWorkers*2)
	done := make(chan int, numWorkers)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := files[i]
				if int64(i) > firstFailure.Load() || ctx.Err() != nil {
					results[i] = FileResult{Path: path, Skipped: true}
					done <- i
					continue
				}

				translations, err := ext.ExtractFile(path)
				results[i] = FileResult{Path: path, Translations: translations, Err: err}

				var extractionErr *extractor.ExtractionError
				if errors.As(err, &extractionErr) {
					for {
						current := firstFailure.Load()
						if int64(i) >= current || firstFailure.CompareAndSwap(current, int64(i)) {
							break
						}
					}
				}
				done <- i
			}
		}()
	}

	go func() {
		for i := range files {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(done)
	}()

	completed := 0
	for i := range done {
		completed++
		r := results[i]
		switch {
		case r.Skipped:
		case r.Err != nil:
			logger.Debug("file extraction failed", "file", r.Path, "error", r.Err)
		default:
			logger.Debug("extracted file", "file", r.Path, "keys", len(r.Translations))
		}
		if progress != nil {
			progress(completed, len(files), r.Path)
		}
	}

	return results
}

// MergeResults merges per-file results in order. It stops at the first file
// that failed to parse and returns that failure along with everything merged
// before it. Read failures are returned as errors, as are conflicts under
// ConflictError.
func MergeResults(results []FileResult, policy ConflictPolicy) (extractor.TranslationMap, *extractor.ExtractionError, error) {
	merged := make(extractor.TranslationMap)
	origin := make(map[string]string)

	for _, r := range results {
		if r.Err != nil {
			var extractionErr *extractor.ExtractionError
			if errors.As(r.Err, &extractionErr) {
				return merged, extractionErr, nil
			}
			return merged, nil, r.Err
		}
		if r.Skipped {
			continue
		}
		if err := mergeInto(merged, origin, r.Translations, r.Path, policy); err != nil {
			return merged, nil, err
		}
	}

	return merged, nil, nil
}

// mergeInto copies src into dst, recording in origin which file last set
// each key.
func mergeInto(dst extractor.TranslationMap, origin map[string]string, src extractor.TranslationMap, file string, policy ConflictPolicy) error {
	for _, key := range src.Keys() {
		msg := src[key]
		prev, exists := dst[key]
		if exists && policy == ConflictError {
			switch {
			case prev == msg || msg == "":
				continue
			case prev != "":
				return &ConflictKeyError{
					Key:          key,
					FirstFile:    origin[key],
					FirstMessage: prev,
					File:         file,
					Message:      msg,
				}
			}
		}
		dst[key] = msg
		origin[key] = file
	}
	return nil
}
