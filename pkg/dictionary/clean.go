package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BaseFile is the source-language dictionary every other file translates.
const BaseFile = "en.json"

// EmptyKeys returns the keys with an empty message, in dictionary order.
func (d *Dictionary) EmptyKeys() []string {
	var keys []string
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == "" {
			keys = append(keys, pair.Key)
		}
	}
	return keys
}

// RemoveEmpty deletes every key with an empty message, keeping the order of
// the rest, and returns how many were removed.
func (d *Dictionary) RemoveEmpty() int {
	empty := d.EmptyKeys()
	for _, key := range empty {
		d.Delete(key)
	}
	return len(empty)
}

// CleanResult reports the cleanup of one file.
type CleanResult struct {
	File  string `json:"file"`
	Empty int    `json:"empty"`
}

func (r CleanResult) String() string {
	return fmt.Sprintf("%s has %d empty translations", filepath.Base(r.File), r.Empty)
}

// CleanFile removes empty messages from the dictionary at path and rewrites
// it unless dryRun is set or nothing was empty. The file keeps its key order.
func CleanFile(path string, dryRun bool) (CleanResult, error) {
	d, err := Load(path)
	if err != nil {
		return CleanResult{}, err
	}

	result := CleanResult{File: path, Empty: d.RemoveEmpty()}
	if result.Empty == 0 || dryRun {
		return result, nil
	}
	if err := d.Save(path); err != nil {
		return result, err
	}
	return result, nil
}

// TranslationFiles lists the translation dictionaries in dir: every .json
// file except the base file, in name order.
func TranslationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".json") || name == BaseFile {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// CleanDir runs CleanFile on every translation file in dir and returns the
// files that had empty messages.
func CleanDir(dir string, dryRun bool) ([]CleanResult, error) {
	files, err := TranslationFiles(dir)
	if err != nil {
		return nil, err
	}

	var results []CleanResult
	for _, f := range files {
		r, err := CleanFile(f, dryRun)
		if err != nil {
			return results, err
		}
		if r.Empty > 0 {
			results = append(results, r)
		}
	}
	return results, nil
}
