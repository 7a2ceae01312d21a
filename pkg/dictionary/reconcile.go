package dictionary

import (
	"errors"
	"fmt"
)

// Diff is the key-level difference between a persisted dictionary and a
// fresh extraction. Both lists are sorted with Less.
type Diff struct {
	// Added keys were extracted but are missing from the dictionary.
	Added []string `json:"added"`
	// Removed keys are in the dictionary but no longer extracted.
	Removed []string `json:"removed"`
}

// Changed reports whether any key was added or removed.
func (d Diff) Changed() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// Compare computes the key difference between persisted and fresh.
// Messages are not compared.
func Compare(persisted *Dictionary, fresh map[string]string) Diff {
	var diff Diff
	for _, key := range persisted.Keys() {
		if _, ok := fresh[key]; !ok {
			diff.Removed = append(diff.Removed, key)
		}
	}
	for key := range fresh {
		if !persisted.Has(key) {
			diff.Added = append(diff.Added, key)
		}
	}
	SortKeys(diff.Removed)
	SortKeys(diff.Added)
	return diff
}

// UpdateResult describes an applied update.
type UpdateResult struct {
	Diff
	// Refreshed lists keys whose message was replaced by a fresh default.
	Refreshed []string `json:"refreshed,omitempty"`
}

// Update applies fresh to d in place: removed keys are deleted, added keys
// are inserted with their extracted message, and d is sorted.
//
// Existing keys keep their persisted message unless refresh is set, in which
// case a differing non-empty extracted message replaces it.
func Update(d *Dictionary, fresh map[string]string, refresh bool) UpdateResult {
	result := UpdateResult{Diff: Compare(d, fresh)}

	for _, key := range result.Removed {
		d.Delete(key)
	}
	for _, key := range result.Added {
		d.Set(key, fresh[key])
	}
	if refresh {
		for _, key := range d.Keys() {
			msg := fresh[key]
			if current, _ := d.Get(key); msg != "" && msg != current {
				d.Set(key, msg)
				result.Refreshed = append(result.Refreshed, key)
			}
		}
		SortKeys(result.Refreshed)
	}

	d.Sort()
	return result
}

// Combine unions dictionaries; later ones win on shared keys. The result is
// sorted.
func Combine(dicts ...*Dictionary) *Dictionary {
	combined := New()
	for _, d := range dicts {
		for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
			combined.Set(pair.Key, pair.Value)
		}
	}
	combined.Sort()
	return combined
}

// CombineFiles loads and combines the dictionaries at paths, in order.
func CombineFiles(paths []string) (*Dictionary, error) {
	if len(paths) == 0 {
		return nil, errors.New("no input files")
	}
	dicts := make([]*Dictionary, 0, len(paths))
	for _, path := range paths {
		d, err := Load(path)
		if err != nil {
			return nil, err
		}
		dicts = append(dicts, d)
	}
	return Combine(dicts...), nil
}

// Split partitions a combined dictionary by two extracted key sets. A key
// goes to every side whose set contains it; keys in neither set, and keys
// missing from combined, are dropped. Both results are sorted.
func Split(combined *Dictionary, webappKeys, mobileKeys map[string]string) (webapp, mobile *Dictionary) {
	webapp, mobile = New(), New()
	for pair := combined.entries.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := webappKeys[pair.Key]; ok {
			webapp.Set(pair.Key, pair.Value)
		}
		if _, ok := mobileKeys[pair.Key]; ok {
			mobile.Set(pair.Key, pair.Value)
		}
	}
	webapp.Sort()
	mobile.Sort()
	return webapp, mobile
}

// SplitFile splits the combined dictionary at input and writes the two
// halves.
func SplitFile(input, webappOutput, mobileOutput string, webappKeys, mobileKeys map[string]string) error {
	combined, err := Load(input)
	if err != nil {
		return err
	}
	webapp, mobile := Split(combined, webappKeys, mobileKeys)
	if err := webapp.Save(webappOutput); err != nil {
		return fmt.Errorf("webapp: %w", err)
	}
	if err := mobile.Save(mobileOutput); err != nil {
		return fmt.Errorf("mobile: %w", err)
	}
	return nil
}
