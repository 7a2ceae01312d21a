package dictionary

import (
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Less orders keys case-insensitively, ascending. Keys equal ignoring case
// fall back to byte order so the result never depends on input order.
func Less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// SortKeys sorts keys in place with Less.
func SortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool { return Less(keys[i], keys[j]) })
}

// Sort reorders the dictionary by key. Only the top level is ordered;
// values are strings.
func (d *Dictionary) Sort() {
	keys := d.Keys()
	SortKeys(keys)

	sorted := orderedmap.New[string, string](orderedmap.WithCapacity[string, string](len(keys)))
	for _, k := range keys {
		v, _ := d.entries.Get(k)
		sorted.Set(k, v)
	}
	d.entries = sorted
}

// Sorted returns a sorted copy.
func (d *Dictionary) Sorted() *Dictionary {
	c := d.Clone()
	c.Sort()
	return c
}

// IsSorted reports whether the dictionary is already in key order.
func (d *Dictionary) IsSorted() bool {
	keys := d.Keys()
	return sort.SliceIsSorted(keys, func(i, j int) bool { return Less(keys[i], keys[j]) })
}

// SortFile sorts the dictionary at input and writes it to output.
func SortFile(input, output string) error {
	d, err := Load(input)
	if err != nil {
		return err
	}
	d.Sort()
	return d.Save(output)
}
