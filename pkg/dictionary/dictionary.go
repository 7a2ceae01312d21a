// Package dictionary reads, reconciles and writes translation dictionaries:
// flat JSON objects mapping translation keys to messages.
package dictionary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrNotObject is returned when a dictionary file is valid JSON but not a
// flat object of strings.
var ErrNotObject = errors.New("dictionary must be a JSON object of strings")

// Dictionary is an ordered key to message mapping. Order is the file order
// after Load and the case-insensitive key order after Sort.
type Dictionary struct {
	entries *orderedmap.OrderedMap[string, string]
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{entries: orderedmap.New[string, string]()}
}

// FromMap builds a sorted dictionary from m.
func FromMap(m map[string]string) *Dictionary {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	SortKeys(keys)

	d := &Dictionary{entries: orderedmap.New[string, string](orderedmap.WithCapacity[string, string](len(m)))}
	for _, k := range keys {
		d.entries.Set(k, m[k])
	}
	return d
}

// Load reads and parses the dictionary at path.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a strict JSON object whose values are all strings. Key
// order is preserved; a repeated key keeps its first position and its last
// value.
func Parse(data []byte) (*Dictionary, error) {
	if !json.Valid(data) {
		// Re-run the decoder for a positioned error message.
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return nil, errors.New("invalid JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	d := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		value, ok := valTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: value of %q is not a string", ErrNotObject, key)
		}
		d.entries.Set(key, value)
	}
	return d, nil
}

// Save writes the dictionary to path in the canonical format.
func (d *Dictionary) Save(path string) error {
	if err := os.WriteFile(path, d.Marshal(), 0644); err != nil {
		return fmt.Errorf("failed to write dictionary: %w", err)
	}
	return nil
}

// Get returns the message for key.
func (d *Dictionary) Get(key string) (string, bool) {
	return d.entries.Get(key)
}

// Has reports whether key is present.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.entries.Get(key)
	return ok
}

// Set adds or replaces key. A new key is appended at the end.
func (d *Dictionary) Set(key, message string) {
	d.entries.Set(key, message)
}

// Delete removes key and reports whether it was present.
func (d *Dictionary) Delete(key string) bool {
	_, ok := d.entries.Delete(key)
	return ok
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return d.entries.Len()
}

// Keys returns the keys in dictionary order.
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, d.entries.Len())
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// ToMap returns an unordered copy.
func (d *Dictionary) ToMap() map[string]string {
	m := make(map[string]string, d.entries.Len())
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}
	return m
}

// Clone returns an independent copy with the same order.
func (d *Dictionary) Clone() *Dictionary {
	c := &Dictionary{entries: orderedmap.New[string, string](orderedmap.WithCapacity[string, string](d.entries.Len()))}
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		c.entries.Set(pair.Key, pair.Value)
	}
	return c
}

// Marshal renders the dictionary as pretty-printed JSON with two-space
// indentation and a trailing newline. Only quotes, backslashes and control
// characters are escaped; HTML characters are written as is.
func (d *Dictionary) Marshal() []byte {
	if d.entries.Len() == 0 {
		return []byte("{}\n")
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		buf.WriteString("  ")
		writeString(&buf, pair.Key)
		buf.WriteString(": ")
		writeString(&buf, pair.Value)
		if pair.Next() != nil {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

const hexDigits = "0123456789abcdef"

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				buf.WriteString(`\"`)
			case '\\':
				buf.WriteString(`\\`)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			case '\b':
				buf.WriteString(`\b`)
			case '\f':
				buf.WriteString(`\f`)
			default:
				if c < 0x20 {
					buf.WriteString(`\u00`)
					buf.WriteByte(hexDigits[c>>4])
					buf.WriteByte(hexDigits[c&0xf])
				} else {
					buf.WriteByte(c)
				}
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf.WriteString(`\ufffd`)
		} else {
			buf.WriteString(s[i : i+size])
		}
		i += size
	}
	buf.WriteByte('"')
}
