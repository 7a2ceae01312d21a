// Package extractor finds translatable strings in JavaScript and TypeScript
// sources: calls such as formatMessage({id, defaultMessage}), t(id) and
// defineMessages({...}), and JSX components configured in a RuleSet.
package extractor

import (
	"fmt"
	"sort"
)

// TranslationMap maps a translation key to its default message. An empty
// message means the key is used but its text is supplied elsewhere.
type TranslationMap map[string]string

// Merge copies every entry of other into m; other wins on collisions.
func (m TranslationMap) Merge(other TranslationMap) {
	for k, v := range other {
		m[k] = v
	}
}

// Keys returns the keys in lexical order.
func (m TranslationMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ExtractionError reports a file that could not be parsed. Line and Column
// are 1-based and zero when the location is unknown.
type ExtractionError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("unable to parse %s (line %d, column %d): %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("unable to parse %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
