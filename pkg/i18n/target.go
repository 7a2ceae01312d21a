// Package i18n implements the translation workflows of the webapp and
// mobile codebases: extraction against the base dictionary, checks, and
// maintenance of the per-language dictionaries.
package i18n

import (
	"fmt"
	"path/filepath"

	"github.com/mattermost/mmjstool/pkg/dictionary"
)

// Target names.
const (
	Webapp = "webapp"
	Mobile = "mobile"
)

// Target describes one codebase: where its sources live and where its
// dictionaries are stored.
type Target struct {
	Name string
	// Dir is the codebase root.
	Dir string
	// Roots are the source directories to extract from.
	Roots []string
	// Filters are root-relative path substrings to skip.
	Filters []string
	// Exclude holds extra doublestar globs to skip.
	Exclude []string
	// TranslationsDir holds en.json and the translated dictionaries.
	TranslationsDir string
}

// webappFilters are the paths the webapp build never ships.
var webappFilters = []string{
	"dist",
	"node_modules",
	"non_npm_dependencies",
	"tests",
	"components/gif_picker/static/gif.worker.js",
}

// WebappTarget returns the webapp codebase rooted at dir.
func WebappTarget(dir string, exclude []string) Target {
	return Target{
		Name:            Webapp,
		Dir:             dir,
		Roots:           []string{dir},
		Filters:         append([]string(nil), webappFilters...),
		Exclude:         exclude,
		TranslationsDir: filepath.Join(dir, "i18n"),
	}
}

// MobileTarget returns the mobile codebase rooted at dir.
func MobileTarget(dir string, exclude []string) Target {
	return Target{
		Name:            Mobile,
		Dir:             dir,
		Roots:           []string{filepath.Join(dir, "app"), filepath.Join(dir, "share_extension")},
		Exclude:         exclude,
		TranslationsDir: filepath.Join(dir, "assets", "base", "i18n"),
	}
}

// BaseFile returns the path of the source-language dictionary.
func (t Target) BaseFile() string {
	return t.TranslationFile(dictionary.BaseFile)
}

// TranslationFile returns the path of the named dictionary in the
// translations directory.
func (t Target) TranslationFile(name string) string {
	return filepath.Join(t.TranslationsDir, filepath.Base(name))
}

// Targets is the pair of codebases the tool manages.
type Targets struct {
	Webapp Target
	Mobile Target
}

// NewTargets builds both targets from their directories.
func NewTargets(webappDir, mobileDir string, webappExclude, mobileExclude []string) Targets {
	return Targets{
		Webapp: WebappTarget(webappDir, webappExclude),
		Mobile: MobileTarget(mobileDir, mobileExclude),
	}
}

// All returns webapp then mobile.
func (ts Targets) All() []Target {
	return []Target{ts.Webapp, ts.Mobile}
}

// Lookup resolves a target by name.
func (ts Targets) Lookup(name string) (Target, error) {
	switch name {
	case Webapp:
		return ts.Webapp, nil
	case Mobile:
		return ts.Mobile, nil
	default:
		return Target{}, fmt.Errorf("unknown target %q (valid: %s, %s)", name, Webapp, Mobile)
	}
}
