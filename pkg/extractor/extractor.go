package extractor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattermost/mmjstool/pkg/ast"
	"github.com/mattermost/mmjstool/pkg/parser"
	"github.com/mattermost/mmjstool/pkg/util"
)

// ErrUnsupportedFile is wrapped by ExtractionError for paths whose extension
// has no dialect.
var ErrUnsupportedFile = errors.New("unsupported file extension")

// Options configures an Extractor.
type Options struct {
	// Rules is the JSX component table. Nil selects DefaultRuleSet().
	Rules *RuleSet

	// TolerateSyntaxErrors keeps matches from a partially parsed file
	// instead of failing it. The syntax error is logged at Warn.
	TolerateSyntaxErrors bool

	Logger *slog.Logger
}

// Extractor parses single files and returns their translations. It is safe
// for concurrent use; each call parses with a pooled parser and matches with
// its own Matcher.
//
// Usage:
//
//	ext := NewExtractor(parserManager, Options{})
//	translations, err := ext.ExtractFile("components/about.jsx")
//	var extractionErr *ExtractionError
//	if errors.As(err, &extractionErr) {
//	    // extractionErr.Line, extractionErr.Column
//	}
type Extractor struct {
	parserManager *parser.ParserManager
	rules         *RuleSet
	tolerant      bool
	logger        *slog.Logger
}

// NewExtractor creates an Extractor backed by pm.
func NewExtractor(pm *parser.ParserManager, opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRuleSet()
	}

	return &Extractor{
		parserManager: pm,
		rules:         rules,
		tolerant:      opts.TolerateSyntaxErrors,
		logger:        logger,
	}
}

// Rules returns the component table in use.
func (e *Extractor) Rules() *RuleSet {
	return e.rules
}

// ExtractFile reads path and extracts its translations. Read failures are
// returned as plain errors; parse failures as *ExtractionError.
func (e *Extractor) ExtractFile(path string) (TranslationMap, error) {
	src, err := util.OpenSource(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return e.ExtractSource(path, src.Bytes())
}

// ExtractSource extracts translations from source, choosing the grammar from
// path's extension.
//
// JavaScript files that fail to parse are retried with the TSX grammar. If
// every attempt fails, the error of the first attempt is reported.
func (e *Extractor) ExtractSource(path string, source []byte) (TranslationMap, error) {
	dialects := parser.DialectsFor(path)
	if len(dialects) == 0 {
		return nil, &ExtractionError{Path: path, Err: ErrUnsupportedFile}
	}

	var firstErr *ExtractionError
	var firstPartial TranslationMap

	for _, dialect := range dialects {
		result, syntaxErr, err := e.extract(source, dialect)
		if err != nil {
			return nil, &ExtractionError{Path: path, Err: err}
		}
		if syntaxErr == nil {
			if firstErr != nil {
				e.logger.Debug("parsed with fallback dialect",
					"file", path,
					"dialect", dialect.String())
			}
			return result, nil
		}
		if firstErr == nil {
			firstErr = &ExtractionError{
				Path:   path,
				Line:   syntaxErr.Line,
				Column: syntaxErr.Column,
				Err:    syntaxErr,
			}
			firstPartial = result
		}
	}

	if e.tolerant {
		e.logger.Warn("extracting from file with syntax errors",
			"file", path,
			"line", firstErr.Line,
			"column", firstErr.Column)
		return firstPartial, nil
	}
	return nil, firstErr
}

func (e *Extractor) extract(source []byte, dialect parser.Dialect) (TranslationMap, *parser.SyntaxError, error) {
	tree, err := e.parserManager.Parse(source, dialect)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse as %s: %w", dialect, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	result := NewMatcher(e.rules).Match(ast.Wrap(root, source))
	return result, parser.FindSyntaxError(root, source), nil
}
