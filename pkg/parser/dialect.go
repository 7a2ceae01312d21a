package parser

import (
	"path/filepath"
	"strings"
)

// Dialect identifies the grammar a source file is parsed with.
type Dialect int

const (
	// DialectJavaScript is the JavaScript grammar with JSX enabled (.js, .jsx).
	DialectJavaScript Dialect = iota
	// DialectTypeScript is plain TypeScript without JSX (.ts).
	DialectTypeScript
	// DialectTSX is TypeScript with JSX (.tsx).
	DialectTSX
	// DialectUnknown marks an unsupported extension.
	DialectUnknown
)

// String returns the string representation of the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectJavaScript:
		return "javascript"
	case DialectTypeScript:
		return "typescript"
	case DialectTSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// DetectDialect returns the primary dialect for a file path based on its
// extension. Returns DialectUnknown if the extension is not recognized.
func DetectDialect(filePath string) Dialect {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return DialectJavaScript
	case ".ts", ".mts", ".cts":
		return DialectTypeScript
	case ".tsx":
		return DialectTSX
	default:
		return DialectUnknown
	}
}

// DialectsFor returns the dialects to try, in order, for a file path.
//
// JavaScript sources get a second attempt with the TSX grammar. Older
// sources carry Flow type annotations, which the JavaScript grammar rejects
// but the TypeScript grammar accepts in nearly every form that appears in
// practice.
func DialectsFor(filePath string) []Dialect {
	switch d := DetectDialect(filePath); d {
	case DialectJavaScript:
		return []Dialect{DialectJavaScript, DialectTSX}
	case DialectUnknown:
		return nil
	default:
		return []Dialect{d}
	}
}

// ParseDialectString converts a dialect name to a Dialect.
// Returns DialectUnknown if the string is not recognized.
func ParseDialectString(s string) Dialect {
	switch strings.ToLower(s) {
	case "javascript", "js", "jsx":
		return DialectJavaScript
	case "typescript", "ts":
		return DialectTypeScript
	case "tsx":
		return DialectTSX
	default:
		return DialectUnknown
	}
}

// SupportedDialects returns all parseable dialects.
func SupportedDialects() []Dialect {
	return []Dialect{DialectJavaScript, DialectTypeScript, DialectTSX}
}
