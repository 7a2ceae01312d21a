package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/mattermost/mmjstool/pkg/util"
	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ErrClosed is returned by Parse after Close.
var ErrClosed = errors.New("parser manager is closed")

// ParserManager manages tree-sitter parsers for the JavaScript, TypeScript
// and TSX dialects with lazy initialization and thread-safe concurrent access.
//
// Memory Management:
//   - Parser pools are created lazily on first use per dialect
//   - ParserManager owns parser pool instances and must be closed via Close()
//   - Callers own Tree instances and must call tree.Close() after use
//
// Thread Safety:
//   - Multiple goroutines can parse the same dialect simultaneously, up to the
//     pool size (util.GetOptimalPoolSize())
//   - Pool creation is synchronized with double-checked locking
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse([]byte("formatMessage({id: 'a'})"), DialectJavaScript)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pools    map[Dialect]*parserPool
	poolSize int
	closed   bool

	// mutex provides thread-safe access to pools map and stats
	mutex sync.RWMutex

	logger *slog.Logger

	stats struct {
		parsesCalled int
	}
}

// NewParserManager creates a new ParserManager sized for the current machine.
// The returned manager must be closed via Close() to free resources.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithSize(logger, 0)
}

// NewParserManagerWithSize creates a ParserManager whose pools hold at most
// poolSize parsers each. A non-positive poolSize selects the CPU-based default.
func NewParserManagerWithSize(logger *slog.Logger, poolSize int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		pools:    make(map[Dialect]*parserPool),
		poolSize: util.GetOptimalPoolSizeWithOverride(poolSize),
		logger:   logger,
	}
}

// Parse parses source with the given dialect's grammar.
//
// A tree is returned even when the source has syntax errors; use
// FindSyntaxError to decide whether the tree is usable. The returned Tree
// MUST be closed by the caller.
func (pm *ParserManager) Parse(source []byte, dialect Dialect) (*ts.Tree, error) {
	if dialect == DialectUnknown {
		return nil, fmt.Errorf("cannot parse unknown dialect")
	}

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	pm.mutex.Unlock()

	pool, err := pm.getOrCreatePool(dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", dialect, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}

	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	if tree.RootNode().HasError() {
		pm.logger.Debug("parse tree contains errors", "dialect", dialect.String())
	}

	return tree, nil
}

// ParseFile parses source with the primary dialect for filePath.
// The returned Tree MUST be closed by the caller.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	dialect := DetectDialect(filePath)
	if dialect == DialectUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return pm.Parse(source, dialect)
}

// Close releases all parser pool resources. After Close the manager cannot
// be used.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pm.closed {
		return nil
	}
	pm.closed = true

	created := 0
	for _, pool := range pm.pools {
		created += pool.getCreatedCount()
		pool.close()
	}
	pm.pools = make(map[Dialect]*parserPool)

	pm.logger.Debug("closed parser manager",
		"parsers_created", created,
		"parses_called", pm.stats.parsesCalled)

	return nil
}

// getOrCreatePool returns an existing parser pool or creates a new one.
func (pm *ParserManager) getOrCreatePool(dialect Dialect) (*parserPool, error) {
	pm.mutex.RLock()
	pool, exists := pm.pools[dialect]
	closed := pm.closed
	pm.mutex.RUnlock()

	if closed {
		return nil, ErrClosed
	}
	if exists {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pm.closed {
		return nil, ErrClosed
	}
	if pool, exists = pm.pools[dialect]; exists {
		return pool, nil
	}

	langPtr, err := LanguagePointer(dialect)
	if err != nil {
		return nil, err
	}

	pool = newParserPool(dialect, langPtr, pm.poolSize, pm.logger)
	pm.pools[dialect] = pool

	pm.logger.Debug("created new parser pool",
		"dialect", dialect.String(),
		"maxSize", pm.poolSize)

	return pool, nil
}

// LanguagePointer returns the tree-sitter grammar for a dialect.
func LanguagePointer(dialect Dialect) (unsafe.Pointer, error) {
	switch dialect {
	case DialectJavaScript:
		return ts_javascript.Language(), nil
	case DialectTypeScript:
		return ts_typescript.LanguageTypescript(), nil
	case DialectTSX:
		return ts_typescript.LanguageTSX(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect.String())
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	totalParsers := 0
	for _, pool := range pm.pools {
		totalParsers += pool.getCreatedCount()
	}

	return ParserStats{
		ParsersCreated: totalParsers,
		ParsesCalled:   pm.stats.parsesCalled,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	// ParsersCreated is the total number of parser instances created
	ParsersCreated int

	// ParsesCalled is the total number of Parse() calls
	ParsesCalled int
}
