package util

import "runtime"

// GetOptimalPoolSize returns the worker count used for parsing.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Tree-sitter parsing runs in CGO, so two workers per core keep the CPUs busy
// while goroutines block in C. The cap bounds the number of live parsers per
// dialect.
//
// Used for:
//   - Parser pool size (parsers per dialect)
//   - Directory extraction workers
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when it is positive,
// otherwise GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
