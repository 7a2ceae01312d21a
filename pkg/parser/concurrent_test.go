package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConcurrentParsing checks that many goroutines can share one manager
// across dialects without races or deadlocks.
func TestConcurrentParsing(t *testing.T) {
	manager := NewParserManagerWithSize(testLogger(), 4)
	defer manager.Close()

	const numGoroutines = 64
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	errChan := make(chan error, numGoroutines)
	dialects := SupportedDialects()
	source := []byte("const x = formatMessage({id: 'k', defaultMessage: 'm'});")

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			tree, err := manager.Parse(source, dialects[id%len(dialects)])
			if err != nil {
				errChan <- err
				return
			}
			if tree.RootNode().HasError() {
				errChan <- assert.AnError
			}
			tree.Close()
		}(i)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	assert.Empty(t, errs)

	stats := manager.GetStats()
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
	assert.LessOrEqual(t, stats.ParsersCreated, 4*len(dialects), "pool size must bound parser creation")
}
