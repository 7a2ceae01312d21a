package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeParams(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		wantKeys map[string]bool
		wantSkip map[string]bool
	}{
		{
			name:     "nil map returns empty",
			input:    nil,
			wantKeys: map[string]bool{},
		},
		{
			name:     "short string passes through",
			input:    map[string]any{"target": "webapp"},
			wantKeys: map[string]bool{"target": true},
		},
		{
			name:     "long string replaced with _len key",
			input:    map[string]any{"directory": strings.Repeat("a", 200)},
			wantKeys: map[string]bool{"directory_len": true},
			wantSkip: map[string]bool{"directory": true},
		},
		{
			name:     "non-strings pass through",
			input:    map[string]any{"dry_run": true, "extra": nil},
			wantKeys: map[string]bool{"dry_run": true, "extra": true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := sanitizeParams(tc.input)
			assert.Len(t, out, len(tc.wantKeys))
			for k := range tc.wantKeys {
				assert.Contains(t, out, k)
			}
			for k := range tc.wantSkip {
				assert.NotContains(t, out, k)
			}
		})
	}
}

func TestResponseBytes(t *testing.T) {
	assert.Zero(t, responseBytes(nil))

	result := mcp.NewToolResultText(`{"ok":true}`)
	expected, err := json.Marshal(result.Content)
	require.NoError(t, err)
	assert.Equal(t, len(expected), responseBytes(result))
}

// logLines decodes the JSON log records written to buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	s := &Server{logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	mw := s.loggingMiddleware()

	ok := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("done"), nil
	})
	toolErr := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("bad target"), nil
	})
	failed := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	})

	result, err := ok(context.Background(), makeRequest("check_translations", map[string]any{"target": "webapp"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	_, err = toolErr(context.Background(), makeRequest("check_translations", nil))
	require.NoError(t, err)

	_, err = failed(context.Background(), makeRequest("extract_translations", nil))
	assert.EqualError(t, err, "boom")

	lines := logLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "check_translations", lines[0]["tool"])
	assert.Equal(t, map[string]any{"target": "webapp"}, lines[0]["params"])
	assert.Contains(t, lines[0], "duration_ms")
	assert.Greater(t, lines[0]["response_bytes"], float64(0))

	assert.Equal(t, "WARN", lines[1]["level"])

	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.Equal(t, "boom", lines[2]["error"])
	assert.Equal(t, float64(0), lines[2]["response_bytes"])
}
