package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattermost/mmjstool/pkg/extractor"
	"github.com/mattermost/mmjstool/pkg/i18n"
	"github.com/mattermost/mmjstool/pkg/parser"
)

// --- helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// testServer builds a server over a webapp and a mobile codebase.
func testServer(t *testing.T) (*Server, i18n.Targets) {
	t.Helper()
	webappDir := t.TempDir()
	mobileDir := t.TempDir()

	writeFile(t, webappDir, "components/greet.jsx",
		`export const Greet = () => <FormattedMessage id="greet.hello" defaultMessage="Hello"/>;`)
	writeFile(t, webappDir, "actions/bye.js",
		`intl.formatMessage({id: "greet.bye", defaultMessage: "Bye"});`)
	writeFile(t, webappDir, "i18n/en.json", `{"greet.hello":"Hello","old.key":""}`)
	writeFile(t, webappDir, "i18n/de.json", `{"greet.hello":"","greet.bye":"Tschuss"}`)

	writeFile(t, mobileDir, "app/index.js", `t("mobile.key");`)
	writeFile(t, mobileDir, "share_extension/index.js", ``)
	writeFile(t, mobileDir, "assets/base/i18n/en.json", `{"mobile.key":""}`)

	pm := parser.NewParserManager(nil)
	t.Cleanup(func() { pm.Close() })

	targets := i18n.NewTargets(webappDir, mobileDir, nil, nil)
	tool := i18n.New(i18n.Options{
		Extractor: extractor.NewExtractor(pm, extractor.Options{}),
		Out:       &nopWriter{},
	})
	return NewServer(tool, targets, nil), targets
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case "extract_translations":
		handler = s.handleExtractTranslations
	case "check_translations":
		handler = s.handleCheckTranslations
	case "find_empty_translations":
		handler = s.handleFindEmptyTranslations
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- extract_translations ---

func TestHandleExtractTranslations(t *testing.T) {
	s, targets := testServer(t)
	result := callTool(t, s, makeRequest("extract_translations", map[string]any{"directory": targets.Webapp.Dir}))
	assert.False(t, result.IsError)

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, extractor.TranslationMap{"greet.hello": "Hello", "greet.bye": "Bye"}, resp.Translations)
	assert.Equal(t, 2, resp.Keys)
	assert.Nil(t, resp.Failure)
	assert.Equal(t, 2, resp.Stats.FilesExtracted)
}

func TestHandleExtractTranslations_ParseFailure(t *testing.T) {
	s, _ := testServer(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.js", `formatMessage({id: "a", defaultMessage: "A"});`)
	writeFile(t, dir, "b.js", "const x = {;\n")

	result := callTool(t, s, makeRequest("extract_translations", map[string]any{"directory": dir}))
	assert.False(t, result.IsError)

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, extractor.TranslationMap{"a": "A"}, resp.Translations)
	require.NotNil(t, resp.Failure)
	assert.Equal(t, filepath.Join(dir, "b.js"), resp.Failure.File)
	assert.Equal(t, 1, resp.Failure.Line)
}

func TestHandleExtractTranslations_MissingDirectory(t *testing.T) {
	s, _ := testServer(t)

	result := callTool(t, s, makeRequest("extract_translations", nil))
	assert.True(t, result.IsError)

	result = callTool(t, s, makeRequest("extract_translations", map[string]any{
		"directory": filepath.Join(t.TempDir(), "missing"),
	}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "extraction failed")
}

// --- check_translations ---

func TestHandleCheckTranslations(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("check_translations", map[string]any{"target": "webapp"}))
	assert.False(t, result.IsError)

	var resp CheckResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, "webapp", resp.Target)
	assert.Equal(t, []string{"greet.bye"}, resp.Added)
	assert.Equal(t, []string{"old.key"}, resp.Removed)
	assert.True(t, resp.Changed)
}

func TestHandleCheckTranslations_NoChanges(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("check_translations", map[string]any{"target": "mobile"}))
	assert.False(t, result.IsError)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, false, resp["changed"])
	assert.Equal(t, []any{}, resp["added"], "empty lists are serialized as arrays")
}

func TestHandleCheckTranslations_BadTarget(t *testing.T) {
	s, _ := testServer(t)
	assert.True(t, callTool(t, s, makeRequest("check_translations", nil)).IsError)

	result := callTool(t, s, makeRequest("check_translations", map[string]any{"target": "desktop"}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "unknown target")
}

// --- find_empty_translations ---

func TestHandleFindEmptyTranslations(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("find_empty_translations", map[string]any{"target": "webapp"}))
	assert.False(t, result.IsError)

	var resp EmptyResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, "en.json", resp.File)
	assert.Equal(t, []string{"old.key"}, resp.Keys)
	assert.Equal(t, 1, resp.Count)
}

func TestHandleFindEmptyTranslations_OtherFile(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("find_empty_translations", map[string]any{"target": "webapp", "file": "de.json"}))

	var resp EmptyResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, []string{"greet.hello"}, resp.Keys)

	result = callTool(t, s, makeRequest("find_empty_translations", map[string]any{"target": "webapp", "file": "xx.json"}))
	assert.True(t, result.IsError)
}

// --- registration ---

func TestNewServer_RegistersTools(t *testing.T) {
	s, _ := testServer(t)
	tools := s.mcpServer.ListTools()
	require.Len(t, tools, 3)
	for _, name := range []string{"extract_translations", "check_translations", "find_empty_translations"} {
		assert.Contains(t, tools, name)
	}
	assert.Equal(t, []string{"directory"}, tools["extract_translations"].Tool.InputSchema.Required)
}
