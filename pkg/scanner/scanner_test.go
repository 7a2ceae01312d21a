package scanner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mattermost/mmjstool/pkg/extractor"
	"github.com/mattermost/mmjstool/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner(t *testing.T, cfg ScanConfig) *Scanner {
	t.Helper()
	pm := parser.NewParserManager(nil)
	t.Cleanup(func() { pm.Close() })
	return NewScanner(extractor.NewExtractor(pm, extractor.Options{}), cfg, nil)
}

func TestExtractRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "components/greet.jsx", `
export const Greet = () => <FormattedMessage id="greet.hello" defaultMessage="Hello"/>;
`)
	writeFile(t, root, "actions/bye.js", `
export function bye(intl) {
  return intl.formatMessage({id: "greet.bye", defaultMessage: "Bye"});
}
`)
	writeFile(t, root, "node_modules/lib/index.js", `formatMessage({id: "vendored", defaultMessage: "No"});`)

	cfg := DefaultScanConfig()
	cfg.Filters = []string{"node_modules"}
	s := newTestScanner(t, cfg)

	var calls int
	s.SetProgress(func(done, total int, file string) {
		calls++
		assert.Equal(t, 2, total)
	})

	result, err := s.ExtractRoot(context.Background(), root)
	require.NoError(t, err)
	assert.Nil(t, result.Failure)
	assert.Equal(t, extractor.TranslationMap{
		"greet.hello": "Hello",
		"greet.bye":   "Bye",
	}, result.Translations)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, result.Stats.FilesDiscovered)
	assert.Equal(t, 2, result.Stats.FilesExtracted)
	assert.Equal(t, 2, result.Stats.Keys)
}

func TestExtractRoot_StopsAtUnparseableFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", `formatMessage({id: "a", defaultMessage: "A"});`)
	writeFile(t, root, "b.js", "const broken = {;\n")
	writeFile(t, root, "c.js", `formatMessage({id: "c", defaultMessage: "C"});`)

	s := newTestScanner(t, DefaultScanConfig())
	result, err := s.ExtractRoot(context.Background(), root)
	require.NoError(t, err, "a parse failure is reported, not returned")

	require.NotNil(t, result.Failure)
	assert.Equal(t, filepath.Join(root, "b.js"), result.Failure.Path)
	assert.Equal(t, 1, result.Failure.Line)
	assert.Equal(t, extractor.TranslationMap{"a": "A"}, result.Translations)
}

func TestExtractRoot_MissingDirectory(t *testing.T) {
	s := newTestScanner(t, DefaultScanConfig())
	_, err := s.ExtractRoot(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestExtractDirectories_LaterRootWins(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "app/screen.js", `
formatMessage({id: "shared", defaultMessage: "From app"});
formatMessage({id: "app.only", defaultMessage: "App"});
`)
	writeFile(t, base, "share_extension/share.js", `
formatMessage({id: "shared", defaultMessage: "From share"});
`)

	s := newTestScanner(t, DefaultScanConfig())
	merged, perRoot, err := s.ExtractDirectories(context.Background(), []string{
		filepath.Join(base, "app"),
		filepath.Join(base, "share_extension"),
	})
	require.NoError(t, err)
	require.Len(t, perRoot, 2)
	assert.Equal(t, extractor.TranslationMap{
		"shared":   "From share",
		"app.only": "App",
	}, merged)
}

func TestExtractDirectories_FailureInOneRootKeepsOthers(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "one/bad.js", "const x = ;\n")
	writeFile(t, base, "two/good.js", `t("two.key");`)

	s := newTestScanner(t, DefaultScanConfig())
	merged, perRoot, err := s.ExtractDirectories(context.Background(), []string{
		filepath.Join(base, "one"),
		filepath.Join(base, "two"),
	})
	require.NoError(t, err)
	require.Len(t, perRoot, 2)
	assert.NotNil(t, perRoot[0].Failure)
	assert.Nil(t, perRoot[1].Failure)
	assert.Equal(t, extractor.TranslationMap{"two.key": ""}, merged)
}

func TestExtractDirectories_StrictConflicts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", `formatMessage({id: "k", defaultMessage: "One"});`)
	writeFile(t, root, "b.js", `formatMessage({id: "k", defaultMessage: "Two"});`)

	cfg := DefaultScanConfig()
	cfg.ConflictPolicy = ConflictError
	s := newTestScanner(t, cfg)

	_, _, err := s.ExtractDirectories(context.Background(), []string{root})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `conflicting default messages for "k"`)
}
