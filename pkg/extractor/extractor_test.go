package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hello.jsx", `
import {FormattedMessage} from 'react-intl';

export default function Hello() {
  return <FormattedMessage id="greet.hello" defaultMessage="Hello"/>;
}
`)

	ext := newTestExtractor(t, Options{})
	result, err := ext.ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, TranslationMap{"greet.hello": "Hello"}, result)
}

func TestExtractFileTypeScript(t *testing.T) {
	dir := t.TempDir()
	ts := writeFile(t, dir, "util.ts", `
export function label(intl: IntlShape): string {
  return intl.formatMessage({id: 'ts.label', defaultMessage: 'Label'} as MessageDescriptor);
}
`)
	tsx := writeFile(t, dir, "view.tsx", `
export const View = ({n}: {n: number}) => (
  <FormattedMessage id="tsx.view" defaultMessage="View"/>
);
`)

	ext := newTestExtractor(t, Options{})

	result, err := ext.ExtractFile(ts)
	require.NoError(t, err)
	assert.Equal(t, TranslationMap{"ts.label": "Label"}, result)

	result, err = ext.ExtractFile(tsx)
	require.NoError(t, err)
	assert.Equal(t, TranslationMap{"tsx.view": "View"}, result)
}

func TestExtractFlowAnnotatedJavaScript(t *testing.T) {
	source := []byte(`
type Props = {
  intl: Object,
};

function title(props: Props): string {
  return props.intl.formatMessage({id: 'flow.title', defaultMessage: 'Flow'});
}
`)

	ext := newTestExtractor(t, Options{})
	result, err := ext.ExtractSource("flow.js", source)
	require.NoError(t, err)
	assert.Equal(t, TranslationMap{"flow.title": "Flow"}, result)
}

func TestExtractSyntaxError(t *testing.T) {
	source := []byte("formatMessage({id: 'before', defaultMessage: 'B'});\nconst broken = {;\n")

	ext := newTestExtractor(t, Options{})
	result, err := ext.ExtractSource("broken.js", source)
	require.Error(t, err)
	assert.Nil(t, result)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, "broken.js", extractionErr.Path)
	assert.Equal(t, 2, extractionErr.Line)
	assert.Positive(t, extractionErr.Column)
	assert.Contains(t, err.Error(), "unable to parse broken.js (line 2")
}

func TestExtractTolerateSyntaxErrors(t *testing.T) {
	source := []byte("formatMessage({id: 'before', defaultMessage: 'B'});\nconst broken = {;\n")

	ext := newTestExtractor(t, Options{TolerateSyntaxErrors: true})
	result, err := ext.ExtractSource("broken.js", source)
	require.NoError(t, err)
	assert.Equal(t, "B", result["before"])
}

func TestExtractUnsupportedFile(t *testing.T) {
	ext := newTestExtractor(t, Options{})
	_, err := ext.ExtractSource("styles.scss", []byte("a {}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestExtractMissingFile(t *testing.T) {
	ext := newTestExtractor(t, Options{})
	_, err := ext.ExtractFile(filepath.Join(t.TempDir(), "missing.js"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var extractionErr *ExtractionError
	assert.False(t, errors.As(err, &extractionErr), "read failures are not parse failures")
}

func TestExtractEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.js", "")

	ext := newTestExtractor(t, Options{})
	result, err := ext.ExtractFile(path)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestTranslationMap(t *testing.T) {
	m := TranslationMap{"b": "1", "a": "2"}
	m.Merge(TranslationMap{"b": "3", "c": ""})

	assert.Equal(t, TranslationMap{"a": "2", "b": "3", "c": ""}, m)
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
}

func TestExtractionErrorWithoutLocation(t *testing.T) {
	err := &ExtractionError{Path: "x.js", Err: errors.New("boom")}
	assert.Equal(t, "unable to parse x.js: boom", err.Error())
}
