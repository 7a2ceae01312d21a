package dictionary

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveEmpty_KeepsOrder(t *testing.T) {
	d, err := Parse([]byte(`{"z":"Z","e1":"","a":"A","e2":""}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"e1", "e2"}, d.EmptyKeys())
	assert.Equal(t, 2, d.RemoveEmpty())
	assert.Equal(t, []string{"z", "a"}, d.Keys())
	assert.Equal(t, 0, d.RemoveEmpty())
}

func TestCleanFile(t *testing.T) {
	dir := t.TempDir()
	original := `{"a":"","b":"x"}`
	path := writeJSON(t, dir, "de.json", original)

	result, err := CleanFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Empty)
	assert.Equal(t, "de.json has 1 empty translations", result.String())
	assert.Equal(t, original, readFile(t, path), "dry run leaves the file alone")

	result, err = CleanFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Empty)
	assert.Equal(t, "{\n  \"b\": \"x\"\n}\n", readFile(t, path))

	result, err = CleanFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Empty)
}

func TestCleanFile_NoEmptyDoesNotRewrite(t *testing.T) {
	dir := t.TempDir()
	original := `{"b":"x","a":"y"}`
	path := writeJSON(t, dir, "fr.json", original)

	result, err := CleanFile(path, false)
	require.NoError(t, err)
	assert.Zero(t, result.Empty)
	assert.Equal(t, original, readFile(t, path))
}

func TestTranslationFiles(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "en.json", `{}`)
	writeJSON(t, dir, "fr.json", `{}`)
	writeJSON(t, dir, "de.json", `{}`)
	writeJSON(t, dir, "README.md", `x`)

	files, err := TranslationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "de.json"), filepath.Join(dir, "fr.json")}, files)

	_, err = TranslationFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestCleanDir(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "en.json", `{"a":""}`)
	writeJSON(t, dir, "de.json", `{"a":"","b":"x"}`)
	writeJSON(t, dir, "fr.json", `{"a":"y"}`)

	results, err := CleanDir(dir, true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "de.json has 1 empty translations", results[0].String())
	assert.Equal(t, `{"a":""}`, readFile(t, filepath.Join(dir, "en.json")), "base file is never cleaned")

	_, err = CleanDir(dir, false)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": \"x\"\n}\n", readFile(t, filepath.Join(dir, "de.json")))
}
