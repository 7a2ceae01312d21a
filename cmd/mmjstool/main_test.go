package main

import (
	"bytes"
	"encoding/json"
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

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// execute runs the CLI and returns its exit code, stdout and stderr.
func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// codebases lays out a minimal webapp and mobile checkout.
func codebases(t *testing.T) (webapp, mobile string) {
	t.Helper()
	webapp = t.TempDir()
	mobile = t.TempDir()

	writeFile(t, webapp, "components/greet.jsx",
		`export const Greet = () => <FormattedMessage id="greet.hello" defaultMessage="Hello"/>;`)
	writeFile(t, webapp, "i18n/en.json", "{\n  \"greet.old\": \"Old\"\n}\n")

	writeFile(t, mobile, "app/screens/about.js",
		`formatMessage({id: "mobile.about", defaultMessage: "About"});`)
	writeFile(t, mobile, "share_extension/index.js", `export default {};`)
	writeFile(t, mobile, "assets/base/i18n/en.json", "{\n  \"mobile.about\": \"About\"\n}\n")
	return webapp, mobile
}

func TestVersion(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "mmjstool "+version+"\n", stdout)
}

func TestCheck(t *testing.T) {
	webapp, mobile := codebases(t)

	code, stdout, _ := execute(t, "i18n", "check", "--webapp-dir", webapp, "--mobile-dir", mobile)
	assert.Equal(t, 1, code)
	assert.Equal(t,
		"Removed from webapp: greet.old\nAdded to webapp: greet.hello\nChanges found\n",
		stdout)

	code, stdout, _ = execute(t, "i18n", "check-mobile", "--webapp-dir", webapp, "--mobile-dir", mobile)
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
}

func TestExtractWebapp(t *testing.T) {
	webapp, mobile := codebases(t)

	code, stdout, stderr := execute(t, "i18n", "extract-webapp", "--webapp-dir", webapp, "--mobile-dir", mobile)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Added to webapp: greet.hello")
	assert.Equal(t, "{\n  \"greet.hello\": \"Hello\"\n}\n", readFile(t, filepath.Join(webapp, "i18n", "en.json")))

	code, _, _ = execute(t, "i18n", "check-webapp", "--webapp-dir", webapp, "--mobile-dir", mobile)
	assert.Equal(t, 0, code)
}

func TestClean(t *testing.T) {
	webapp, mobile := codebases(t)
	de := writeFile(t, webapp, "i18n/de.json", "{\n  \"a\": \"\",\n  \"b\": \"B\"\n}\n")

	code, stdout, _ := execute(t, "i18n", "clean-webapp", "--check", "--dry-run",
		"--webapp-dir", webapp, "--mobile-dir", mobile)
	assert.Equal(t, 1, code)
	assert.Equal(t, "de.json has 1 empty translations\n", stdout)
	assert.Contains(t, readFile(t, de), `"a": ""`)

	code, _, _ = execute(t, "i18n", "clean-webapp", "--webapp-dir", webapp, "--mobile-dir", mobile)
	assert.Equal(t, 0, code)
	assert.Equal(t, "{\n  \"b\": \"B\"\n}\n", readFile(t, de))
}

func TestCombineAndSort(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"b": "1", "a": "1"}`)
	b := writeFile(t, dir, "b.json", `{"b": "2", "C": "2"}`)
	combined := filepath.Join(dir, "combined.json")

	code, _, stderr := execute(t, "i18n", "combine", a, b, "--output", combined)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "{\n  \"a\": \"1\",\n  \"b\": \"2\",\n  \"C\": \"2\"\n}\n", readFile(t, combined))

	code, _, _ = execute(t, "i18n", "combine", a)
	assert.Equal(t, 1, code)

	sorted := filepath.Join(dir, "sorted.json")
	code, _, stderr = execute(t, "i18n", "sort", a, "--output", sorted)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "{\n  \"a\": \"1\",\n  \"b\": \"1\"\n}\n", readFile(t, sorted))
}

func TestSplit(t *testing.T) {
	webapp, mobile := codebases(t)
	dir := t.TempDir()
	es := writeFile(t, dir, "es.json", `{"greet.hello": "Hola", "mobile.about": "Acerca", "unused": "x"}`)

	code, _, stderr := execute(t, "i18n", "split", "--inputs", " "+es+" ,",
		"--webapp-dir", webapp, "--mobile-dir", mobile)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "{\n  \"greet.hello\": \"Hola\"\n}\n", readFile(t, filepath.Join(webapp, "i18n", "es.json")))
	assert.Equal(t, "{\n  \"mobile.about\": \"Acerca\"\n}\n", readFile(t, filepath.Join(mobile, "assets", "base", "i18n", "es.json")))
}

func TestExtractFile(t *testing.T) {
	webapp, _ := codebases(t)

	code, stdout, stderr := execute(t, "i18n", "extract-file", filepath.Join(webapp, "components", "greet.jsx"))
	require.Equal(t, 0, code, stderr)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, map[string]string{"greet.hello": "Hello"}, got)
}

func TestConfigFileAndEnvironment(t *testing.T) {
	webapp, mobile := codebases(t)
	writeFile(t, webapp, "tests/only.js", `formatMessage({id: "test.only", defaultMessage: "T"});`)
	writeFile(t, webapp, "components/skip.test.js", `formatMessage({id: "excluded", defaultMessage: "E"});`)

	cfg := writeFile(t, t.TempDir(), "config.yaml",
		"webapp-dir: "+webapp+"\n"+
			"webapp:\n"+
			"  exclude:\n"+
			"    - \"**/*.test.js\"\n")
	t.Setenv("MMJSTOOL_MOBILE_DIR", mobile)

	code, stdout, stderr := execute(t, "i18n", "extract-webapp", "--config", cfg)
	require.Equal(t, 0, code, stderr)
	assert.NotContains(t, stdout, "excluded")
	assert.NotContains(t, stdout, "test.only")
	assert.Equal(t, "{\n  \"greet.hello\": \"Hello\"\n}\n", readFile(t, filepath.Join(webapp, "i18n", "en.json")))

	code, _, _ = execute(t, "i18n", "check-mobile", "--config", cfg)
	assert.Equal(t, 0, code)
}

func TestErrors(t *testing.T) {
	webapp, mobile := codebases(t)

	code, _, stderr := execute(t, "i18n", "check", "--log-level", "loud",
		"--webapp-dir", webapp, "--mobile-dir", mobile)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")

	code, _, stderr = execute(t, "i18n", "check-webapp", "--webapp-dir", filepath.Join(webapp, "missing"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")

	code, _, stderr = execute(t, "i18n", "check", "--conflicts", "first-wins")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")
}
