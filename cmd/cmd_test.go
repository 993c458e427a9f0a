package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	tt "github.com/gnolang/rmlint/internal/types"
	"github.com/gnolang/rmlint/lint"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	lint.ProgressOutput = nil
	os.Exit(m.Run())
}

func writeRuby(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunNormalLintProcessText(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeRuby(t, dir, "a.rb", "FileUtils.rm_rf(dir)\n")
	writeRuby(t, dir, "b.rb", "FileUtils.rm_r(dir)\n")

	engine, err := lint.New(dir, "")
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := runNormalLintProcess(context.Background(), zap.NewNop(), engine, []string{dir}, false, "", &out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, out.String(), "error: no-fileutils-rmrf")
	assert.Contains(t, out.String(), path+":1:1")
	assert.Contains(t, out.String(), "1 | FileUtils.rm_r(dir)")
	assert.Contains(t, out.String(), "found 1 issue(s) in 1 file(s)")
}

func TestRunNormalLintProcessJSON(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeRuby(t, dir, "a.rb", "Pathname.rmtree(dir)\n")

	engine, err := lint.New(dir, "")
	require.NoError(t, err)

	jsonPath := filepath.Join(dir, "out.json")
	n, err := runNormalLintProcess(context.Background(), nil, engine, []string{path}, true, jsonPath, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	var byFile map[string][]tt.Issue
	require.NoError(t, json.Unmarshal(data, &byFile))
	require.Len(t, byFile[path], 1)
	issue := byFile[path][0]
	assert.Equal(t, "FileUtils.rm_r(dir)", issue.Suggestion)
	assert.Equal(t, tt.SeverityError, issue.Severity)
	require.Len(t, issue.Corrections, 1)
	assert.Equal(t, 0, issue.Corrections[0].Span.Start)
	assert.Equal(t, 20, issue.Corrections[0].Span.End)
	assert.Contains(t, string(data), `"Severity":"error"`)
}

func TestRunNormalLintProcessIgnoreRule(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeRuby(t, dir, "a.rb", "FileUtils.rm_rf(dir)\n")

	engine, err := lint.New(dir, "")
	require.NoError(t, err)
	applyIgnores(engine, " no-fileutils-rmrf , ", "")

	var out bytes.Buffer
	n, err := runNormalLintProcess(context.Background(), nil, engine, []string{dir}, false, "", &out)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, out.String())
}

func TestRunAutoFix(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	fixable := writeRuby(t, dir, "a.rb", "FileUtils.rm_rf(FileUtils.rm_f(x))\n")
	manual := writeRuby(t, dir, "b.rb", "FileUtils.rm_f\n")

	engine, err := lint.New(dir, "")
	require.NoError(t, err)

	var out bytes.Buffer
	remaining, err := runAutoFix(context.Background(), zap.NewNop(), engine, []string{dir}, false, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	got, err := os.ReadFile(fixable)
	require.NoError(t, err)
	assert.Equal(t, "FileUtils.rm_r(FileUtils.rm(x))\n", string(got))

	got, err = os.ReadFile(manual)
	require.NoError(t, err)
	assert.Equal(t, "FileUtils.rm_f\n", string(got))
}

func TestRunAutoFixDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeRuby(t, dir, "a.rb", "FileUtils.rm_f(x)\n")

	engine, err := lint.New(dir, "")
	require.NoError(t, err)

	var out bytes.Buffer
	remaining, err := runAutoFix(context.Background(), nil, engine, []string{path}, true, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
	assert.Contains(t, out.String(), "+FileUtils.rm(x)")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "FileUtils.rm_f(x)\n", string(got))
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".rmlint.yaml")

	written, err := initConfigurationFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	config, err := lint.ParseConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, lint.DefaultConfig(), config)

	_, err = initConfigurationFile(path, false)
	assert.ErrorContains(t, err, "already exists")

	_, err = initConfigurationFile(path, true)
	assert.NoError(t, err)
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}

func TestIssuePrinter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeRuby(t, dir, "a.rb", "FileUtils.rm_rf(dir)\n")

	var out bytes.Buffer
	printer := issuePrinter(&out)
	printer(path, nil)
	assert.Equal(t, path+": no issues\n", out.String())

	out.Reset()
	printer(path, []tt.Issue{{Rule: "r", Filename: path, Message: "m"}})
	assert.Contains(t, out.String(), "error: r")
}
