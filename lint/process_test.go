package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/rmlint/internal/lints"
)

func writeRubyTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestProcessPathWithEngine(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	files := map[string]string{
		".gitignore":           "generated/\n*.skip.rb\n",
		"Rakefile":             "task :clean do\n  FileUtils.rm_rf('pkg')\nend\n",
		"lib/cleanup.rb":       "FileUtils.rm_f(lock)\nPathname.rmtree(dir)\n",
		"lib/safe.rb":          "FileUtils.rm_r(dir)\n",
		"lib/old.skip.rb":      "FileUtils.rm_rf(dir)\n",
		"generated/cache.rb":   "FileUtils.rm_rf(dir)\n",
		"vendor/bundle/gem.rb": "FileUtils.rm_rf(dir)\n",
		".hidden/dotfile.rb":   "FileUtils.rm_rf(dir)\n",
		"lib/suppressed.rb":    "FileUtils.rm_rf(dir) # nolint\n",
	}
	writeRubyTree(t, tempDir, files)

	engine, err := New(tempDir, "")
	require.NoError(t, err)

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.NoError(t, err)
	require.Len(t, issues, 3)

	var got []string
	for _, issue := range issues {
		assert.Equal(t, lints.NoFileutilsRmrfRule, issue.Rule)
		rel, err := filepath.Rel(tempDir, issue.Filename)
		require.NoError(t, err)
		got = append(got, fmt.Sprintf("%s:%d %s", filepath.ToSlash(rel), issue.Start.Line, issue.Suggestion))
	}
	assert.Equal(t, []string{
		"Rakefile:2 FileUtils.rm_r('pkg')",
		"lib/cleanup.rb:1 FileUtils.rm(lock)",
		"lib/cleanup.rb:2 FileUtils.rm_r(dir)",
	}, got)
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	for i := 0; i < 10; i++ {
		filename := filepath.Join(tempDir, fmt.Sprintf("test%d.rb", i))
		require.NoError(t, os.WriteFile(filename, []byte("FileUtils.rm_rf(dir)\n"), 0o644))
	}

	engine, err := New(tempDir, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ProcessPath(ctx, nil, engine, tempDir, ProcessFile)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessPathIgnoredPaths(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	writeRubyTree(t, tempDir, map[string]string{
		"app/a.rb":       "FileUtils.rm_rf(a)\n",
		"spec/a_spec.rb": "FileUtils.rm_rf(a)\n",
	})

	engine, err := New(tempDir, "")
	require.NoError(t, err)
	engine.IgnorePath("spec/")

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.True(t, strings.HasSuffix(filepath.ToSlash(issues[0].Filename), "app/a.rb"))
}

func TestProcessPathConfiguredSeverityOff(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	writeRubyTree(t, tempDir, map[string]string{
		"a.rb":         "FileUtils.rm_rf(a)\n",
		".rmlint.yaml": "rules:\n  no-fileutils-rmrf:\n    severity: off\n",
	})

	engine, err := New(tempDir, filepath.Join(tempDir, DefaultConfigPath))
	require.NoError(t, err)

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	writeRubyTree(t, tempDir, map[string]string{
		".gitignore":        "build/\n",
		"Gemfile":           "",
		"app.gemspec":       "",
		"config.ru":         "",
		"lib/a.rb":          "",
		"lib/b.py":          "",
		"build/out.rb":      "",
		"node_modules/x.rb": "",
	})

	files, err := DiscoverFiles(tempDir)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(tempDir, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"Gemfile", "app.gemspec", "config.ru", "lib/a.rb"}, rel)
}
