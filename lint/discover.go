package lint

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/gnolang/rmlint/internal/parse"
)

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".bundle":      {},
	"vendor":       {},
	"node_modules": {},
	"coverage":     {},
	"tmp":          {},
	"log":          {},
}

// DiscoverFiles returns the Ruby files under root, sorted. Hidden entries,
// dependency directories and paths matched by root's .gitignore are skipped.
func DiscoverFiles(root string) ([]string, error) {
	gi := loadGitignore(root)

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(relSlash(root, path)+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		// symlinks may point outside root or loop
		if d.Type()&os.ModeSymlink != 0 || strings.HasPrefix(name, ".") {
			return nil
		}
		if !parse.IsRubyFile(path) {
			return nil
		}
		if gi != nil && gi.MatchesPath(relSlash(root, path)) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
