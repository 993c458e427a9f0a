package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"

	"github.com/gnolang/rmlint/internal/nolint"
	"github.com/gnolang/rmlint/internal/parse"
	"github.com/gnolang/rmlint/internal/rules"
	"github.com/gnolang/rmlint/internal/syntax"
	tt "github.com/gnolang/rmlint/internal/types"
)

// Engine manages the linting process. After construction and the
// Ignore* calls it is read-only, so Run may be called from several
// goroutines at once.
type Engine struct {
	rootDir      string
	ignoredRules map[string]bool
	ignoredPaths []string
	pathMatcher  *ignore.GitIgnore
	registry     *rules.Registry
	cache        *Cache
	logger       *zap.Logger

	// watch mode
	watcher    *fsnotify.Watcher
	watch      *watchState
	watchDirs  []string
	isWatching bool
	onIssues   func(filename string, issues []tt.Issue)
}

// NewEngine creates a new lint engine with every known rule, configured by
// rules. Rules set to "off" are skipped.
func NewEngine(rootDir string, rules map[string]tt.ConfigRule) (*Engine, error) {
	engine := &Engine{
		rootDir:   rootDir,
		logger:    zap.NewNop(),
		watchDirs: []string{rootDir},
	}
	if err := engine.applyRules(rules); err != nil {
		return nil, err
	}
	return engine, nil
}

func (e *Engine) applyRules(config map[string]tt.ConfigRule) error {
	e.registry = rules.NewRegistry()

	names := make([]string, 0, len(allRuleConstructors))
	for name := range allRuleConstructors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := config[name]
		if cfg.Severity == tt.SeverityOff {
			e.IgnoreRule(name)
			continue
		}
		handlers, err := allRuleConstructors[name](cfg)
		if err != nil {
			return fmt.Errorf("error configuring rule %s: %w", name, err)
		}
		for _, h := range handlers {
			if err := e.registry.Register(h); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetLogger replaces the engine's logger. A nil logger disables logging.
func (e *Engine) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e.logger = logger
}

// SetCache enables result caching.
func (e *Engine) SetCache(c *Cache) {
	e.cache = c
}

// Rules returns the names of the active rules.
func (e *Engine) Rules() []string {
	var active []string
	for _, name := range e.registry.Rules() {
		if !e.ignoredRules[name] {
			active = append(active, name)
		}
	}
	return active
}

// IgnoreRule disables rule for subsequent runs.
func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath excludes files matching a gitignore-style pattern.
func (e *Engine) IgnorePath(path string) {
	e.ignoredPaths = append(e.ignoredPaths, path)
	e.pathMatcher = ignore.CompileIgnoreLines(e.ignoredPaths...)
}

func (e *Engine) isIgnoredPath(filename string) bool {
	if e.pathMatcher == nil {
		return false
	}
	rel := filename
	if r, err := filepath.Rel(e.rootDir, filename); err == nil && !strings.HasPrefix(r, "..") {
		rel = r
	}
	return e.pathMatcher.MatchesPath(filepath.ToSlash(rel))
}

// Run applies all lint rules to the given file and returns a slice of Issues.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.isIgnoredPath(filename) {
		return nil, nil
	}

	if e.cache != nil {
		if issues, ok := e.cache.Get(filename, e.ruleSet()); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return issues, nil
		}
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	issues, err := e.run(filename, source)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, e.ruleSet(), issues); err != nil {
			e.logger.Warn("failed to cache issues", zap.String("file", filename), zap.Error(err))
		}
	}
	return issues, nil
}

// ruleSet identifies the enabled rules and their configuration for the cache.
func (e *Engine) ruleSet() string {
	return e.registry.Signature(e.isIgnoredRule)
}

func (e *Engine) isIgnoredRule(rule string) bool {
	return e.ignoredRules[rule]
}

// RunSource applies all lint rules to the given source and returns a slice of Issues.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	return e.run("", source)
}

func (e *Engine) run(filename string, source []byte) ([]tt.Issue, error) {
	f, err := parse.Ruby(context.Background(), filename, source)
	if err != nil {
		return nil, fmt.Errorf("error parsing content: %w", err)
	}
	return e.Check(f), nil
}

// Check runs the rules over an already parsed file.
func (e *Engine) Check(f *syntax.File) []tt.Issue {
	ctx := rules.NewContext(f)
	issues := e.registry.Run(ctx, e.isIgnoredRule)

	issues = filterNolintIssues(nolint.ParseComments(f), issues)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Start.Offset < issues[j].Start.Offset
	})
	return issues
}

// filterNolintIssues filters issues based on nolint comments.
func filterNolintIssues(mgr *nolint.Manager, issues []tt.Issue) []tt.Issue {
	if mgr == nil {
		return issues
	}
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if !mgr.IsNolint(issue.Start, issue.Rule) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}
