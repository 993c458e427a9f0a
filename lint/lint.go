package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/rmlint/internal"
	"github.com/gnolang/rmlint/internal/lints"
	"github.com/gnolang/rmlint/internal/parse"
	tt "github.com/gnolang/rmlint/internal/types"
)

const DefaultConfigPath = ".rmlint.yaml"

// ProgressOutput receives the progress bar drawn while a directory is
// processed. Set it to nil to disable the bar.
var ProgressOutput io.Writer = os.Stderr

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// New creates an engine rooted at rootDir and configured from
// configurationPath. A missing configuration file yields the defaults.
func New(rootDir string, configurationPath string) (*internal.Engine, error) {
	config, err := ParseConfigurationFile(configurationPath)
	if err != nil {
		return nil, err
	}

	return internal.NewEngine(rootDir, config.Rules)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	logger = orNop(logger)

	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	logger = orNop(logger)

	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessPath lints a single file, or every Ruby file below a directory
// using up to one worker per CPU. Per-file failures are logged and
// skipped; only cancellation aborts the run. Issues come back in file
// order.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	logger = orNop(logger)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !parse.IsRubyFile(path) {
			logger.Debug("skipping non-Ruby file", zap.String("file", path))
			return nil, nil
		}
		return processor(engine, path)
	}

	files, err := DiscoverFiles(path)
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}
	logger.Debug("discovered files", zap.String("path", path), zap.Int("count", len(files)))

	results := make([][]tt.Issue, len(files))
	bar := newProgressBar(len(files), path)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, fp := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fileIssues, err := processor(engine, fp)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
			} else {
				results[i] = fileIssues
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	var issues []tt.Issue
	for _, r := range results {
		issues = append(issues, r...)
	}
	return issues, nil
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	if ProgressOutput == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ProgressOutput),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Config represents the overall configuration with a name and a map of rules.
type Config struct {
	Name  string                   `yaml:"name" toml:"name"`
	Rules map[string]tt.ConfigRule `yaml:"rules" toml:"rules"`
}

// DefaultConfig enables every rule at error severity with its default
// method list.
func DefaultConfig() Config {
	return Config{
		Name: "rmlint",
		Rules: map[string]tt.ConfigRule{
			lints.NoFileutilsRmrfRule: {
				Severity: tt.SeverityError,
				Methods:  append([]string(nil), lints.DefaultFileUtilsMethods...),
			},
		},
	}
}

// ParseConfigurationFile reads a YAML configuration, or TOML when the file
// name ends in ".toml". An empty path or a missing file yields
// DefaultConfig.
func ParseConfigurationFile(configurationPath string) (Config, error) {
	if configurationPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configurationPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}

	var config Config
	if strings.EqualFold(filepath.Ext(configurationPath), ".toml") {
		if _, err := toml.Decode(string(data), &config); err != nil {
			return Config{}, fmt.Errorf("error parsing %s: %w", configurationPath, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error parsing %s: %w", configurationPath, err)
		}
	}

	if err := validateConfig(config); err != nil {
		return Config{}, fmt.Errorf("%s: %w", configurationPath, err)
	}
	return config, nil
}

func validateConfig(config Config) error {
	known := make(map[string]bool)
	for _, name := range internal.KnownRules() {
		known[name] = true
	}
	for name := range config.Rules {
		if !known[name] {
			return fmt.Errorf("unknown rule %q", name)
		}
	}
	return nil
}

// WriteConfigurationFile writes config to path, as TOML when path ends in
// ".toml" and YAML otherwise.
func WriteConfigurationFile(path string, config Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.NewEncoder(f).Encode(config)
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return err
	}
	return enc.Close()
}
