package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/rmlint/formatter"
	"github.com/gnolang/rmlint/internal"
	tt "github.com/gnolang/rmlint/internal/types"
	"github.com/gnolang/rmlint/lint"
)

var (
	ignoreRules    string
	ignorePaths    string
	lintJsonOutput bool
	outPath        string
	cacheDir       string
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Report unsafe file removal calls",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine(".")
		exitOnError("Failed to initialize lint engine", err)

		applyIgnores(engine, ignoreRules, ignorePaths)

		if cacheDir != "" {
			cache, err := internal.NewCache(cacheDir)
			exitOnError("Failed to open cache", err)
			if _, statErr := os.Stat(cfgFile); statErr == nil {
				if err := cache.AddDependency(cfgFile); err != nil {
					logger.Warn("Config file not tracked by cache", zap.Error(err))
				}
			}
			engine.SetCache(cache)
		}

		n, err := runNormalLintProcess(ctx, logger, engine, args, lintJsonOutput, outPath, os.Stdout)
		exitOnError("Error processing files", err)
		if n > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	lintCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	lintCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	lintCmd.Flags().BoolVar(&lintJsonOutput, "json", false, "Output issues in JSON format")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	lintCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Reuse results from this directory for unchanged files")
}

func applyIgnores(engine lint.LintEngine, rules, paths string) {
	for _, rule := range splitList(rules) {
		engine.IgnoreRule(rule)
	}
	for _, path := range splitList(paths) {
		engine.IgnorePath(path)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// runNormalLintProcess lints paths, prints the result to w and returns the
// number of issues found.
func runNormalLintProcess(ctx context.Context, logger *zap.Logger, engine lint.LintEngine, paths []string, isJson bool, jsonOutput string, w io.Writer) (int, error) {
	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	if err != nil {
		return 0, err
	}

	if err := printIssues(logger, issues, isJson, jsonOutput, w); err != nil {
		return 0, err
	}
	return len(issues), nil
}

func printIssues(logger *zap.Logger, issues []tt.Issue, isJson bool, jsonOutput string, w io.Writer) error {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	if isJson {
		d, err := json.Marshal(issuesByFile)
		if err != nil {
			return fmt.Errorf("error marshalling issues to JSON: %w", err)
		}
		if jsonOutput == "" {
			_, err = fmt.Fprintln(w, string(d))
			return err
		}
		return os.WriteFile(jsonOutput, d, 0o644)
	}

	for _, filename := range sortedFiles {
		fileIssues := issuesByFile[filename]
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		fmt.Fprint(w, formatter.GenerateFormattedIssue(fileIssues, sourceCode))
	}
	if len(issues) > 0 {
		fmt.Fprintf(w, "found %d issue(s) in %d file(s)\n", len(issues), len(sortedFiles))
	}
	return nil
}
