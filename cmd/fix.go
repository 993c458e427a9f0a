package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/rmlint/internal/fixer"
	"github.com/gnolang/rmlint/lint"
)

var dryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Rewrite unsafe file removal calls to their safe counterparts",
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

		remaining, err := runAutoFix(ctx, logger, engine, args, dryRun, os.Stdout)
		exitOnError("Error fixing files", err)
		if remaining > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
	fixCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	fixCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
}

// runAutoFix fixes every correctable issue under paths and returns how many
// issues could not be corrected. Files that fail to fix are reported and
// left untouched.
func runAutoFix(ctx context.Context, logger *zap.Logger, engine lint.LintEngine, paths []string, dryRun bool, w io.Writer) (int, error) {
	fix := fixer.New(dryRun, w)
	fix.Relint = engine.RunSource

	remaining := 0
	for _, path := range paths {
		issues, err := lint.ProcessPath(ctx, logger, engine, path, lint.ProcessFile)
		if err != nil {
			return remaining, fmt.Errorf("error processing %s: %w", path, err)
		}

		results, err := fix.FixAll(issues)
		fixed := 0
		for _, res := range results {
			fixed += res.Applied
		}
		if err != nil {
			for _, e := range unwrapJoined(err) {
				fmt.Fprintf(w, "%v\n", e)
			}
			logger.Warn("some files could not be fixed", zap.String("path", path), zap.Error(err))
		}
		if dryRun {
			fixed = 0
		}
		remaining += len(issues) - fixed
	}
	return remaining, nil
}

func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
