package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/rmlint/formatter"
	"github.com/gnolang/rmlint/internal"
	tt "github.com/gnolang/rmlint/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-lint Ruby files whenever they change",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		engine, err := newEngine(dir)
		exitOnError("Failed to initialize lint engine", err)
		applyIgnores(engine, ignoreRules, ignorePaths)

		engine.OnIssues(issuePrinter(os.Stdout))
		exitOnError("Failed to start watching", engine.StartWatching())
		logger.Info("watching for changes", zap.String("dir", dir))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		if err := engine.StopWatching(); err != nil {
			logger.Warn("Error stopping watcher", zap.Error(err))
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	watchCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
}

// issuePrinter serialises output from concurrent re-lints.
func issuePrinter(w io.Writer) func(string, []tt.Issue) {
	var mu sync.Mutex
	return func(filename string, issues []tt.Issue) {
		mu.Lock()
		defer mu.Unlock()

		if len(issues) == 0 {
			fmt.Fprintf(w, "%s: no issues\n", filename)
			return
		}
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			return
		}
		fmt.Fprint(w, formatter.GenerateFormattedIssue(issues, sourceCode))
	}
}
