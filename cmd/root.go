package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/rmlint/internal"
	"github.com/gnolang/rmlint/lint"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:              "rmlint [paths...]",
	Short:            "rmlint - finds force-removing FileUtils calls in Ruby code and rewrites them",
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		// rmlint [path1 path2 ...] behaves like the lint subcommand
		lintCmd.Run(lintCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", lint.DefaultConfigPath, "Configuration file (YAML, or TOML when it ends in .toml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Abort after this long")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(watchCmd)
}

// newLogger builds the CLI logger: a production logger that only reports
// warnings, or a development logger with --verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

func newEngine(rootDir string) (*internal.Engine, error) {
	engine, err := lint.New(rootDir, cfgFile)
	if err != nil {
		return nil, err
	}
	engine.SetLogger(logger)
	return engine, nil
}

func exitOnError(msg string, err error) {
	if err == nil {
		return
	}
	logger.Error(msg, zap.Error(err))
	os.Exit(1)
}
