package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/rmlint/lint"
)

var forceInit bool

// initCmd: rmlint init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new linter configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := initConfigurationFile(cfgFile, forceInit)
		if err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("Configuration file created: %s\n", path)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing configuration file")
}

// initConfigurationFile writes the default configuration. It refuses to
// replace an existing file unless force is set.
func initConfigurationFile(configurationPath string, force bool) (string, error) {
	if configurationPath == "" {
		configurationPath = lint.DefaultConfigPath
	}

	if !force {
		if _, err := os.Stat(configurationPath); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", configurationPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}

	if err := lint.WriteConfigurationFile(configurationPath, lint.DefaultConfig()); err != nil {
		return "", err
	}
	return configurationPath, nil
}
