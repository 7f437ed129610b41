// Package cmd provides the CLI commands for eventc.
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/bargom/eventc/internal/build"
	"github.com/bargom/eventc/pkg/logging"
)

var (
	// cfgFile holds the path to the config file
	cfgFile string
	// verbose enables debug logging
	verbose bool
	// outputFormat specifies the output format (json, plain)
	outputFormat string
	// noColor disables ANSI styling of sentences
	noColor bool
)

const longDescription = `eventc compiles event sheets into Go source code.

A scene file lists events made of conditions and actions. eventc checks every
instruction against a catalog of known conditions, actions and expression
functions, and emits one Go function that runs the scene's logic once per frame.`

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCmd()

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// NewRootCmd creates a fresh command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "eventc",
		Short:        "Event sheet compiler",
		Long:         longDescription,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml or json)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "plain", "output format (json|plain)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCompileCmd())
	cmd.AddCommand(newSentenceCmd())
	cmd.AddCommand(newExprCmd())
	cmd.AddCommand(newCatalogCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newCompletionCmd())

	return cmd
}

// loadConfig reads the --config file, or the defaults, and applies the
// environment on top.
func loadConfig() (*build.Config, error) {
	config := build.DefaultConfig()
	if cfgFile != "" {
		var err error
		if config, err = build.LoadConfig(cfgFile); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if verbose {
		config.Logging.Level = "debug"
	}
	return config, nil
}

// newBuilder loads the configuration and creates a builder logging to the
// command's error stream.
func newBuilder(cmd *cobra.Command, mutate func(*build.Config)) (*build.Builder, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(config)
	}
	logger := logging.NewWithWriter(config.Logging, cmd.ErrOrStderr())
	return build.New(config, build.WithLogger(logger))
}

// outputJSON writes data as indented JSON.
func outputJSON(cmd *cobra.Command, data any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func colorEnabled() bool {
	return !noColor && color.Enable
}

// printError prints an error message to stderr.
func printError(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: "+format+"\n", args...)
}
