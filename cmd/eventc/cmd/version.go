package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// VersionInfo holds version information for JSON output.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Example: `  eventc version
  eventc version --output json`,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := VersionInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
	}

	if outputFormat == "json" {
		return outputJSON(cmd, info)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "eventc v%s\n", Version)
	fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", BuildDate)
	fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
	return nil
}
