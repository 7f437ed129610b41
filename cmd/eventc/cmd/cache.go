package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bargom/eventc/internal/buildcache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or empty the build cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print build cache statistics",
		Args:  cobra.NoArgs,
		RunE:  runCacheStats,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove every compiled program from the build cache",
		Args:  cobra.NoArgs,
		RunE:  runCachePurge,
	})

	return cmd
}

func openCache() (buildcache.Cache, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return buildcache.New(config.Cache)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	var stats buildcache.Stats
	if c != nil {
		defer c.Close()
		stats = c.Stats()
	}

	if outputFormat == "json" {
		return outputJSON(cmd, stats)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Keys:   %d\n", stats.Keys)
	fmt.Fprintf(out, "Memory: %d bytes\n", stats.MemoryUsed)
	if stats.Error != "" {
		return fmt.Errorf("cache stats incomplete: %s", stats.Error)
	}
	return nil
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	if c == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Build cache is disabled")
		return nil
	}
	defer c.Close()

	if err := c.Purge(cmd.Context()); err != nil {
		return fmt.Errorf("failed to purge build cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Build cache purged")
	return nil
}
