package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/internal/config"
	"github.com/matzehuels/pedigree/pkg/cache"
	"github.com/matzehuels/pedigree/pkg/errors"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or empty the local artifact cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached artifact",
			Args:  cobra.NoArgs,
			RunE:  c.runCacheClear,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Cache.Dir)
				return nil
			},
		},
	)
	return cmd
}

// runCacheClear empties the file cache. Redis entries expire on their own
// TTL and are left alone.
func (c *CLI) runCacheClear(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Cache.Driver != config.CacheFile {
		return errors.New(errors.ErrCodeUnsupported, "cache clear needs the file cache, configured driver is %q", cfg.Cache.Driver)
	}
	if _, err := os.Stat(cfg.Cache.Dir); os.IsNotExist(err) {
		printInfo("Nothing cached yet")
		return nil
	}

	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return err
	}
	printSuccess("Removed %d cached artifacts", n)
	printDetail("%s", cfg.Cache.Dir)
	return nil
}
