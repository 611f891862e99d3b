package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphrender/pkg/cache"
)

// iconsCommand creates the icon cache management command.
func (c *CLI) iconsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "icons",
		Short: "Manage the persistent icon cache",
	}

	cmd.AddCommand(c.iconsClearCommand())
	cmd.AddCommand(c.iconsPathCommand())

	return cmd
}

// iconsClearCommand creates the "icons clear" subcommand.
func (c *CLI) iconsClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached icons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Icon cache is disabled")
				return nil
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear icon cache: %w", err)
			}

			printSuccess("Cleared %d cached icons", count)
			printDetail("Location: %s", storeLocation(store))
			return nil
		},
	}
}

// iconsPathCommand creates the "icons path" subcommand.
func (c *CLI) iconsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached icons are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Icons.RedisURL != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Icons.RedisURL+" (prefix "+redisIconPrefix+")")
				return nil
			}
			dir, enabled := cfg.IconCacheDir(nil)
			if !enabled {
				printInfo("Icon cache is disabled")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
