package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sancloud/femtolog-maintainer/pkg/maint"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# project root: %s\n", cfg.Dir)
		if path != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", path)
		}
		return maint.WriteConfig(cmd.OutOrStdout(), cfg)
	},
}
