package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sancloud/femtolog-maintainer/pkg/maint"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build output from the source tree",
	Args:  cobra.NoArgs,
	RunE: runWorkflow(func(cmd *cobra.Command, args []string) (maint.Workflow, error) {
		return maint.Clean{}, nil
	}),
}
