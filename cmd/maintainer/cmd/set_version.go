package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sancloud/femtolog-maintainer/pkg/maint"
)

var setVersionCmd = &cobra.Command{
	Use:   "set-version <version>",
	Short: "Set version string & commit",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflow(setVersionWorkflow),
}

func init() {
	setVersionCmd.Flags().BoolP("release", "r", false, "this version bump is for a release")
}

func setVersionWorkflow(cmd *cobra.Command, args []string) (maint.Workflow, error) {
	release, _ := cmd.Flags().GetBool("release")
	return maint.SetVersion{Version: args[0], Release: release}, nil
}
