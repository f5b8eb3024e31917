package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sancloud/femtolog-maintainer/pkg/maint"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the project",
	Args:  cobra.NoArgs,
	RunE:  runWorkflow(buildWorkflow),
}

func init() {
	buildCmd.Flags().BoolP("docs", "d", false, "build documentation")
	buildCmd.Flags().BoolP("lint", "L", false, "check code with clang-tidy & cppcheck")
	buildCmd.Flags().BoolP("watch", "w", false, "rebuild whenever sources change")
}

func buildWorkflow(cmd *cobra.Command, args []string) (maint.Workflow, error) {
	docs, _ := cmd.Flags().GetBool("docs")
	lint, _ := cmd.Flags().GetBool("lint")
	watch, _ := cmd.Flags().GetBool("watch")

	b := maint.Build{Docs: docs, Lint: lint}
	if watch {
		return maint.Watch{Build: b}, nil
	}
	return b, nil
}
