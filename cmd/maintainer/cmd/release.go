package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sancloud/femtolog-maintainer/pkg/maint"
)

var releaseCmd = &cobra.Command{
	Use:   "release <version>",
	Short: "Release a new version of this project",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflow(releaseWorkflow),
}

var releaseSignaturesCmd = &cobra.Command{
	Use:   "release-signatures <version>",
	Short: "Push release signatures to GitHub and/or GitLab",
	Long: `Upload SHA256SUMS.asc and B3SUMS.asc from the release directory to an
existing release. The version must already be released.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflow(releaseSignaturesWorkflow),
}

func init() {
	releaseCmd.Flags().BoolP("sign", "s", false, "sign release with gpg")
	releaseCmd.Flags().Bool("no-gitlab", false, "disable push to the GitLab instance")
	releaseCmd.Flags().Bool("no-github", false, "disable push to GitHub")

	releaseSignaturesCmd.Flags().Bool("no-gitlab", false, "disable pushing signatures to the GitLab instance")
	releaseSignaturesCmd.Flags().Bool("no-github", false, "disable pushing signatures to GitHub")
}

func releaseWorkflow(cmd *cobra.Command, args []string) (maint.Workflow, error) {
	sign, _ := cmd.Flags().GetBool("sign")
	noGitLab, _ := cmd.Flags().GetBool("no-gitlab")
	noGitHub, _ := cmd.Flags().GetBool("no-github")
	return maint.Release{Version: args[0], Sign: sign, NoGitLab: noGitLab, NoGitHub: noGitHub}, nil
}

func releaseSignaturesWorkflow(cmd *cobra.Command, args []string) (maint.Workflow, error) {
	noGitLab, _ := cmd.Flags().GetBool("no-gitlab")
	noGitHub, _ := cmd.Flags().GetBool("no-github")
	return maint.ReleaseSignatures{Version: args[0], NoGitLab: noGitLab, NoGitHub: noGitHub}, nil
}
