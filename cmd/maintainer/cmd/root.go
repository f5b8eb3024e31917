// Package cmd implements the command-line interface of the maintainer tool
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/sancloud/femtolog-maintainer/pkg/maint"
)

var (
	// Version is the tool version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"

	cfgFile    string
	projectDir string
	verbose    bool
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "maintainer",
	Short: "femtolog maintainer commands",
	Long: `maintainer builds, lints, versions and releases femtolog.

Each command runs a fixed sequence of external tools (cmake, clang-tidy,
cppcheck, git, gpg, sha256sum, b3sum, glab, gh) and stops at the first one
that fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "Missing command! Try `maintainer --help`")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <dir>/"+maint.ConfigFileName+")")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "project root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "print commands without running them")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(releaseSignaturesCmd)
	rootCmd.AddCommand(setVersionCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command
func Execute() error {
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// loadConfig reads the layered configuration and applies the global flags.
// It also returns the path of the config file that was read, if any.
func loadConfig(ctx context.Context) (*maint.Config, string, error) {
	cfg, path, err := maint.LoadConfig(ctx, maint.LoadOptions{ConfigFile: cfgFile, Dir: projectDir})
	if err != nil {
		return nil, "", err
	}
	if verbose {
		cfg.LogLevel = maint.LogLevelDebug.String()
	}
	cfg.DryRun = dryRun
	return cfg, path, nil
}

// workflowFunc builds the workflow a subcommand runs from its flags and args
type workflowFunc func(cmd *cobra.Command, args []string) (maint.Workflow, error)

// runWorkflow adapts a workflowFunc into a cobra RunE
func runWorkflow(build workflowFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		w, err := build(cmd, args)
		if err != nil {
			return err
		}
		cfg, path, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		env, err := maint.NewEnv(cfg)
		if err != nil {
			return err
		}
		if path != "" {
			env.Logger.Debug("using config", "path", path)
		}
		return maint.Dispatch(cmd.Context(), env, w)
	}
}
