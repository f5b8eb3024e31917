package maint

import (
	"path/filepath"
	"strings"
	"time"
)

// ForgeConfig describes one forge a release is published to
type ForgeConfig struct {
	Enabled   bool   `mapstructure:"enabled" toml:"enabled"`
	Remote    string `mapstructure:"remote" toml:"remote"`
	CLI       string `mapstructure:"cli" toml:"cli"`
	TitleFlag string `mapstructure:"title_flag" toml:"title_flag"`
}

// ForgesConfig holds the two supported forges
type ForgesConfig struct {
	GitLab ForgeConfig `mapstructure:"gitlab" toml:"gitlab"`
	GitHub ForgeConfig `mapstructure:"github" toml:"github"`
}

// WatchConfig configures build --watch
type WatchConfig struct {
	Paths    []string      `mapstructure:"paths" toml:"paths"`
	Debounce time.Duration `mapstructure:"debounce" toml:"debounce"`
}

// Config defines the configuration for the maintainer workflows
type Config struct {
	ProjectName   string       `mapstructure:"project_name" toml:"project_name"`
	BuildDir      string       `mapstructure:"build_dir" toml:"build_dir"`
	ReleaseDir    string       `mapstructure:"release_dir" toml:"release_dir"`
	BuildFile     string       `mapstructure:"build_file" toml:"build_file"`
	ChangeLog     string       `mapstructure:"changelog" toml:"changelog"`
	DocsDir       string       `mapstructure:"docs_dir" toml:"docs_dir"`
	ReleaseBranch string       `mapstructure:"release_branch" toml:"release_branch"`
	LintSources   []string     `mapstructure:"lint_sources" toml:"lint_sources"`
	LogLevel      string       `mapstructure:"log_level" toml:"log_level"`
	Watch         WatchConfig  `mapstructure:"watch" toml:"watch"`
	Forges        ForgesConfig `mapstructure:"forges" toml:"forges"`

	// Dir is the project root all relative paths resolve against.
	Dir string `mapstructure:"-" toml:"-"`
	// DryRun prints commands and file changes without performing them.
	DryRun bool `mapstructure:"-" toml:"-"`
}

// DefaultConfig returns the configuration matching the femtolog source tree
func DefaultConfig() *Config {
	return &Config{
		ProjectName:   "femtolog",
		BuildDir:      "build",
		ReleaseDir:    "release",
		BuildFile:     "CMakeLists.txt",
		ChangeLog:     "ChangeLog.md",
		DocsDir:       "html",
		ReleaseBranch: "release",
		LintSources:   []string{"src/femtolog.c", "src/femtolog-example.c"},
		LogLevel:      "info",
		Watch: WatchConfig{
			Paths:    []string{"src", "CMakeLists.txt"},
			Debounce: 300 * time.Millisecond,
		},
		Forges: ForgesConfig{
			GitLab: ForgeConfig{Enabled: true, Remote: "origin", CLI: "glab", TitleFlag: "-n"},
			GitHub: ForgeConfig{Enabled: true, Remote: "gh", CLI: "gh", TitleFlag: "-t"},
		},
		Dir: ".",
	}
}

// Path resolves a project-relative path against Dir
func (c *Config) Path(elem ...string) string {
	return filepath.Join(append([]string{c.Dir}, elem...)...)
}

// ValidateConfig validates the configuration to ensure it is usable
func ValidateConfig(config *Config) error {
	if config == nil {
		return &ErrInvalidConfig{Field: "config", Reason: "cannot be nil"}
	}
	if config.ProjectName == "" || strings.ContainsAny(config.ProjectName, " \t\n()") {
		return &ErrInvalidConfig{Field: "project_name", Reason: "must be a non-empty name without spaces or parentheses"}
	}

	dirs := map[string]string{
		"build_dir":   config.BuildDir,
		"release_dir": config.ReleaseDir,
	}
	for field, dir := range dirs {
		if err := validateOutputDir(field, dir); err != nil {
			return err
		}
	}
	if filepath.Clean(config.BuildDir) == filepath.Clean(config.ReleaseDir) {
		return &ErrInvalidConfig{Field: "release_dir", Reason: "must differ from build_dir"}
	}

	if config.BuildFile == "" {
		return &ErrInvalidConfig{Field: "build_file", Reason: "cannot be empty"}
	}
	if config.ChangeLog == "" {
		return &ErrInvalidConfig{Field: "changelog", Reason: "cannot be empty"}
	}
	if config.DocsDir == "" {
		return &ErrInvalidConfig{Field: "docs_dir", Reason: "cannot be empty"}
	}
	if config.ReleaseBranch == "" {
		return &ErrInvalidConfig{Field: "release_branch", Reason: "cannot be empty"}
	}
	if _, ok := ParseLogLevel(config.LogLevel); !ok {
		return &ErrInvalidConfig{Field: "log_level", Reason: "must be one of debug, info, warn, error"}
	}
	if config.Watch.Debounce < 0 {
		return &ErrInvalidConfig{Field: "watch.debounce", Reason: "cannot be negative"}
	}

	if err := validateForgeConfig("forges.gitlab", config.Forges.GitLab); err != nil {
		return err
	}
	return validateForgeConfig("forges.github", config.Forges.GitHub)
}

// validateOutputDir rejects directories that would make clean or release delete the project
func validateOutputDir(field, dir string) error {
	if dir == "" {
		return &ErrInvalidConfig{Field: field, Reason: "cannot be empty"}
	}
	clean := filepath.Clean(dir)
	if clean == "." || clean == ".." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return &ErrInvalidConfig{Field: field, Reason: "must be a subdirectory of the project root"}
	}
	return nil
}

func validateForgeConfig(field string, forge ForgeConfig) error {
	if !forge.Enabled {
		return nil
	}
	if forge.Remote == "" {
		return &ErrInvalidConfig{Field: field + ".remote", Reason: "cannot be empty"}
	}
	if forge.CLI == "" {
		return &ErrInvalidConfig{Field: field + ".cli", Reason: "cannot be empty"}
	}
	if forge.TitleFlag == "" {
		return &ErrInvalidConfig{Field: field + ".title_flag", Reason: "cannot be empty"}
	}
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	clone.LintSources = append([]string(nil), c.LintSources...)
	clone.Watch.Paths = append([]string(nil), c.Watch.Paths...)
	return &clone
}
