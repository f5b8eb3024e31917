package maint

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// ConfigFileName is looked up in the project root when no explicit file is given
const ConfigFileName = ".maintainer.toml"

// EnvPrefix prefixes environment overrides, e.g. FEMTOLOG_MAINT_BUILD_DIR
const EnvPrefix = "FEMTOLOG_MAINT"

// LoadOptions defines explicit configuration loading inputs
type LoadOptions struct {
	// ConfigFile forces loading from a specific file when set.
	ConfigFile string
	// Dir is the project root; defaults to the working directory.
	Dir string
}

// LoadConfig layers defaults, the optional TOML file and environment overrides.
// It returns the validated config and the path of the file that was read, if any.
func LoadConfig(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolved := ""
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, "", fmt.Errorf("config file not found: %w", err)
		}
		resolved = opts.ConfigFile
	} else if candidate := filepath.Join(dir, ConfigFileName); fileExists(candidate) {
		resolved = candidate
	}

	if resolved != "" {
		v.SetConfigFile(resolved)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", resolved, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Dir = dir

	if err := ValidateConfig(cfg); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

// WriteConfig renders cfg as TOML, in the format LoadConfig reads
func WriteConfig(w io.Writer, cfg *Config) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(cfg)
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project_name", d.ProjectName)
	v.SetDefault("build_dir", d.BuildDir)
	v.SetDefault("release_dir", d.ReleaseDir)
	v.SetDefault("build_file", d.BuildFile)
	v.SetDefault("changelog", d.ChangeLog)
	v.SetDefault("docs_dir", d.DocsDir)
	v.SetDefault("release_branch", d.ReleaseBranch)
	v.SetDefault("lint_sources", d.LintSources)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("watch.paths", d.Watch.Paths)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	for key, forge := range map[string]ForgeConfig{"gitlab": d.Forges.GitLab, "github": d.Forges.GitHub} {
		v.SetDefault("forges."+key+".enabled", forge.Enabled)
		v.SetDefault("forges."+key+".remote", forge.Remote)
		v.SetDefault("forges."+key+".cli", forge.CLI)
		v.SetDefault("forges."+key+".title_flag", forge.TitleFlag)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
