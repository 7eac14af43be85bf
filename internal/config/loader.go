package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (WAYFIND_*)
// 2. Config file (.wayfind/config.yml or .wayfind/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".wayfind")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("WAYFIND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("search.max_depth")
	v.BindEnv("search.max_file_size_mb")
	v.BindEnv("snapshot.path")
	v.BindEnv("log.level")

	setDefaults(v)

	// Missing config file is fine: defaults plus env apply.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults seeds viper with the Default() values so partial config files
// inherit them.
func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("search.max_depth", def.Search.MaxDepth)
	v.SetDefault("search.candidate_dirs", def.Search.CandidateDirs)
	v.SetDefault("search.skip_dirs", def.Search.SkipDirs)
	v.SetDefault("search.ignore", def.Search.Ignore)
	v.SetDefault("search.max_file_size_mb", def.Search.MaxFileSizeMB)
	v.SetDefault("snapshot.path", def.Snapshot.Path)
	v.SetDefault("log.level", def.Log.Level)
}
