package config

import "fmt"

// Config is the complete wayfind configuration. It can be loaded from
// .wayfind/config.yml with environment variable overrides.
type Config struct {
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Languages LanguagesConfig `yaml:"languages" mapstructure:"languages"`
	Snapshot  SnapshotConfig  `yaml:"snapshot" mapstructure:"snapshot"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SearchConfig bounds the filesystem fallback search.
type SearchConfig struct {
	MaxDepth      int      `yaml:"max_depth" mapstructure:"max_depth"`           // recursion limit under each candidate dir
	CandidateDirs []string `yaml:"candidate_dirs" mapstructure:"candidate_dirs"` // project-root subdirectories to search
	SkipDirs      []string `yaml:"skip_dirs" mapstructure:"skip_dirs"`           // build/dependency dirs to skip
	Ignore        []string `yaml:"ignore" mapstructure:"ignore"`                 // extra glob patterns to skip
	MaxFileSizeMB int      `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"`
}

// LanguagesConfig tunes language handling.
type LanguagesConfig struct {
	// Fallbacks maps additional unsupported language ids to supported ones,
	// extending the built-in table.
	Fallbacks map[string]string `yaml:"fallbacks" mapstructure:"fallbacks"`
}

// SnapshotConfig controls the batch index database.
type SnapshotConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // sqlite file, default .wayfind/index.db
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// Default returns a configuration with the stock bounds.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			MaxDepth:      3,
			CandidateDirs: []string{".", "src", "lib", "app", "internal", "pkg", "cmd"},
			SkipDirs: []string{
				"node_modules", ".git", "vendor", "dist", "build", "target",
				"__pycache__", ".venv", "venv", ".next", "coverage", ".cache",
			},
			MaxFileSizeMB: 10,
		},
		Snapshot: SnapshotConfig{
			Path: ".wayfind/index.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Search.MaxDepth < 0 {
		return fmt.Errorf("search.max_depth must be >= 0, got %d", c.Search.MaxDepth)
	}
	if c.Search.MaxFileSizeMB <= 0 {
		return fmt.Errorf("search.max_file_size_mb must be > 0, got %d", c.Search.MaxFileSizeMB)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug/info/warn/error, got %q", c.Log.Level)
	}
	return nil
}
