package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/wayfind/internal/config"
	"github.com/mvp-joe/wayfind/internal/grammar"
	"github.com/mvp-joe/wayfind/internal/resolve"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wayfind",
	Short: "Wayfind - multi-language code navigation",
	Long: `Wayfind parses source files with tree-sitter grammars and answers
go-to-definition, find-references, and symbol queries across eleven
languages without compiling anything.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// loadConfig reads .wayfind/config.yml from the working directory and applies
// any configured language fallbacks.
func loadConfig() (*config.Config, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.NewLoader(rootDir).Load()
	if err != nil {
		return nil, err
	}
	for from, to := range cfg.Languages.Fallbacks {
		grammar.RegisterFallback(from, to)
	}
	return cfg, nil
}

// newLogger builds the process logger. Servers speak a protocol on stdout,
// so logs always go to stderr.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Log.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// searchOptions converts the search section of the configuration into
// resolver bounds.
func searchOptions(cfg *config.Config) resolve.SearchOptions {
	opts := resolve.DefaultSearchOptions()
	opts.MaxDepth = cfg.Search.MaxDepth
	if len(cfg.Search.CandidateDirs) > 0 {
		opts.CandidateDirs = cfg.Search.CandidateDirs
	}
	if len(cfg.Search.SkipDirs) > 0 {
		opts.SkipDirs = cfg.Search.SkipDirs
	}
	opts.IgnoreGlobs = cfg.Search.Ignore
	opts.MaxFileSize = int64(cfg.Search.MaxFileSizeMB) * 1024 * 1024
	return opts
}
