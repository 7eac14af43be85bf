package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/wayfind/internal/grammar"
	"github.com/mvp-joe/wayfind/internal/snapshot"
)

var quietFlag bool

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Index a directory into a snapshot database",
	Long: `Index walks a directory tree, extracts symbols from every source file with
a supported grammar, and persists them to a SQLite snapshot.

The snapshot feeds 'wayfind symbols' queries and survives restarts; the
language server does not need it.

Examples:
  # Index the current directory into .wayfind/index.db
  wayfind index

  # Index a specific directory
  wayfind index ./services/api

  # Index without the progress display
  wayfind index --quiet`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress output")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	writer, err := snapshot.NewWriter(cfg.Snapshot.Path, grammar.NewRegistry(logger), snapshot.Options{
		SkipDirs:    cfg.Search.SkipDirs,
		IgnoreGlobs: cfg.Search.Ignore,
		MaxFileSize: int64(cfg.Search.MaxFileSizeMB) * 1024 * 1024,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer writer.Close()

	var bar *progressbar.ProgressBar
	if !quietFlag {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Indexing files"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
		writer.Progress = func(path string) {
			bar.Add(1)
		}
	}

	start := time.Now()
	id, files, symbols, err := writer.Index(root)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	logger.Info("snapshot written",
		slog.String("id", id),
		slog.Int("files", files),
		slog.Int("symbols", symbols),
		slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
	if !quietFlag {
		fmt.Fprintf(os.Stdout, "Indexed %d files (%d symbols) into %s\n", files, symbols, cfg.Snapshot.Path)
	}
	return nil
}
