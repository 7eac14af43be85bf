package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/wayfind/internal/engine"
	"github.com/mvp-joe/wayfind/internal/server"
	"github.com/mvp-joe/wayfind/internal/watcher"
)

var watchFlag bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the language server on stdio",
	Long: `Start a language server that editors connect to over stdin/stdout.

The server:
  - Tracks open documents and re-analyzes them on every change
  - Answers textDocument/definition, references, documentSymbol, and hover
  - Answers workspace/symbol with fuzzy name matching

Example (VS Code / Neovim launch command):
  wayfind serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-analyze open documents when they change on disk")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	eng := engine.New(searchOptions(cfg), logger)

	if watchFlag {
		w, err := watcher.New(logger)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer w.Stop()
		w.Start(ctx, func(paths []string) {
			reanalyzeChanged(eng, paths, logger)
		})
		go trackOpenDocuments(ctx, eng, w)
	}

	logger.Info("starting language server on stdio")
	if err := server.NewLSPServer(eng, logger).RunStdio(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// reanalyzeChanged re-reads tracked files that changed on disk and pushes
// the new text through the normal change path.
func reanalyzeChanged(eng *engine.Engine, paths []string, logger *slog.Logger) {
	for _, path := range paths {
		uri := "file://" + path
		doc, ok := eng.Docs.Get(uri)
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to re-read changed file", "path", path, "error", err)
			continue
		}
		if string(data) == doc.Text {
			continue
		}
		eng.OnChange(uri, doc.Version+1, string(data))
	}
}

// trackOpenDocuments polls the working set and keeps the watcher's tracked
// paths in sync with it. Editors drive open/close through the protocol, so a
// cheap poll is enough to pick up membership changes.
func trackOpenDocuments(ctx context.Context, eng *engine.Engine, w *watcher.DocumentWatcher) {
	tracked := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}

		open := make(map[string]bool)
		for _, uri := range eng.Docs.OpenOrder() {
			path := strings.TrimPrefix(uri, "file://")
			open[path] = true
			if !tracked[path] {
				w.Track(path)
				tracked[path] = true
			}
		}
		for path := range tracked {
			if !open[path] {
				w.Untrack(path)
				delete(tracked, path)
			}
		}
	}
}
