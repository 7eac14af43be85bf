package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/wayfind/internal/engine"
	"github.com/mvp-joe/wayfind/internal/server"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for code navigation",
	Long: `Start a Model Context Protocol (MCP) server that lets LLM-powered coding
assistants navigate your codebase by symbol rather than by grep.

The MCP server:
- Communicates via stdio (standard MCP transport)
- Opens files on demand as tools reference them
- Provides wayfind_definition, wayfind_references, wayfind_symbols, and
  wayfind_lookup tools

Example:
  wayfind mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	eng := engine.New(searchOptions(cfg), logger)
	return server.NewMCPServer(eng, logger).Serve(context.Background())
}
