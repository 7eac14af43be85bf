package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/wayfind/internal/engine"
	"github.com/mvp-joe/wayfind/internal/extract"
	"github.com/mvp-joe/wayfind/internal/grammar"
)

// MCPServer exposes code navigation as MCP tools over stdio. Unlike the
// language-server endpoint, callers address files by path and the server
// opens them into the engine on demand.
type MCPServer struct {
	engine *engine.Engine
	mcp    *mcpserver.MCPServer
	logger *slog.Logger
}

// NewMCPServer creates an MCP server over the given engine.
func NewMCPServer(eng *engine.Engine, logger *slog.Logger) *MCPServer {
	if logger == nil {
		logger = slog.Default()
	}

	srv := mcpserver.NewMCPServer(
		"wayfind",
		"0.1.0",
		mcpserver.WithToolCapabilities(true),
	)

	s := &MCPServer{engine: eng, mcp: srv, logger: logger}
	s.addDefinitionTool()
	s.addReferencesTool()
	s.addSymbolsTool()
	s.addLookupTool()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio")
		if err := mcpserver.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MCPServer) addDefinitionTool() {
	tool := mcp.NewTool(
		"wayfind_definition",
		mcp.WithDescription("Find where the symbol at a given file position is defined. Returns the definition location, searching the file itself, other indexed files, and the surrounding project tree."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path to the source file")),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("0-based line of the symbol")),
		mcp.WithNumber("character",
			mcp.Required(),
			mcp.Description("0-based character offset on the line")),
	)

	s.mcp.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, pos, errResult := s.positionArgs(request)
		if errResult != nil {
			return errResult, nil
		}
		uri, err := s.ensureOpen(file)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		loc, err := s.engine.Definition(uri, pos)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if loc == nil {
			return mcp.NewToolResultText(`{"found":false}`), nil
		}

		response := map[string]any{
			"found": true,
			"uri":   loc.URI,
			"line":  loc.Range.Start.Line,
			"char":  loc.Range.Start.Character,
		}
		return jsonResult(response)
	})
}

func (s *MCPServer) addReferencesTool() {
	tool := mcp.NewTool(
		"wayfind_references",
		mcp.WithDescription("Find all occurrences of the symbol at a given file position."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path to the source file")),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("0-based line of the symbol")),
		mcp.WithNumber("character",
			mcp.Required(),
			mcp.Description("0-based character offset on the line")),
		mcp.WithBoolean("include_declaration",
			mcp.Description("Include the declaration itself in the results (default: false)")),
	)

	s.mcp.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, pos, errResult := s.positionArgs(request)
		if errResult != nil {
			return errResult, nil
		}
		argsMap, _ := request.Params.Arguments.(map[string]interface{})
		includeDecl := parseBoolArg(argsMap, "include_declaration", false)

		uri, err := s.ensureOpen(file)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		locs, err := s.engine.References(uri, pos, includeDecl)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		references := make([]map[string]any, 0, len(locs))
		for _, loc := range locs {
			references = append(references, map[string]any{
				"uri":  loc.URI,
				"line": loc.Range.Start.Line,
				"char": loc.Range.Start.Character,
			})
		}
		return jsonResult(map[string]any{"references": references, "total": len(references)})
	})
}

func (s *MCPServer) addSymbolsTool() {
	tool := mcp.NewTool(
		"wayfind_symbols",
		mcp.WithDescription("List all symbols declared in a source file: functions, methods, classes, types, variables, constants, and imports."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path to the source file")),
	)

	s.mcp.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		file, err := parseStringArg(argsMap, "file", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		uri, err := s.ensureOpen(file)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		symbols, err := s.engine.DocumentSymbols(uri)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out := make([]map[string]any, 0, len(symbols))
		for _, sym := range symbols {
			entry := map[string]any{
				"name": sym.Name,
				"kind": sym.Kind,
				"line": sym.Range.Start.Line,
			}
			if sym.Signature != "" {
				entry["signature"] = sym.Signature
			}
			if sym.Container != "" {
				entry["container"] = sym.Container
			}
			out = append(out, entry)
		}
		return jsonResult(map[string]any{"symbols": out, "total": len(out)})
	})
}

func (s *MCPServer) addLookupTool() {
	tool := mcp.NewTool(
		"wayfind_lookup",
		mcp.WithDescription("Look up a symbol by name across all files the server has analyzed. Set fuzzy to tolerate typos in the name."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Symbol name to look up")),
		mcp.WithBoolean("fuzzy",
			mcp.Description("Use approximate name matching (default: false)")),
	)

	s.mcp.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		name, err := parseStringArg(argsMap, "name", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if parseBoolArg(argsMap, "fuzzy", false) {
			hits := s.engine.Store.FindSymbolFuzzy(name, 25)
			out := make([]map[string]any, 0, len(hits))
			for _, hit := range hits {
				out = append(out, map[string]any{
					"name": hit.Symbol.Name,
					"kind": hit.Symbol.Kind,
					"uri":  hit.URI,
					"line": hit.Symbol.Range.Start.Line,
				})
			}
			return jsonResult(map[string]any{"matches": out, "total": len(out)})
		}

		hit := s.engine.FindSymbol(name, "")
		if hit == nil {
			return mcp.NewToolResultText(`{"found":false}`), nil
		}
		return jsonResult(map[string]any{
			"found": true,
			"name":  hit.Symbol.Name,
			"kind":  hit.Symbol.Kind,
			"uri":   hit.URI,
			"line":  hit.Symbol.Range.Start.Line,
		})
	})
}

// positionArgs parses the shared file/line/character argument triple.
func (s *MCPServer) positionArgs(request mcp.CallToolRequest) (string, extract.Position, *mcp.CallToolResult) {
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", extract.Position{}, mcp.NewToolResultError("invalid arguments format")
	}
	file, err := parseStringArg(argsMap, "file", true)
	if err != nil {
		return "", extract.Position{}, mcp.NewToolResultError(err.Error())
	}
	line := parseIntArg(argsMap, "line", -1)
	char := parseIntArg(argsMap, "character", -1)
	if line < 0 || char < 0 {
		return "", extract.Position{}, mcp.NewToolResultError("line and character parameters are required")
	}
	return file, extract.Position{Line: line, Character: char}, nil
}

// ensureOpen reads a file from disk and opens it in the engine if it is not
// already part of the working set. Returns the file:// URI for the path.
func (s *MCPServer) ensureOpen(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", file, err)
	}
	uri := "file://" + filepath.ToSlash(abs)
	if s.engine.Docs.IsOpen(uri) {
		return uri, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	languageID := grammar.LanguageForFile(abs)
	s.engine.OnOpen(uri, languageID, 1, string(data))
	return uri, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func parseStringArg(argsMap map[string]interface{}, key string, required bool) (string, error) {
	val, ok := argsMap[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if required && strings.TrimSpace(str) == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return str, nil
}

// MCP clients send numbers as float64.
func parseIntArg(argsMap map[string]interface{}, key string, defaultVal int) int {
	if f, ok := argsMap[key].(float64); ok {
		return int(f)
	}
	return defaultVal
}

func parseBoolArg(argsMap map[string]interface{}, key string, defaultVal bool) bool {
	if b, ok := argsMap[key].(bool); ok {
		return b
	}
	return defaultVal
}
