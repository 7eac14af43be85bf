// Package server exposes the navigation engine over two transports: a
// language-server endpoint speaking JSON-RPC on stdio, and an MCP tool
// server for agent hosts.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/mvp-joe/wayfind/internal/engine"
	"github.com/mvp-joe/wayfind/internal/extract"
	"github.com/mvp-joe/wayfind/internal/resolve"
)

// LSPServer handles language-server requests against a single engine.
type LSPServer struct {
	engine *engine.Engine
	logger *slog.Logger
	conn   *jsonrpc2.Conn
}

// NewLSPServer creates a server over the given engine.
func NewLSPServer(eng *engine.Engine, logger *slog.Logger) *LSPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LSPServer{engine: eng, logger: logger}
}

// RunStdio serves requests on stdin/stdout until the client disconnects or
// the context is cancelled.
func (s *LSPServer) RunStdio(ctx context.Context) error {
	stream := jsonrpc2.NewBufferedStream(stdioReadWriteCloser{}, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	s.conn = conn

	select {
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}

func (s *LSPServer) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		return s.initialize()
	case "initialized", "exit", "$/cancelRequest":
		return nil, nil
	case "shutdown":
		return nil, nil
	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		s.engine.OnOpen(string(params.TextDocument.URI), string(params.TextDocument.LanguageID),
			params.TextDocument.Version, params.TextDocument.Text)
		return nil, nil
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		// Full-sync only: the last change event carries the whole text.
		if len(params.ContentChanges) > 0 {
			text := params.ContentChanges[len(params.ContentChanges)-1].Text
			s.engine.OnChange(string(params.TextDocument.URI), params.TextDocument.Version, text)
		}
		return nil, nil
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		s.engine.OnClose(string(params.TextDocument.URI))
		return nil, nil
	case "textDocument/definition":
		var params protocol.DefinitionParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.definition(params)
	case "textDocument/references":
		var params protocol.ReferenceParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.references(params)
	case "textDocument/documentSymbol":
		var params protocol.DocumentSymbolParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.documentSymbols(params)
	case "textDocument/hover":
		var params protocol.HoverParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.hover(params)
	case "textDocument/completion":
		var params protocol.CompletionParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.completion(params)
	case "workspace/symbol":
		var params protocol.WorkspaceSymbolParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.workspaceSymbol(params)
	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method not supported: %s", req.Method)}
	}
}

func (s *LSPServer) initialize() (interface{}, error) {
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider:      &protocol.CompletionOptions{},
			DefinitionProvider:      true,
			ReferencesProvider:      true,
			DocumentSymbolProvider:  true,
			HoverProvider:           true,
			WorkspaceSymbolProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "wayfind",
			Version: "0.1.0",
		},
	}, nil
}

func (s *LSPServer) definition(params protocol.DefinitionParams) (interface{}, error) {
	uri := string(params.TextDocument.URI)
	pos := fromProtocolPosition(params.Position)

	loc, err := s.engine.Definition(uri, pos)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	if loc == nil {
		return []protocol.Location{}, nil
	}
	return []protocol.Location{toProtocolLocation(*loc)}, nil
}

func (s *LSPServer) references(params protocol.ReferenceParams) (interface{}, error) {
	uri := string(params.TextDocument.URI)
	pos := fromProtocolPosition(params.Position)

	locs, err := s.engine.References(uri, pos, params.Context.IncludeDeclaration)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	out := make([]protocol.Location, 0, len(locs))
	for _, loc := range locs {
		out = append(out, toProtocolLocation(loc))
	}
	return out, nil
}

func (s *LSPServer) documentSymbols(params protocol.DocumentSymbolParams) (interface{}, error) {
	uri := string(params.TextDocument.URI)
	symbols, err := s.engine.DocumentSymbols(uri)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	out := make([]protocol.SymbolInformation, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, protocol.SymbolInformation{
			Name:          sym.Name,
			Kind:          symbolKindFor(sym.Kind),
			ContainerName: sym.Container,
			Location: protocol.Location{
				URI:   protocol.DocumentURI(uri),
				Range: toProtocolRange(sym.Range),
			},
		})
	}
	return out, nil
}

// hover surfaces the stored signature and doc comment for the symbol under
// the cursor.
func (s *LSPServer) hover(params protocol.HoverParams) (interface{}, error) {
	uri := string(params.TextDocument.URI)
	doc, ok := s.engine.Docs.Get(uri)
	if !ok {
		return nil, nil
	}
	word := engine.WordAt(doc.Text, fromProtocolPosition(params.Position))
	if word == "" {
		return nil, nil
	}
	hit := s.engine.FindSymbol(word, uri)
	if hit == nil {
		return nil, nil
	}

	language := s.engine.Registry.Resolve(doc.LanguageID)
	content := hit.Symbol.Signature
	if content == "" {
		content = hit.Symbol.Name
	}
	value := fmt.Sprintf("```%s\n%s\n```", language, content)
	if hit.Symbol.Doc != "" {
		value += "\n\n" + hit.Symbol.Doc
	}
	return protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: value,
		},
	}, nil
}

// completion offers the document's own symbols plus the language's builtin
// identifiers. No prefix filtering happens here; clients filter as the user
// types.
func (s *LSPServer) completion(params protocol.CompletionParams) (interface{}, error) {
	uri := string(params.TextDocument.URI)
	doc, ok := s.engine.Docs.Get(uri)
	if !ok {
		return protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil
	}

	seen := make(map[string]bool)
	items := make([]protocol.CompletionItem, 0, 32)

	if symbols, err := s.engine.DocumentSymbols(uri); err == nil {
		for _, sym := range symbols {
			if sym.Name == "" || seen[sym.Name] {
				continue
			}
			seen[sym.Name] = true
			items = append(items, protocol.CompletionItem{
				Label:  sym.Name,
				Kind:   completionKindFor(sym.Kind),
				Detail: sym.Signature,
			})
		}
	}

	language := s.engine.Registry.Resolve(doc.LanguageID)
	for _, name := range resolve.BuiltinNames(language) {
		if seen[name] {
			continue
		}
		seen[name] = true
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   protocol.CompletionItemKindFunction,
			Detail: "builtin",
		})
	}

	return protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

func (s *LSPServer) workspaceSymbol(params protocol.WorkspaceSymbolParams) (interface{}, error) {
	hits := s.engine.Store.FindSymbolFuzzy(params.Query, 50)
	out := make([]protocol.SymbolInformation, 0, len(hits))
	for _, hit := range hits {
		out = append(out, protocol.SymbolInformation{
			Name:          hit.Symbol.Name,
			Kind:          symbolKindFor(hit.Symbol.Kind),
			ContainerName: hit.Symbol.Container,
			Location: protocol.Location{
				URI:   protocol.DocumentURI(hit.URI),
				Range: toProtocolRange(hit.Symbol.Range),
			},
		})
	}
	return out, nil
}

func unmarshalParams(req *jsonrpc2.Request, dst interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, dst); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeParseError, Message: err.Error()}
	}
	return nil
}

func fromProtocolPosition(pos protocol.Position) extract.Position {
	return extract.Position{Line: int(pos.Line), Character: int(pos.Character)}
}

func toProtocolRange(r extract.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
	}
}

func toProtocolLocation(loc resolve.Location) protocol.Location {
	return protocol.Location{
		URI:   protocol.DocumentURI(loc.URI),
		Range: toProtocolRange(loc.Range),
	}
}

func symbolKindFor(kind string) protocol.SymbolKind {
	switch kind {
	case extract.KindFunction:
		return protocol.SymbolKindFunction
	case extract.KindMethod:
		return protocol.SymbolKindMethod
	case extract.KindClass:
		return protocol.SymbolKindClass
	case extract.KindInterface:
		return protocol.SymbolKindInterface
	case extract.KindStruct:
		return protocol.SymbolKindStruct
	case extract.KindEnum:
		return protocol.SymbolKindEnum
	case extract.KindTrait:
		return protocol.SymbolKindInterface
	case extract.KindModule:
		return protocol.SymbolKindModule
	case extract.KindType:
		return protocol.SymbolKindTypeParameter
	case extract.KindConstant:
		return protocol.SymbolKindConstant
	case extract.KindImport:
		return protocol.SymbolKindModule
	case extract.KindProperty:
		return protocol.SymbolKindProperty
	default:
		return protocol.SymbolKindVariable
	}
}

func completionKindFor(kind string) protocol.CompletionItemKind {
	switch kind {
	case extract.KindFunction:
		return protocol.CompletionItemKindFunction
	case extract.KindMethod:
		return protocol.CompletionItemKindMethod
	case extract.KindClass:
		return protocol.CompletionItemKindClass
	case extract.KindInterface, extract.KindTrait:
		return protocol.CompletionItemKindInterface
	case extract.KindStruct:
		return protocol.CompletionItemKindStruct
	case extract.KindEnum:
		return protocol.CompletionItemKindEnum
	case extract.KindModule, extract.KindImport:
		return protocol.CompletionItemKindModule
	case extract.KindType:
		return protocol.CompletionItemKindTypeParameter
	case extract.KindConstant:
		return protocol.CompletionItemKindConstant
	case extract.KindProperty:
		return protocol.CompletionItemKindProperty
	default:
		return protocol.CompletionItemKindVariable
	}
}

// stdioReadWriteCloser adapts process stdio to the io.ReadWriteCloser the
// JSON-RPC stream wants.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error {
	if err := os.Stdin.Close(); err != nil && err != io.EOF {
		return err
	}
	return os.Stdout.Close()
}
