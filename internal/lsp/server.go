// Package lsp serves probe's debug code lenses over the Language Server Protocol.
package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rs/xid"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"probe.dev/pkg/probe/internal/adapter"
	"probe.dev/pkg/probe/internal/domain"
	m "probe.dev/pkg/probe/internal/model"
)

// MethodCodeLensRefresh asks the client to re-request every code lens.
const MethodCodeLensRefresh = "workspace/codeLens/refresh"

// Transport selects how the server talks to its client.
type Transport string

// Supported transports.
const (
	TransportStdio     Transport = "stdio"
	TransportTCP       Transport = "tcp"
	TransportWebSocket Transport = "websocket"
)

// ParseTransport validates a transport name.
func ParseTransport(value string) (Transport, error) {
	switch transport := Transport(value); transport {
	case TransportStdio, TransportTCP, TransportWebSocket:
		return transport, nil
	case "":
		return TransportStdio, nil
	}

	return "", fmt.Errorf("unsupported transport %q (want stdio, tcp or websocket)", value)
}

// LensSource is the lens adapter driven by the server.
type LensSource interface {
	domain.LensProvider
	OnDidChangeCodeLenses(fn func()) (unsubscribe func())
	ConfigurationChanged()
	Close()
}

// Server adapts a LensSource to LSP requests.
type Server struct {
	name    string
	version string
	debug   bool

	lenses    LensSource
	fs        adapter.SourceFSAdapter
	documents *documentStore
	handler   protocol.Handler

	mu               sync.Mutex
	client           *glsp.Context
	refreshSupported bool
	unsubscribe      func()
	cancel           context.CancelFunc
}

// NewServer creates an LSP server. fs is used to read test files the client
// asks about without opening them first.
func NewServer(name, version string, debug bool, lenses LensSource, fs adapter.SourceFSAdapter) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		name:      name,
		version:   version,
		debug:     debug,
		lenses:    lenses,
		fs:        fs,
		documents: newDocumentStore(ctx),
		cancel:    cancel,
	}

	s.handler = protocol.Handler{
		Initialize:                      s.initialize,
		Initialized:                     s.initialized,
		Shutdown:                        s.shutdown,
		SetTrace:                        s.setTrace,
		TextDocumentDidOpen:             s.didOpen,
		TextDocumentDidChange:           s.didChange,
		TextDocumentDidClose:            s.didClose,
		TextDocumentCodeLens:            s.codeLens,
		CodeLensResolve:                 s.codeLensResolve,
		WorkspaceDidChangeConfiguration: s.didChangeConfiguration,
	}

	s.unsubscribe = lenses.OnDidChangeCodeLenses(s.requestRefresh)

	return s
}

// Run serves on the given transport until the connection ends.
func (s *Server) Run(transport Transport, address string) error {
	srv := server.NewServer(&s.handler, s.name, s.debug)

	slog.Info("starting language server", "transport", transport, "address", address)

	switch transport {
	case TransportTCP:
		return srv.RunTCP(address)
	case TransportWebSocket:
		return srv.RunWebSocket(address)
	case TransportStdio:
		return srv.RunStdio()
	}

	return fmt.Errorf("unsupported transport %q", transport)
}

func (s *Server) capabilities() protocol.ServerCapabilities {
	capabilities := s.handler.CreateServerCapabilities()

	openClose := true
	change := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &change,
	}

	resolve := true
	capabilities.CodeLensProvider = &protocol.CodeLensOptions{ResolveProvider: &resolve}

	return capabilities
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	refresh := false
	if workspace := params.Capabilities.Workspace; workspace != nil && workspace.CodeLens != nil &&
		workspace.CodeLens.RefreshSupport != nil {
		refresh = *workspace.CodeLens.RefreshSupport
	}

	s.mu.Lock()
	s.client = ctx
	s.refreshSupported = refresh
	s.mu.Unlock()

	client := ""
	if params.ClientInfo != nil {
		client = params.ClientInfo.Name
	}

	slog.Info("initialize", "client", client, "refreshSupport", refresh)

	return protocol.InitializeResult{
		Capabilities: s.capabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    s.name,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	slog.Debug("client initialized")
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	slog.Info("shutdown")

	s.Close()

	return nil
}

// Close releases the subscription, cancels outstanding work and disposes
// the lens adapter. It is safe to call more than once.
func (s *Server) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
		s.documents.closeAll()
		s.cancel()
		s.lenses.Close()
	}
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	s.documents.open(item.URI, item.Version, item.Text)

	slog.Debug("document opened", "uri", item.URI, "version", item.Version,
		"size", humanize.Bytes(uint64(len(item.Text))))

	return nil
}

func (s *Server) didChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if err := s.documents.change(params.TextDocument.URI, params.TextDocument.Version, params.ContentChanges); err != nil {
		slog.Warn("failed to apply document change", "uri", params.TextDocument.URI, "error", err)
		return err
	}

	return nil
}

func (s *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.documents.close(params.TextDocument.URI)
	slog.Debug("document closed", "uri", params.TextDocument.URI)

	return nil
}

// lookup returns the open document, or reads unopened test files from disk.
func (s *Server) lookup(uri protocol.DocumentUri) (snapshot, error) {
	if snap, ok := s.documents.get(uri); ok {
		return snap, nil
	}

	path := URIToPath(uri)
	doc := m.Document{URI: uri, Filename: path}

	if domain.IsTestFile(path) {
		content, err := s.fs.ReadFile(s.documents.parent, m.Path(path))
		if err != nil {
			return snapshot{}, fmt.Errorf("failed to read %s: %w", path, err)
		}

		doc.Text = string(content)
	}

	return snapshot{Document: doc, Context: s.documents.parent}, nil
}

// codeLens answers null for documents that are not test files and an empty
// list for test files without targets.
func (s *Server) codeLens(_ *glsp.Context, params *protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	requestID := xid.New().String()
	uri := params.TextDocument.URI

	snap, err := s.lookup(uri)
	if err != nil {
		slog.Error("code lens lookup failed", "request", requestID, "uri", uri, "error", err)
		return nil, err
	}

	lenses, applicable, err := s.lenses.ProvideCodeLenses(snap.Context, snap.Document)
	if err != nil {
		slog.Warn("code lens failed", "request", requestID, "uri", uri, "version", snap.Document.Version, "error", err)
		return nil, err
	}

	if !applicable {
		slog.Debug("code lens not applicable", "request", requestID, "uri", uri)
		return nil, nil
	}

	result := make([]protocol.CodeLens, 0, len(lenses))
	for _, lens := range lenses {
		result = append(result, toProtocolLens(lens))
	}

	slog.Debug("code lens", "request", requestID, "uri", uri, "version", snap.Document.Version, "count", len(result))

	return result, nil
}

func (s *Server) codeLensResolve(_ *glsp.Context, params *protocol.CodeLens) (*protocol.CodeLens, error) {
	resolved, err := s.lenses.ResolveCodeLens(s.documents.parent, fromProtocolLens(*params))
	if err != nil {
		return nil, err
	}

	lens := toProtocolLens(resolved)

	return &lens, nil
}

func (s *Server) didChangeConfiguration(_ *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	slog.Debug("configuration changed", "settings", params.Settings)
	s.lenses.ConfigurationChanged()

	return nil
}

// requestRefresh runs on lens change notifications. The request is sent from
// its own goroutine so that the notifying handler is never blocked on the
// client's reply.
func (s *Server) requestRefresh() {
	s.mu.Lock()
	client := s.client
	supported := s.refreshSupported
	s.mu.Unlock()

	if client == nil || !supported {
		slog.Debug("client does not support code lens refresh")
		return
	}

	go func() {
		var result any
		client.Call(MethodCodeLensRefresh, nil, &result)
	}()
}

func toProtocolLens(lens m.CodeLens) protocol.CodeLens {
	result := protocol.CodeLens{
		Range: protocol.Range{
			Start: toProtocolPosition(lens.Range.Start),
			End:   toProtocolPosition(lens.Range.End),
		},
		Data: lens.Data,
	}

	if lens.Command != nil {
		result.Command = &protocol.Command{
			Title:     lens.Command.Title,
			Command:   lens.Command.Command,
			Arguments: lens.Command.Arguments,
		}
	}

	return result
}

func fromProtocolLens(lens protocol.CodeLens) m.CodeLens {
	result := m.CodeLens{
		Range: m.Range{
			Start: m.LensPosition{Line: int(lens.Range.Start.Line), Character: int(lens.Range.Start.Character)},
			End:   m.LensPosition{Line: int(lens.Range.End.Line), Character: int(lens.Range.End.Character)},
		},
		Data: lens.Data,
	}

	if lens.Command != nil {
		result.Command = &m.Command{
			Title:     lens.Command.Title,
			Command:   lens.Command.Command,
			Arguments: lens.Command.Arguments,
		}
	}

	return result
}

// toProtocolPosition converts to unsigned protocol coordinates; negative
// values are clamped to 0.
func toProtocolPosition(pos m.LensPosition) protocol.Position {
	line := max(pos.Line, 0)
	character := max(pos.Character, 0)

	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(character),
	}
}
