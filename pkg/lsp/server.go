// Package lsp serves import folding ranges to editors over the Language
// Server Protocol.
package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/usefold/pkg/folding"
	"github.com/Sumatoshi-tech/usefold/pkg/language"
	"github.com/Sumatoshi-tech/usefold/pkg/observability"
	"github.com/Sumatoshi-tech/usefold/pkg/safeconv"
)

const (
	serverName     = "usefold"
	opFoldingRange = "lsp.foldingRange"
)

// Options configures a Server. Zero values disable the matching concern.
type Options struct {
	// Languages lists the language ids that receive folding ranges.
	// An empty set folds PHP only.
	Languages language.Set
	Logger    *slog.Logger
	Tracer    trace.Tracer
	RED       *observability.REDMetrics
	Fold      *observability.FoldMetrics
	Version   string
}

// Server implements the import folding LSP server.
type Server struct {
	store     *DocumentStore
	handler   protocol.Handler
	languages language.Set
	logger    *slog.Logger
	tracer    trace.Tracer
	red       *observability.REDMetrics
	fold      *observability.FoldMetrics
	version   string
}

// NewServer creates a new LSP server with default handlers.
func NewServer(opts Options) *Server {
	srv := &Server{
		store:     NewDocumentStore(),
		languages: opts.Languages,
		logger:    opts.Logger,
		tracer:    opts.Tracer,
		red:       opts.RED,
		fold:      opts.Fold,
		version:   opts.Version,
	}

	if len(srv.languages.IDs()) == 0 {
		srv.languages = language.NewSet(language.PHP)
	}

	if srv.logger == nil {
		srv.logger = slog.New(slog.DiscardHandler)
	}

	if srv.tracer == nil {
		srv.tracer = nooptrace.NewTracerProvider().Tracer(serverName)
	}

	srv.handler = protocol.Handler{
		Initialize:               srv.initialize,
		Initialized:              srv.initialized,
		Shutdown:                 srv.shutdown,
		SetTrace:                 srv.setTrace,
		TextDocumentDidOpen:      srv.didOpen,
		TextDocumentDidChange:    srv.didChange,
		TextDocumentDidClose:     srv.didClose,
		TextDocumentFoldingRange: srv.foldingRange,
	}

	return srv
}

// Store returns the server's document store.
func (srv *Server) Store() *DocumentStore {
	return srv.store
}

// Run serves the protocol on stdio until the client disconnects.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	err := lspServer.RunStdio()
	if err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) capabilities() protocol.ServerCapabilities {
	capabilities := srv.handler.CreateServerCapabilities()

	openClose := true
	syncKind := protocol.TextDocumentSyncKindIncremental

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &syncKind,
	}
	capabilities.FoldingRangeProvider = true

	return capabilities
}

func (srv *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	var version *string
	if srv.version != "" {
		version = &srv.version
	}

	if params != nil && params.ClientInfo != nil {
		srv.logger.Info("lsp client connected", "client", params.ClientInfo.Name)
	}

	return protocol.InitializeResult{
		Capabilities: srv.capabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument

	srv.store.Set(item.URI, Document{
		Text:       item.Text,
		LanguageID: language.Normalize(item.LanguageID),
		Version:    int32(item.Version),
	})

	return nil
}

func (srv *Server) didChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	ok := srv.store.Update(uri, int32(params.TextDocument.Version), func(text string) string {
		for _, change := range params.ContentChanges {
			next, applied := applyChange(text, change)
			if !applied {
				srv.logger.Warn("unsupported content change", "type", fmt.Sprintf("%T", change))

				continue
			}

			text = next
		}

		return text
	})
	if !ok {
		srv.logger.Debug("change for unopened document ignored")
	}

	return nil
}

func (srv *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv.store.Delete(params.TextDocument.URI)

	return nil
}

func (srv *Server) foldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	return srv.FoldingRanges(context.Background(), params.TextDocument.URI), nil
}

// FoldingRanges returns the import folding ranges of an open document. It
// returns an empty list for unknown URIs and for languages outside the
// configured set.
func (srv *Server) FoldingRanges(ctx context.Context, uri protocol.DocumentUri) []protocol.FoldingRange {
	start := time.Now()

	done := srv.red.TrackInflight(ctx, opFoldingRange)
	defer done()

	ctx, span := srv.tracer.Start(ctx, opFoldingRange)
	defer span.End()

	result := []protocol.FoldingRange{}

	doc, ok := srv.store.Get(uri)

	switch {
	case !ok:
		srv.logger.DebugContext(ctx, "folding range for unknown document")
	case !srv.languages.Allows(doc.LanguageID):
		srv.fold.RecordSkip(ctx, doc.LanguageID)
		srv.logger.DebugContext(ctx, "language not folded", "language", doc.LanguageID)
	default:
		lines := folding.FromText(doc.Text)
		ranges := folding.Scan(lines)

		srv.fold.RecordScan(ctx, doc.LanguageID, lines.LineCount(), len(ranges))

		result = toProtocol(ranges)
	}

	span.SetAttributes(
		attribute.String("fold.language", doc.LanguageID),
		attribute.Int("fold.ranges", len(result)),
	)
	span.SetStatus(codes.Ok, "")

	srv.red.RecordRequest(ctx, opFoldingRange, observability.StatusOK, time.Since(start))
	srv.logger.DebugContext(ctx, "folding ranges computed", "ranges", len(result))

	return result
}

func toProtocol(ranges []folding.Range) []protocol.FoldingRange {
	out := make([]protocol.FoldingRange, 0, len(ranges))

	for _, rng := range ranges {
		kind := string(rng.Kind)

		out = append(out, protocol.FoldingRange{
			StartLine: safeconv.MustIntToUint32(rng.StartLine),
			EndLine:   safeconv.MustIntToUint32(rng.EndLine),
			Kind:      &kind,
		})
	}

	return out
}
