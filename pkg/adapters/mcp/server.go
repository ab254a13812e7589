package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/domrec"
	"github.com/aretw0/domrec/internal/logging"
	"github.com/aretw0/domrec/internal/validator"
	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/persistence"
	"github.com/aretw0/domrec/pkg/ports"
	"github.com/aretw0/domrec/pkg/replay"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const resourcePrefix = "domrec://actions"

// KeyLister enumerates the keys a store holds.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// ActionList is the listing of a stored script.
type ActionList struct {
	Key   string   `json:"key" jsonschema_description:"Store key of the script"`
	Count int      `json:"count" jsonschema_description:"Number of actions"`
	Lines []string `json:"lines" jsonschema_description:"One line per action: ms since the first action, event type, innermost selector"`
}

// ActionDetail describes a single action.
type ActionDetail struct {
	Key       string            `json:"key"`
	Index     int               `json:"index"`
	Selectors []string          `json:"selectors" jsonschema_description:"Selector chain, one entry per shadow tree"`
	Event     domain.SavedEvent `json:"event"`
	Details   string            `json:"details" jsonschema_description:"Human readable rendering of the action"`
}

// ReplayResult summarizes a headless replay.
type ReplayResult struct {
	Key            string  `json:"key"`
	Total          int     `json:"total"`
	Replayed       int     `json:"replayed"`
	Skipped        int     `json:"skipped"`
	SkippedIndexes []int   `json:"skipped_indexes" jsonschema_description:"Indexes of actions that could not be dispatched"`
	DurationMs     float64 `json:"duration_ms"`
}

// KeyList is the set of stored script keys.
type KeyList struct {
	Keys []string `json:"keys"`
}

type listArgs struct {
	Key string `json:"key"`
}

type getArgs struct {
	Key   string `json:"key"`
	Index int    `json:"index"`
}

type replayArgs struct {
	Key    string `json:"key"`
	Markup string `json:"markup"`
	Timed  bool   `json:"timed"`
}

type saveArgs struct {
	Key     string `json:"key"`
	Actions string `json:"actions"`
}

// Server exposes an action store to MCP clients.
type Server struct {
	store     ports.ActionStore
	keys      KeyLister
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithKeyLister enables the list_keys tool.
func WithKeyLister(k KeyLister) Option {
	return func(s *Server) {
		s.keys = k
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(store ports.ActionStore, opts ...Option) *Server {
	s := &Server{
		store:     store,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("domrec-mcp", strings.TrimSpace(domrec.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	keyParam := mcp.WithString("key", mcp.Description("Store key of the script (default: "+domain.ActionsKey+")"))

	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List the actions of a stored script, one line per action."),
		keyParam,
		mcp.WithOutputSchema[ActionList](),
	), mcp.NewStructuredToolHandler(s.handleListActions))

	s.mcpServer.AddTool(mcp.NewTool("get_action",
		mcp.WithDescription("Show the selector chain and event of one action."),
		keyParam,
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based action index")),
		mcp.WithOutputSchema[ActionDetail](),
	), mcp.NewStructuredToolHandler(s.handleGetAction))

	s.mcpServer.AddTool(mcp.NewTool("replay_actions",
		mcp.WithDescription("Replay a stored script against an HTML page and report which actions reached their targets."),
		keyParam,
		mcp.WithString("markup", mcp.Required(), mcp.Description("HTML of the page to replay against")),
		mcp.WithBoolean("timed", mcp.Description("Honour the recorded gaps between actions (default: replay instantly)")),
		mcp.WithOutputSchema[ReplayResult](),
	), mcp.NewStructuredToolHandler(s.handleReplay))

	s.mcpServer.AddTool(mcp.NewTool("save_actions",
		mcp.WithDescription("Store a script given as a JSON array of actions."),
		keyParam,
		mcp.WithString("actions", mcp.Required(), mcp.Description("JSON array of {selectors, event} objects")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args saveArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		n, err := s.save(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("saved %d actions under %s", n, keyOr(args.Key))), nil
	})

	if s.keys != nil {
		s.mcpServer.AddTool(mcp.NewTool("list_keys",
			mcp.WithDescription("List the keys of every stored script."),
			mcp.WithOutputSchema[KeyList](),
		), mcp.NewStructuredToolHandler(s.handleListKeys))
	}
}

func keyOr(key string) string {
	if key == "" {
		return domain.ActionsKey
	}
	return key
}

func (s *Server) load(ctx context.Context, key string) ([]domain.Action, error) {
	actions, err := s.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrActionsNotFound) {
			return nil, fmt.Errorf("no script stored under %s", key)
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return actions, nil
}

func (s *Server) handleListActions(ctx context.Context, _ mcp.CallToolRequest, args listArgs) (ActionList, error) {
	key := keyOr(args.Key)
	actions, err := s.load(ctx, key)
	if err != nil {
		return ActionList{}, err
	}
	lines := domrec.ActionLines(actions)
	if lines == nil {
		lines = []string{}
	}
	return ActionList{Key: key, Count: len(actions), Lines: lines}, nil
}

func (s *Server) handleGetAction(ctx context.Context, _ mcp.CallToolRequest, args getArgs) (ActionDetail, error) {
	key := keyOr(args.Key)
	actions, err := s.load(ctx, key)
	if err != nil {
		return ActionDetail{}, err
	}
	if args.Index < 0 || args.Index >= len(actions) {
		return ActionDetail{}, fmt.Errorf("%w: %d of %d", domain.ErrIndexOutOfRange, args.Index, len(actions))
	}
	a := actions[args.Index]
	return ActionDetail{
		Key:       key,
		Index:     args.Index,
		Selectors: a.Selectors,
		Event:     a.Event,
		Details:   domrec.ActionDetails(a),
	}, nil
}

func (s *Server) handleReplay(ctx context.Context, _ mcp.CallToolRequest, args replayArgs) (ReplayResult, error) {
	key := keyOr(args.Key)
	actions, err := s.load(ctx, key)
	if err != nil {
		return ReplayResult{}, err
	}
	win, err := dom.ParseHTMLString(args.Markup)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("invalid markup: %w", err)
	}

	var pacer replay.Pacer = replay.InstantPacer{}
	if args.Timed {
		pacer = replay.NewFramePacer()
	}
	report, err := replay.New(win, replay.WithPacer(pacer), replay.WithLogger(s.logger)).Play(ctx, actions)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay failed: %w", err)
	}
	s.logger.Info("headless replay finished", "key", key, "replayed", report.Replayed, "skipped", report.Skipped)

	skipped := report.SkippedIndexes
	if skipped == nil {
		skipped = []int{}
	}
	return ReplayResult{
		Key:            key,
		Total:          len(actions),
		Replayed:       report.Replayed,
		Skipped:        report.Skipped,
		SkippedIndexes: skipped,
		DurationMs:     float64(report.Duration.Microseconds()) / 1000,
	}, nil
}

func (s *Server) save(ctx context.Context, args saveArgs) (int, error) {
	actions, err := persistence.DecodeActions([]byte(args.Actions))
	if err != nil {
		return 0, fmt.Errorf("invalid actions: %w", err)
	}
	if err := validator.ValidateScript(actions); err != nil {
		return 0, err
	}
	if err := s.store.Save(ctx, keyOr(args.Key), actions); err != nil {
		return 0, fmt.Errorf("failed to save: %w", err)
	}
	return len(actions), nil
}

func (s *Server) handleListKeys(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (KeyList, error) {
	keys, err := s.keys.Keys(ctx)
	if err != nil {
		return KeyList{}, fmt.Errorf("failed to list keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return KeyList{Keys: keys}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: domrec://actions (default script)
	s.mcpServer.AddResource(mcp.NewResource(resourcePrefix, "Recorded actions",
		mcp.WithResourceDescription("The script stored under "+domain.ActionsKey),
		mcp.WithMIMEType("application/json"),
	), s.readActions)

	// EXPOSE: domrec://actions/{key}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(resourcePrefix+"/{key}", "Recorded actions by key",
		mcp.WithTemplateDescription("The script stored under a key"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readActions)
}

func (s *Server) readActions(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	key := strings.TrimPrefix(strings.TrimPrefix(uri, resourcePrefix), "/")
	actions, err := s.load(ctx, keyOr(key))
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(actions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actions: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(raw),
		},
	}, nil
}
