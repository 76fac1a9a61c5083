// Package mcp exposes keypad sessions as Model Context Protocol tools.
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

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/internal/evaluator"
	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/aretw0/keypad/pkg/runner"
	"github.com/aretw0/keypad/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionsURI is the resource listing stored session IDs.
const SessionsURI = "keypad://sessions"

// SessionArgs identifies a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// PressKeysArgs are the arguments of the press_keys tool.
type PressKeysArgs struct {
	SessionID string `json:"session_id"`
	Keys      string `json:"keys"`
}

// EvaluateResult is returned by the evaluate tool.
type EvaluateResult struct {
	Result  string `json:"result" jsonschema_description:"Raw result as stored by the calculator (e.g. 15.0)"`
	Display string `json:"display" jsonschema_description:"Result as shown on the display (e.g. 15)"`
}

// Server wraps the keypad engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("keypad-mcp", strings.TrimSpace(keypad.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is cancelled.
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
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
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
	// TOOL: press_keys
	pressTool := mcp.NewTool("press_keys",
		mcp.WithDescription("Press calculator keys in a session (created on first use). "+
			"Keys are digits, '.', '+', '-', '*', '/', '=', 'neg' and 'c', space separated or run together like '12+3='. "+
			"Calculation errors are reported as ERROR on the display, not as tool errors."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("keys", mcp.Required(), mcp.Description("Keys to press, e.g. '12 + 3 ='")),
		mcp.WithOutputSchema[runner.RichResponse](),
	)
	s.mcpServer.AddTool(pressTool, mcp.NewStructuredToolHandler(s.handlePressKeys))

	// TOOL: get_display
	displayTool := mcp.NewTool("get_display",
		mcp.WithDescription("Read the display and state of an existing session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[runner.RichResponse](),
	)
	s.mcpServer.AddTool(displayTool, mcp.NewStructuredToolHandler(s.handleGetDisplay))

	// TOOL: clear
	clearTool := mcp.NewTool("clear",
		mcp.WithDescription("Press the clear key: resets the calculation and leaves the ERROR state."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[runner.RichResponse](),
	)
	s.mcpServer.AddTool(clearTool, mcp.NewStructuredToolHandler(s.handleClear))

	// TOOL: evaluate
	s.mcpServer.AddTool(mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate a single operation without touching any session."),
		mcp.WithString("left", mcp.Required(), mcp.Description("Left operand, e.g. '12' or '-0.5'")),
		mcp.WithString("right", mcp.Required(), mcp.Description("Right operand")),
		mcp.WithString("operator", mcp.Required(), mcp.Description("One of + - * /"), mcp.Enum("+", "-", "*", "/")),
	), s.handleEvaluate)
}

func (s *Server) handlePressKeys(ctx context.Context, request mcp.CallToolRequest, args PressKeysArgs) (runner.RichResponse, error) {
	if args.SessionID == "" {
		return runner.RichResponse{}, errors.New("session_id is required")
	}
	clean, err := runner.SanitizeInput(args.Keys)
	if err != nil {
		s.logger.Warn("MCP press_keys: Input rejected", "err", err, "size", len(args.Keys))
		return runner.RichResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	keys, err := domain.ParseKeys(clean)
	if err != nil {
		return runner.RichResponse{}, err
	}
	return s.press(ctx, args.SessionID, keys...)
}

func (s *Server) handleClear(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (runner.RichResponse, error) {
	if args.SessionID == "" {
		return runner.RichResponse{}, errors.New("session_id is required")
	}
	return s.press(ctx, args.SessionID, domain.Clear())
}

func (s *Server) handleGetDisplay(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (runner.RichResponse, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return runner.RichResponse{}, fmt.Errorf("load session %q: %w", args.SessionID, err)
	}
	return *runner.Render(s.engine, state), nil
}

func (s *Server) press(ctx context.Context, sessionID string, keys ...domain.Key) (runner.RichResponse, error) {
	_, next, err := s.sessions.Update(ctx, sessionID, func(state *domain.State) (*domain.State, error) {
		return s.engine.Press(ctx, state, keys...)
	})
	if err != nil {
		return runner.RichResponse{}, err
	}
	s.logger.Debug("MCP: keys applied", "session_id", sessionID, "keys", domain.FormatKeys(keys))
	return *runner.Render(s.engine, next), nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	left, err := request.RequireString("left")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	right, err := request.RequireString("right")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	op, err := domain.ParseOperator(request.GetString("operator", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := evaluator.Apply(strings.TrimSpace(left), strings.TrimSpace(right), op)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluate failed: %v", err)), nil
	}
	out := EvaluateResult{Result: result, Display: domain.FormatResult(result)}
	return mcp.NewToolResultStructured(out, out.Display), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Stored calculator sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, err := json.Marshal(ids)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SessionsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
