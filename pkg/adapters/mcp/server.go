// Package mcp exposes the payflow engine as an MCP server so agent
// hosts can drive payroll conversations as tool calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"github.com/payflowkr/payflow"
	"github.com/payflowkr/payflow/pkg/domain"
)

// ChatResponse is the structured result of a conversational turn.
type ChatResponse struct {
	Handled     bool     `json:"handled" jsonschema_description:"Whether the scenario engine handled the turn"`
	Reply       string   `json:"reply" jsonschema_description:"Assistant reply text"`
	Stage       string   `json:"stage,omitempty" jsonschema_description:"Workflow stage after the turn"`
	Suggestions []string `json:"suggestions,omitempty" jsonschema_description:"Suggested follow-up utterances"`
}

// Engine defines the interface required by the MCP server.
type Engine interface {
	HandleWithFallback(ctx context.Context, sessionID, text string) (*domain.Outcome, error)
	Context(ctx context.Context, sessionID string) (*domain.ScenarioContext, error)
	Reset(ctx context.Context, sessionID string) error
}

// Server wraps the payflow engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("payflow-mcp", strings.TrimSpace(payflow.Version)),
	}
	s.registerTools()
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
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

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

type chatArgs struct {
	SessionID string `mapstructure:"session_id"`
	Text      string `mapstructure:"text"`
}

type sessionArgs struct {
	SessionID string `mapstructure:"session_id"`
}

func (s *Server) registerTools() {
	chatTool := mcp.NewTool("payroll_chat",
		mcp.WithDescription("Send one user utterance to the payroll assistant and get the reply."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session identifier")),
		mcp.WithString("text", mcp.Required(), mcp.Description("User utterance, typically Korean")),
		mcp.WithOutputSchema[ChatResponse](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	statusTool := mcp.NewTool("payroll_status",
		mcp.WithDescription("Inspect the stored workflow state of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session identifier")),
	)
	s.mcpServer.AddTool(statusTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args sessionArgs
		if err := mapstructure.Decode(request.GetArguments(), &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		sc, err := s.engine.Context(ctx, args.SessionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
		}
		if sc == nil {
			return mcp.NewToolResultText(`{"active":false}`), nil
		}
		jsonBytes, _ := json.Marshal(sc)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	resetTool := mcp.NewTool("payroll_reset",
		mcp.WithDescription("Clear the stored workflow state of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session identifier")),
	)
	s.mcpServer.AddTool(resetTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args sessionArgs
		if err := mapstructure.Decode(request.GetArguments(), &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if err := s.engine.Reset(ctx, args.SessionID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
		}
		return mcp.NewToolResultText(`{"reset":true}`), nil
	})
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, rawArgs map[string]interface{}) (ChatResponse, error) {
	var args chatArgs
	if err := mapstructure.Decode(rawArgs, &args); err != nil {
		return ChatResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.SessionID == "" || args.Text == "" {
		return ChatResponse{}, fmt.Errorf("session_id and text are required")
	}

	out, err := s.engine.HandleWithFallback(ctx, args.SessionID, args.Text)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("chat failed: %w", err)
	}

	return ChatResponse{
		Handled:     out.Handled,
		Reply:       out.Reply,
		Stage:       string(out.Stage),
		Suggestions: out.Suggestions,
	}, nil
}
