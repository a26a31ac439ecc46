package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	TreeURI  = "arbor://tree"
	GraphURI = "arbor://graph"
)

// CommandResponse is the structured result of every mutating tool.
type CommandResponse struct {
	Operation    string               `json:"operation" jsonschema_description:"The command that ran"`
	Changed      bool                 `json:"changed" jsonschema_description:"False when a precondition failed and nothing changed"`
	Reason       string               `json:"reason,omitempty" jsonschema_description:"Why the command was refused"`
	ActiveNodeID string               `json:"active_node_id" jsonschema_description:"The selected node after the command"`
	NextID       int                  `json:"next_id" jsonschema_description:"The id the next created node receives"`
	NodeCount    int                  `json:"node_count" jsonschema_description:"Number of nodes in the tree"`
	History      domain.HistoryStatus `json:"history" jsonschema_description:"Undo/redo cursor"`
	Diff         *domain.StateDiff    `json:"diff,omitempty" jsonschema_description:"Nodes added or removed by the command"`
}

// NodeView is the flat form of a node.
type NodeView struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Depth    int    `json:"depth"`
	Children int    `json:"children"`
}

// TreeResponse describes the whole session.
type TreeResponse struct {
	ActiveNodeID string               `json:"active_node_id" jsonschema_description:"The selected node"`
	NextID       int                  `json:"next_id" jsonschema_description:"The id the next created node receives"`
	MaxDepth     int                  `json:"max_depth" jsonschema_description:"Deepest level a node may be created at"`
	Nodes        []NodeView           `json:"nodes" jsonschema_description:"Every node, parents before children"`
	Outline      string               `json:"outline" jsonschema_description:"Markdown outline of the tree"`
	History      domain.HistoryStatus `json:"history" jsonschema_description:"Undo/redo cursor"`
}

// Server exposes a guarded session as an MCP Server.
type Server struct {
	manager   *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(m *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:   m,
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version)),
		logger:    logging.NewNop(),
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

// ServeSSE serves over SSE on port until ctx is done.
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
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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
	commands := []struct {
		name string
		op   domain.Operation
		desc string
	}{
		{"add_child", domain.OpAddChild, "Add a child under the active node and make it active. Refused at the maximum depth."},
		{"delete_active", domain.OpDelete, "Delete the active node and its subtree; its parent becomes active. Deleting the root resets the tree."},
		{"reset_graph", domain.OpReset, "Discard the tree and start over from a single root node \"1\"."},
		{"undo", domain.OpUndo, "Restore the previous tree version."},
		{"redo", domain.OpRedo, "Re-apply the next tree version after an undo."},
	}
	for _, c := range commands {
		tool := mcp.NewTool(c.name,
			mcp.WithDescription(c.desc),
			mcp.WithOutputSchema[CommandResponse](),
		)
		s.mcpServer.AddTool(tool, mcp.NewStructuredToolHandler(s.command(c.op)))
	}

	selectTool := mcp.NewTool("select_node",
		mcp.WithDescription("Make the node with the given id active. Unknown ids change nothing."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id, e.g. \"3\"")),
		mcp.WithOutputSchema[CommandResponse](),
	)
	s.mcpServer.AddTool(selectTool, mcp.NewStructuredToolHandler(s.handleSelect))

	treeTool := mcp.NewTool("get_tree",
		mcp.WithDescription("Describe the current tree, the active node and the history cursor."),
		mcp.WithOutputSchema[TreeResponse](),
	)
	s.mcpServer.AddTool(treeTool, mcp.NewStructuredToolHandler(s.handleGetTree))
}

func (s *Server) command(op domain.Operation) func(context.Context, mcp.CallToolRequest, map[string]interface{}) (CommandResponse, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CommandResponse, error) {
		return s.execute(ctx, op, "")
	}
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CommandResponse, error) {
	id, _ := args["id"].(string)
	clean, err := runner.SanitizeInput(strings.TrimSpace(id))
	if err != nil {
		s.logger.Warn("MCP select_node: Input rejected", "err", err, "size", len(id))
		return CommandResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.execute(ctx, domain.OpSelect, clean)
}

func (s *Server) execute(ctx context.Context, op domain.Operation, arg string) (CommandResponse, error) {
	res, err := s.manager.Execute(ctx, op, arg)
	if err != nil {
		s.logger.Warn("MCP command failed", "operation", op, "err", err)
		return CommandResponse{}, fmt.Errorf("%s failed: %w", op, err)
	}

	count := 0
	res.State.Root.Walk(func(*domain.Node) bool {
		count++
		return true
	})
	return CommandResponse{
		Operation:    string(res.Operation),
		Changed:      res.Changed,
		Reason:       string(res.Reason),
		ActiveNodeID: res.State.ActiveNodeID,
		NextID:       res.State.NextID,
		NodeCount:    count,
		History:      res.History,
		Diff:         res.Diff,
	}, nil
}

func (s *Server) handleGetTree(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TreeResponse, error) {
	state, status, err := s.manager.View(ctx)
	if err != nil {
		return TreeResponse{}, fmt.Errorf("view failed: %w", err)
	}

	nodes := make([]NodeView, 0)
	state.Root.Walk(func(n *domain.Node) bool {
		nodes = append(nodes, NodeView{ID: n.ID, ParentID: n.ParentID, Depth: n.Depth, Children: len(n.Children)})
		return true
	})
	return TreeResponse{
		ActiveNodeID: state.ActiveNodeID,
		NextID:       state.NextID,
		MaxDepth:     s.manager.MaxDepth(),
		Nodes:        nodes,
		Outline:      tui.Outline(state.Root, state.ActiveNodeID),
		History:      status,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TreeURI, "Current Tree",
		mcp.WithResourceDescription("The live tree as JSON, with the active node and allocator."),
		mcp.WithMIMEType("application/json"),
	), s.handleTreeResource)

	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Tree Diagram",
		mcp.WithResourceDescription("The live tree as a Mermaid flowchart."),
		mcp.WithMIMEType("text/vnd.mermaid"),
	), s.handleGraphResource)
}

func (s *Server) handleTreeResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	state, _, err := s.manager.View(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree: %w", err)
	}
	jsonBytes, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TreeURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) handleGraphResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	state, _, err := s.manager.View(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree: %w", err)
	}
	overlay := &graph.GraphOverlay{ActiveNode: state.ActiveNodeID, MaxDepth: s.manager.MaxDepth()}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "text/vnd.mermaid",
			Text:     graph.GenerateMermaid(state.Root, overlay),
		},
	}, nil
}
