package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server exposes one guarded session over HTTP.
type Server struct {
	Manager *session.Manager
	Streams *StreamManager
	Logger  *slog.Logger

	metrics  http.Handler
	unlisten func()
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics (typically promhttp.HandlerFor).
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a Server and starts forwarding applied commands to SSE clients.
// Call Close to stop forwarding.
func NewServer(m *session.Manager, opts ...Option) *Server {
	s := &Server{
		Manager: m,
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.Logger)

	s.unlisten = m.Listen(func(res session.Result) {
		if res.Diff == nil {
			return
		}
		payload, err := json.Marshal(res.Diff)
		if err != nil {
			s.Logger.Error("Diff encode failed", "err", err)
			return
		}
		s.Streams.Broadcast(m.ID(), string(payload))
	})
	return s
}

// Close detaches the server from the session.
func (s *Server) Close() {
	s.unlisten()
}

// NewHandler creates a new HTTP handler for the session.
func NewHandler(m *session.Manager, opts ...Option) http.Handler {
	return NewServer(m, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/tree", s.GetTree)
	r.Get("/nodes", s.GetNodes)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)

	r.Post("/nodes", s.command(domain.OpAddChild))
	r.Delete("/active", s.command(domain.OpDelete))
	r.Put("/active", s.SelectNode)
	r.Post("/reset", s.command(domain.OpReset))
	r.Post("/undo", s.command(domain.OpUndo))
	r.Post("/redo", s.command(domain.OpRedo))

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TreeResponse is the body of GET /tree.
type TreeResponse struct {
	SessionID string               `json:"session_id"`
	State     domain.GraphState    `json:"state"`
	History   domain.HistoryStatus `json:"history"`
}

// NodeView is one entry of GET /nodes.
type NodeView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	ParentID string `json:"parent_id,omitempty"`
	Depth    int    `json:"depth"`
	Children int    `json:"children"`
	Active   bool   `json:"active,omitempty"`
}

// ConflictResponse is returned with 409 when a command's precondition failed.
type ConflictResponse struct {
	Error   string               `json:"error"`
	State   domain.GraphState    `json:"state"`
	History domain.HistoryStatus `json:"history"`
}

// SelectRequest is the body of PUT /active.
type SelectRequest struct {
	ID string `json:"id"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":        "arbor-http",
		"version":    strings.TrimSpace(arbor.Version),
		"session_id": s.Manager.ID(),
		"max_depth":  s.Manager.MaxDepth(),
	})
}

// GetTree handles the GET /tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	state, status, err := s.Manager.View(r.Context())
	if err != nil {
		s.fail(w, "GetTree", err)
		return
	}
	s.writeJSON(w, http.StatusOK, TreeResponse{SessionID: s.Manager.ID(), State: state, History: status})
}

// GetNodes handles the GET /nodes request.
func (s *Server) GetNodes(w http.ResponseWriter, r *http.Request) {
	state, _, err := s.Manager.View(r.Context())
	if err != nil {
		s.fail(w, "GetNodes", err)
		return
	}
	nodes := make([]NodeView, 0)
	state.Root.Walk(func(n *domain.Node) bool {
		nodes = append(nodes, NodeView{
			ID:       n.ID,
			Label:    n.Label,
			ParentID: n.ParentID,
			Depth:    n.Depth,
			Children: len(n.Children),
			Active:   n.ID == state.ActiveNodeID,
		})
		return true
	})
	s.writeJSON(w, http.StatusOK, nodes)
}

// GetGraph handles the GET /graph request with a Mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	state, _, err := s.Manager.View(r.Context())
	if err != nil {
		s.fail(w, "GetGraph", err)
		return
	}
	overlay := &graph.GraphOverlay{ActiveNode: state.ActiveNodeID, MaxDepth: s.Manager.MaxDepth()}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(state.Root, overlay))
}

// SelectNode handles the PUT /active request. An unknown id is not an error:
// the response reports changed=false.
func (s *Server) SelectNode(w http.ResponseWriter, r *http.Request) {
	var body SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("SelectNode: Invalid request body", "err", err)
		return
	}

	id, err := runner.SanitizeInput(strings.TrimSpace(body.ID))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.Logger.Warn("SelectNode: Input rejected", "err", err, "size", len(body.ID))
		return
	}

	res, err := s.Manager.Execute(r.Context(), domain.OpSelect, id)
	if err != nil {
		s.fail(w, "SelectNode", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) command(op domain.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.Manager.Execute(r.Context(), op, "")
		if err != nil {
			s.fail(w, string(op), err)
			return
		}
		if !res.Changed {
			s.writeJSON(w, http.StatusConflict, ConflictResponse{
				Error:   string(res.Reason),
				State:   res.State,
				History: res.History,
			})
			return
		}

		status := http.StatusOK
		if op == domain.OpAddChild {
			status = http.StatusCreated
		}
		s.writeJSON(w, status, res)
	}
}

func (s *Server) fail(w http.ResponseWriter, handler string, err error) {
	switch {
	case errors.Is(err, session.ErrMissingNodeID):
		http.Error(w, err.Error(), http.StatusBadRequest)
		s.Logger.Warn(handler+": Rejected", "err", err)
	case errors.Is(err, domain.ErrUnknownOperation):
		http.Error(w, err.Error(), http.StatusBadRequest)
		s.Logger.Warn(handler+": Rejected", "err", err)
	default:
		http.Error(w, fmt.Sprintf("%s error: %v", handler, err), http.StatusInternalServerError)
		s.Logger.Error(handler+" failed", "err", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "err", err)
	}
}
