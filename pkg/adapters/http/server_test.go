package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...arbor.Option) (*Server, http.Handler) {
	t.Helper()
	s := arbor.New(opts...)
	srv := NewServer(session.NewManager(s, session.WithSessionID(s.ID)))
	t.Cleanup(srv.Close)
	return srv, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestServer_Scenario(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "POST", "/nodes", "")
	require.Equal(t, http.StatusCreated, w.Code)
	res := decode[session.Result](t, w)
	assert.True(t, res.Changed)
	assert.Equal(t, "2", res.State.ActiveNodeID)
	require.NotNil(t, res.Diff)
	assert.Equal(t, "2", res.Diff.Added[0].ID)

	do(t, h, "POST", "/nodes", "")

	w = do(t, h, "PUT", "/active", `{"id":"2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", decode[session.Result](t, w).State.ActiveNodeID)

	do(t, h, "POST", "/nodes", "")

	w = do(t, h, "DELETE", "/active", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", decode[session.Result](t, w).State.ActiveNodeID)

	w = do(t, h, "POST", "/undo", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/tree", "")
	require.Equal(t, http.StatusOK, w.Code)
	tree := decode[TreeResponse](t, w)
	assert.Equal(t, "4", tree.State.ActiveNodeID)
	assert.Equal(t, 5, tree.State.NextID)
	assert.True(t, tree.History.CanRedo)

	w = do(t, h, "GET", "/nodes", "")
	nodes := decode[[]NodeView](t, w)
	require.Len(t, nodes, 4)
	assert.Equal(t, NodeView{ID: "1", Label: "1", Depth: 0, Children: 1}, nodes[0])
	assert.Equal(t, NodeView{ID: "4", Label: "4", ParentID: "2", Depth: 2, Active: true}, nodes[3])

	w = do(t, h, "POST", "/redo", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "POST", "/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[session.Result](t, w).State.NextID)
}

func TestServer_Conflicts(t *testing.T) {
	_, h := newTestServer(t, arbor.WithMaxDepth(1))

	w := do(t, h, "POST", "/undo", "")
	require.Equal(t, http.StatusConflict, w.Code)
	conflict := decode[ConflictResponse](t, w)
	assert.Equal(t, string(domain.ReasonNothingToUndo), conflict.Error)
	assert.Equal(t, "1", conflict.State.ActiveNodeID)

	do(t, h, "POST", "/nodes", "")
	w = do(t, h, "POST", "/nodes", "")
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(domain.ReasonMaxDepth), decode[ConflictResponse](t, w).Error)

	w = do(t, h, "POST", "/redo", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestServer_SelectNode(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "PUT", "/active", `{"id":"99"}`)
	require.Equal(t, http.StatusOK, w.Code, "select miss is not an error")
	res := decode[session.Result](t, w)
	assert.False(t, res.Changed)
	assert.Equal(t, domain.ReasonNotFound, res.Reason)

	w = do(t, h, "PUT", "/active", `{"id":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "PUT", "/active", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "PUT", "/active", `{"id":"`+strings.Repeat("9", 5000)+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_InfoHealthGraph(t *testing.T) {
	srv, h := newTestServer(t, arbor.WithSessionID("sess-1"))

	w := do(t, h, "GET", "/health", "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	info := decode[map[string]any](t, w)
	assert.Equal(t, "arbor-http", info["app"])
	assert.Equal(t, "sess-1", info["session_id"])
	assert.Equal(t, srv.Manager.ID(), info["session_id"])
	assert.EqualValues(t, 100, info["max_depth"])

	w = do(t, h, "GET", "/graph", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph TD")
	assert.Contains(t, w.Body.String(), "class n1 current;")

	w = do(t, h, "OPTIONS", "/nodes", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, h, "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "metrics are opt-in")
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "arbor_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	srv := NewServer(session.NewManager(arbor.New()),
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	defer srv.Close()

	w := do(t, srv.Handler(), "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arbor_test_total 1")
}

func TestSubscribeEvents_Session(t *testing.T) {
	srv, h := newTestServer(t, arbor.WithSessionID("sess-1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/events?watch=nodes", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(wSub, reqSub)
	}()

	require.Eventually(t, func() bool {
		return srv.Streams.Subscribers("sess-1") == 1
	}, time.Second, 10*time.Millisecond)

	do(t, h, "POST", "/nodes", "")
	do(t, h, "PUT", "/active", `{"id":"1"}`) // active-only diff, filtered out

	require.Eventually(t, func() bool {
		return srv.Streams.pending("sess-1") == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"session_id":"sess-1"`)
	assert.Contains(t, output, `"added":[{"id":"2","label":"2","parent_id":"1","depth":1}]`)
	assert.Equal(t, 1, strings.Count(output, "data: {"), "only node changes pass the filter")
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(logging.NewNop())
	ch, cancel := sm.Subscribe("s")
	defer cancel()

	for i := 0; i < 20; i++ {
		sm.Broadcast("s", "msg")
	}
	assert.Len(t, ch, cap(ch))
	sm.Broadcast("other", "msg")
}

func (sm *StreamManager) pending(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	n := 0
	for ch := range sm.subscribers[sessionID] {
		n += len(ch)
	}
	return n
}
