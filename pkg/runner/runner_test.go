package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *session.Manager {
	return session.NewManager(arbor.New())
}

func TestRunner_TextSession(t *testing.T) {
	mgr := newManager()
	input := "add\nadd\nselect 2\n\nshow\nbogus\nquit\nadd\n"
	var out bytes.Buffer

	r := NewRunner(mgr, WithIO(strings.NewReader(input), &out), WithHeadless(true))
	require.NoError(t, r.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "add: active 2, 2 nodes, next id 3")
	assert.Contains(t, got, "select: active 2, 3 nodes, next id 4")
	assert.Contains(t, got, "└── 2 *")
	assert.Contains(t, got, "Error: unknown command")
	assert.NotContains(t, got, "[System]")

	state, _, err := mgr.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, state.NextID, "input after quit must not run")
}

func TestRunner_GreetingAndRenderer(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(newManager(),
		WithIO(strings.NewReader("show\n"), &out),
		WithRenderer(func(s string) (string, error) { return "RENDERED:" + s, nil }),
	)
	require.NoError(t, r.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "[System] Type 'help' for commands.")
	assert.Contains(t, got, "RENDERED:- **1** _(active, depth 0)_")
}

func TestRunner_JSONSession(t *testing.T) {
	input := "add\n\"select 1\"\nselect 9\nundo\nbogus\n"
	var out bytes.Buffer

	r := NewRunner(newManager(),
		WithInputHandler(NewJSONHandler(strings.NewReader(input), &out)),
		WithHeadless(true),
	)
	require.NoError(t, r.Run(context.Background()))

	dec := json.NewDecoder(&out)
	var responses []Response
	for dec.More() {
		var resp Response
		require.NoError(t, dec.Decode(&resp))
		responses = append(responses, resp)
	}
	require.Len(t, responses, 5)

	assert.True(t, responses[0].Result.Changed)
	assert.Equal(t, "2", responses[0].Result.State.ActiveNodeID)

	assert.Equal(t, "1", responses[1].Result.State.ActiveNodeID)

	assert.False(t, responses[2].Result.Changed)
	assert.Equal(t, "node_not_found", string(responses[2].Result.Reason))

	assert.True(t, responses[3].Result.Changed)
	assert.Equal(t, "1", responses[3].Result.State.ActiveNodeID)
	assert.Empty(t, responses[3].Result.State.Root.Children)

	assert.Contains(t, responses[4].Error, "unknown command")
}

func TestRunner_Exec(t *testing.T) {
	r := NewRunner(newManager())
	ctx := context.Background()

	_, err := r.Exec(ctx, "quit")
	assert.ErrorIs(t, err, ErrQuit)

	_, err = r.Exec(ctx, "select")
	assert.ErrorIs(t, err, session.ErrMissingNodeID)

	resp, err := r.Exec(ctx, "delete")
	require.NoError(t, err)
	assert.Equal(t, "delete: active 1, 1 node, next id 2\n", resp.Content)

	resp, err = r.Exec(ctx, "redo")
	require.NoError(t, err)
	assert.Equal(t, "redo: unchanged (nothing_to_redo)\n", resp.Content)

	resp, err = r.Exec(ctx, "nodes")
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "| **1** | - | 0 | 0 |")

	resp, err = r.Exec(ctx, "mermaid")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Content, "```mermaid\ngraph TD\n"))

	resp, err = r.Exec(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, "history: entry 2 of 2 (capacity 50), undo: yes, redo: no, next id: 2\n", resp.Content)

	resp, err = r.Exec(ctx, "help")
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "select <id>")
}

func TestRunner_StopsOnContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(newManager(), WithIO(pr, &bytes.Buffer{}), WithHeadless(true))

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}
