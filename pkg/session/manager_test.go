package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *session.Manager {
	s := arbor.New(arbor.WithStrictInvariants(true), arbor.WithSessionID("sess-1"))
	return session.NewManager(s, session.WithSessionID(s.ID))
}

func TestManager_Execute(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	res, err := m.Execute(ctx, domain.OpAddChild, "")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "2", res.State.ActiveNodeID)
	assert.True(t, res.History.CanUndo)
	require.NotNil(t, res.Diff)
	assert.Equal(t, "sess-1", res.Diff.SessionID)
	require.Len(t, res.Diff.Added, 1)
	assert.Equal(t, "2", res.Diff.Added[0].ID)

	res, err = m.Execute(ctx, domain.OpSelect, "404")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, domain.ReasonNotFound, res.Reason)
	assert.Nil(t, res.Diff)

	res, err = m.Execute(ctx, domain.OpRedo, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonNothingToRedo, res.Reason)
}

func TestManager_ExecuteErrors(t *testing.T) {
	m := newManager()

	_, err := m.Execute(context.Background(), domain.OpSelect, "")
	assert.ErrorIs(t, err, session.ErrMissingNodeID)

	_, err = m.Execute(context.Background(), domain.Operation("rename"), "")
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Execute(ctx, domain.OpAddChild, "")
	assert.ErrorIs(t, err, context.Canceled)

	state, _, err := m.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, state.NextID, "failed calls must not touch the session")
}

func TestManager_MaxDepthReason(t *testing.T) {
	s := arbor.New(arbor.WithMaxDepth(1))
	m := session.NewManager(s)
	ctx := context.Background()

	_, err := m.Execute(ctx, domain.OpAddChild, "")
	require.NoError(t, err)
	res, err := m.Execute(ctx, domain.OpAddChild, "")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, domain.ReasonMaxDepth, res.Reason)
	assert.Equal(t, 1, m.MaxDepth())
}

func TestManager_Listen(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	var got []domain.Operation
	cancel := m.Listen(func(r session.Result) { got = append(got, r.Operation) })

	m.Execute(ctx, domain.OpAddChild, "")
	m.Execute(ctx, domain.OpUndo, "")
	m.Execute(ctx, domain.OpUndo, "") // refused, not broadcast
	cancel()
	m.Execute(ctx, domain.OpRedo, "")

	assert.Equal(t, []domain.Operation{domain.OpAddChild, domain.OpUndo}, got)
}

func TestManager_ConcurrentCommands(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, err := m.Execute(ctx, domain.OpAddChild, "")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	err := m.WithLock(ctx, func(s ports.TreeSession) error {
		assert.Len(t, s.AllNodes(), 101)
		assert.Equal(t, 102, s.NextNodeID())
		return nil
	})
	require.NoError(t, err)
}

func TestManager_ListenersSeeCommitOrder(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	var got []session.Result
	m.Listen(func(r session.Result) { got = append(got, r) })

	// Stays below the history capacity so the cursor advances on every add.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, err := m.Execute(ctx, domain.OpAddChild, "")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.Len(t, got, 40)
	for i, r := range got {
		assert.Equal(t, i+1, r.History.Cursor, "result %d out of order", i)
		require.NotNil(t, r.Diff)
		require.Len(t, r.Diff.Added, 1)
		assert.Equal(t, domain.FormatID(i+2), r.Diff.Added[0].ID)
	}
}
