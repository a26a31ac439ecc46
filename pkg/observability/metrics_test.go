package observability_test

import (
	"strings"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordSessionActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	s := arbor.New(arbor.WithLifecycleHooks(m.Hooks()))
	s.AddChildToActive()
	s.AddChildToActive()
	s.SelectNode("42")
	s.Undo()
	s.Redo()
	s.Redo()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("add", observability.OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("select", observability.OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("redo", observability.OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues(string(domain.ReasonNothingToRedo))))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Nodes))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Depth))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HistoryCursor))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.HistoryLen))
}

func TestMetrics_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	m.ObserveChange(&domain.ChangeEvent{Operation: domain.OpAddChild, NodeCount: 2, MaxDepthSeen: 1})

	expected := `
# HELP arbor_tree_nodes Current number of nodes in the tree
# TYPE arbor_tree_nodes gauge
arbor_tree_nodes 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "arbor_tree_nodes")
	require.NoError(t, err)
}

func TestChain(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{OnChange: func(*domain.ChangeEvent) { order = append(order, "a") }}
	b := domain.LifecycleHooks{
		OnChange: func(*domain.ChangeEvent) { order = append(order, "b") },
		OnReject: func(*domain.RejectEvent) { order = append(order, "b-reject") },
	}

	hooks := observability.Chain(a, b)
	hooks.OnChange(&domain.ChangeEvent{})
	hooks.OnReject(&domain.RejectEvent{})

	assert.Equal(t, []string{"a", "b", "b-reject"}, order)
}
