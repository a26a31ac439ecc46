package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
)

// Report is the outcome of a replay.
type Report struct {
	Results []session.Result     `json:"results"`
	Final   domain.GraphState    `json:"final"`
	History domain.HistoryStatus `json:"history"`
}

// Applied counts the steps that changed the session.
func (r *Report) Applied() int {
	n := 0
	for _, res := range r.Results {
		if res.Changed {
			n++
		}
	}
	return n
}

// Replay runs every step against m in order, then checks the expectation.
// Refused steps are recorded, not treated as failures.
func (sc *Script) Replay(ctx context.Context, m *session.Manager) (*Report, error) {
	report := &Report{Results: make([]session.Result, 0, len(sc.Steps))}

	for i, step := range sc.Steps {
		res, err := m.Execute(ctx, step.Op, step.ID)
		if err != nil {
			return report, fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
		report.Results = append(report.Results, res)
	}

	state, status, err := m.View(ctx)
	if err != nil {
		return report, err
	}
	report.Final = state
	report.History = status

	if sc.Expect != nil {
		if err := sc.Expect.Check(state); err != nil {
			return report, err
		}
	}
	return report, nil
}

// Check compares state against the expectation and reports every mismatch.
func (e *Expect) Check(state domain.GraphState) error {
	count, deepest := 0, 0
	state.Root.Walk(func(n *domain.Node) bool {
		count++
		if n.Depth > deepest {
			deepest = n.Depth
		}
		return true
	})

	var problems []string
	if e.Nodes != nil && *e.Nodes != count {
		problems = append(problems, fmt.Sprintf("nodes: want %d, got %d", *e.Nodes, count))
	}
	if e.Active != nil && *e.Active != state.ActiveNodeID {
		problems = append(problems, fmt.Sprintf("active: want %q, got %q", *e.Active, state.ActiveNodeID))
	}
	if e.NextID != nil && *e.NextID != state.NextID {
		problems = append(problems, fmt.Sprintf("next_id: want %d, got %d", *e.NextID, state.NextID))
	}
	if e.Depth != nil && *e.Depth != deepest {
		problems = append(problems, fmt.Sprintf("depth: want %d, got %d", *e.Depth, deepest))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrExpectationFailed, strings.Join(problems, "; "))
}
