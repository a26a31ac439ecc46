package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
)

// Runner drives a session from line-oriented input.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input/Output is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Headless suppresses the greeting.
	Headless bool

	// Renderer turns Markdown content into terminal output. When nil, trees are
	// drawn as plain text instead of Markdown outlines.
	Renderer ContentRenderer

	Input  io.Reader
	Output io.Writer

	manager *session.Manager
}

// NewRunner creates a Runner over m with default Stdin/Stdout.
func NewRunner(m *session.Manager, opts ...Option) *Runner {
	r := &Runner{
		Input:   os.Stdin,
		Output:  os.Stdout,
		Logger:  logging.NewNop(),
		manager: m,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads and executes commands until the input ends, the user quits or ctx is done.
// None of those is an error.
func (r *Runner) Run(ctx context.Context) error {
	handler := r.resolveHandler()

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	if !r.Headless {
		if err := handler.SystemOutput(ctx, "Type 'help' for commands."); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	for {
		loopCtx := signals.Context()

		line, err := handler.Input(loopCtx)
		if err != nil {
			signals.CheckRace()
			if loopCtx.Err() != nil {
				r.Logger.Debug("Runner input: Context cancelled", "err", loopCtx.Err())
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		resp, err := r.Exec(loopCtx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			if loopCtx.Err() != nil {
				return nil
			}
			r.Logger.Debug("Command failed", "input", line, "err", err)
			resp = Response{Command: line, Error: err.Error()}
		}

		if err := handler.Output(ctx, resp); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

// Exec parses and executes a single command line.
func (r *Runner) Exec(ctx context.Context, line string) (Response, error) {
	cmd, err := ParseCommand(line)
	if err != nil {
		return Response{}, err
	}
	return r.dispatch(ctx, cmd)
}

func (r *Runner) dispatch(ctx context.Context, cmd Command) (Response, error) {
	resp := Response{Command: cmd.Name}

	if cmd.Op != "" {
		res, err := r.manager.Execute(ctx, cmd.Op, cmd.Arg)
		if err != nil {
			return Response{}, err
		}
		resp.Result = &res
		resp.Content = summarize(res)
		return resp, nil
	}

	switch cmd.Name {
	case CmdQuit:
		return resp, ErrQuit
	case CmdHelp:
		resp.Content = helpText
		return resp, nil
	}

	state, status, err := r.manager.View(ctx)
	if err != nil {
		return Response{}, err
	}

	switch cmd.Name {
	case CmdShow:
		if r.Renderer != nil {
			resp.Content = tui.Outline(state.Root, state.ActiveNodeID)
		} else {
			resp.Content = tui.PlainTree(state.Root, state.ActiveNodeID)
		}
	case CmdNodes:
		resp.Content = nodeTable(state)
	case CmdMermaid:
		overlay := &graph.GraphOverlay{ActiveNode: state.ActiveNodeID, MaxDepth: r.manager.MaxDepth()}
		resp.Content = "```mermaid\n" + graph.GenerateMermaid(state.Root, overlay) + "```\n"
	case CmdStatus:
		resp.Content = fmt.Sprintf("history: entry %d of %d (capacity %d), undo: %s, redo: %s, next id: %d\n",
			status.Cursor+1, status.Len, status.Capacity, yesNo(status.CanUndo), yesNo(status.CanRedo), state.NextID)
	}
	return resp, nil
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	r.Handler = NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	return r.Handler
}

func summarize(res session.Result) string {
	if !res.Changed {
		return fmt.Sprintf("%s: unchanged (%s)\n", res.Operation, res.Reason)
	}
	count := 0
	res.State.Root.Walk(func(*domain.Node) bool {
		count++
		return true
	})
	return fmt.Sprintf("%s: active %s, %d %s, next id %d\n",
		res.Operation, res.State.ActiveNodeID, count, plural(count, "node", "nodes"), res.State.NextID)
}

func nodeTable(state domain.GraphState) string {
	var sb strings.Builder
	sb.WriteString("| id | parent | depth | children |\n|---|---|---|---|\n")
	state.Root.Walk(func(n *domain.Node) bool {
		id := n.ID
		if id == state.ActiveNodeID {
			id = "**" + id + "**"
		}
		parent := n.ParentID
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %d |\n", id, parent, n.Depth, len(n.Children))
		return true
	})
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
