package runner

import (
	"context"

	"github.com/aretw0/arbor/pkg/session"
)

// Response is what the runner presents after each command.
type Response struct {
	Command string          `json:"command"`
	Result  *session.Result `json:"result,omitempty"`
	Content string          `json:"content,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the outcome of one command.
	Output(ctx context.Context, resp Response) error

	// Input reads the next command line. It returns io.EOF when the input is exhausted.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (greeting, notices) distinct from command output.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms Markdown content before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
