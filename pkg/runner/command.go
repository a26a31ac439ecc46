package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

var (
	// ErrQuit is returned by Exec when the user asked to leave the loop.
	ErrQuit = errors.New("quit requested")
	// ErrUnknownCommand is returned for input that names no command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnexpectedArgument is returned when a command that takes no argument got one.
	ErrUnexpectedArgument = errors.New("unexpected argument")
)

// View commands only read the session.
const (
	CmdShow    = "show"
	CmdNodes   = "nodes"
	CmdMermaid = "mermaid"
	CmdStatus  = "status"
	CmdHelp    = "help"
	CmdQuit    = "quit"
)

// Command is one parsed input line.
// Op is set for session commands; Name is set for view commands.
type Command struct {
	Name string
	Op   domain.Operation
	Arg  string
}

// ParseCommand parses a line such as "select 3" or "undo".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty input", ErrUnknownCommand)
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	var cmd Command
	switch name {
	case "show", "tree", "ls":
		cmd.Name = CmdShow
	case "nodes":
		cmd.Name = CmdNodes
	case "mermaid", "graph":
		cmd.Name = CmdMermaid
	case "status", "history":
		cmd.Name = CmdStatus
	case "help", "?":
		cmd.Name = CmdHelp
	case "quit", "exit", "q":
		cmd.Name = CmdQuit
	default:
		op, err := domain.ParseOperation(name)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
		}
		cmd.Op = op
		cmd.Name = string(op)
		if op == domain.OpSelect && len(args) > 0 {
			cmd.Arg = args[0]
			args = args[1:]
		}
	}

	if len(args) > 0 {
		return Command{}, fmt.Errorf("%w: %s takes no %q", ErrUnexpectedArgument, cmd.Name, strings.Join(args, " "))
	}
	return cmd, nil
}

const helpText = `| command | effect |
|---|---|
| add | add a child under the active node and select it |
| select <id> | make <id> the active node |
| delete | remove the active subtree (deleting the root resets) |
| reset | start over from a single root |
| undo / redo | move through the history |
| show | print the tree |
| nodes | list every node |
| mermaid | print the tree as a Mermaid diagram |
| status | print the history cursor |
| quit | leave |
`
