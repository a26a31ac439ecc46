package script

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidScript is returned when a script cannot be parsed or names an unknown step.
	ErrInvalidScript = errors.New("invalid script")
	// ErrExpectationFailed is returned when the final state does not match the expect block.
	ErrExpectationFailed = errors.New("expectation failed")
)

// Script is a replayable list of session commands.
type Script struct {
	Name   string  `yaml:"name,omitempty"`
	Steps  []Step  `yaml:"steps"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// Step is one session command. ID is only meaningful for select.
type Step struct {
	Op domain.Operation `yaml:"op"`
	ID string           `yaml:"id,omitempty"`
}

// Expect describes the state a replay must end in. Nil fields are not checked.
type Expect struct {
	Nodes  *int    `yaml:"nodes,omitempty"`
	Active *string `yaml:"active,omitempty"`
	NextID *int    `yaml:"next_id,omitempty"`
	Depth  *int    `yaml:"depth,omitempty"`
}

// UnmarshalYAML accepts both "select 2" and {op: select, id: "2"}.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		fields := strings.Fields(node.Value)
		if len(fields) == 0 || len(fields) > 2 {
			return fmt.Errorf("line %d: malformed step %q", node.Line, node.Value)
		}
		s.Op = domain.Operation(fields[0])
		if len(fields) == 2 {
			s.ID = fields[1]
		}
		return nil
	}

	type plain Step
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*s = Step(raw)
	return nil
}

// String renders the step as a command line.
func (s Step) String() string {
	if s.ID != "" {
		return string(s.Op) + " " + s.ID
	}
	return string(s.Op)
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var sc Script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

// Validate normalizes operation aliases and checks that every step is runnable.
func (sc *Script) Validate() error {
	for i := range sc.Steps {
		step := &sc.Steps[i]
		op, err := domain.ParseOperation(string(step.Op))
		if err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrInvalidScript, i+1, err)
		}
		step.Op = op
		if op == domain.OpSelect && step.ID == "" {
			return fmt.Errorf("%w: step %d: select requires an id", ErrInvalidScript, i+1)
		}
		if op != domain.OpSelect && step.ID != "" {
			return fmt.Errorf("%w: step %d: %s takes no id", ErrInvalidScript, i+1, op)
		}
	}
	return nil
}

// Marshal encodes the script as YAML.
func (sc *Script) Marshal() ([]byte, error) {
	return yaml.Marshal(sc)
}
