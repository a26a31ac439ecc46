package tui

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func sample() *domain.Node {
	root := domain.NewRoot("1")
	two := domain.NewChild(root, "2")
	three := domain.NewChild(two, "3")
	four := domain.NewChild(root, "4")
	two.Children = []*domain.Node{three}
	root.Children = []*domain.Node{two, four}
	return root
}

func TestOutline(t *testing.T) {
	want := "- 1\n" +
		"  - **2** _(active, depth 1)_\n" +
		"    - 3\n" +
		"  - 4\n"
	assert.Equal(t, want, Outline(sample(), "2"))
	assert.Equal(t, "_(empty tree)_\n", Outline(nil, ""))
}

func TestPlainTree(t *testing.T) {
	// Tests do not run in a terminal, so no escape codes are emitted.
	t.Setenv("NO_COLOR", "1")
	if termenv.ColorProfile() != termenv.Ascii {
		t.Skip("terminal reports color support")
	}

	want := "1\n" +
		"├── 2\n" +
		"│   └── 3 *\n" +
		"└── 4\n"
	assert.Equal(t, want, PlainTree(sample(), "3"))
	assert.Equal(t, "(empty tree)\n", PlainTree(nil, ""))
}

func TestPlainTree_Profiles(t *testing.T) {
	tests := []struct {
		name    string
		profile termenv.Profile
		escaped bool
	}{
		{"ascii", termenv.Ascii, false},
		{"ansi", termenv.ANSI, true},
		{"truecolor", termenv.TrueColor, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := plainTree(sample(), "3", tt.profile)
			assert.Contains(t, out, "3 *")
			assert.Contains(t, out, "├── 2\n")
			if tt.escaped {
				assert.Contains(t, out, "\x1b[")
			} else {
				assert.NotContains(t, out, "\x1b")
				assert.Contains(t, out, "│   └── 3 *\n")
			}
		})
	}
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render(Outline(sample(), "4"))
	assert.NoError(t, err)
	assert.Contains(t, out, "4")
}
