package runtime

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		tree    func() *domain.Node
		wantErr bool
	}{
		{
			name: "Valid Tree",
			tree: func() *domain.Node { return build("1>2", "2>3", "1>4") },
		},
		{
			name: "Empty Tree",
			tree: func() *domain.Node { return nil },
		},
		{
			name: "Root With Parent",
			tree: func() *domain.Node {
				root := build("1>2")
				root.ParentID = "0"
				return root
			},
			wantErr: true,
		},
		{
			name: "Wrong Depth",
			tree: func() *domain.Node {
				root := Relink(Clone(build("1>2")))
				root.Children[0].Depth = 5
				return root
			},
			wantErr: true,
		},
		{
			name: "Dangling Parent",
			tree: func() *domain.Node {
				root := Relink(Clone(build("1>2")))
				root.Children[0].ParentID = "9"
				return root
			},
			wantErr: true,
		},
		{
			name: "Node Reachable Twice",
			tree: func() *domain.Node {
				root := Relink(Clone(build("1>2", "1>3")))
				shared := root.Children[0]
				root.Children[1].Children = []*domain.Node{{ID: shared.ID, Label: shared.ID, Depth: 2, ParentID: "3"}}
				return root
			},
			wantErr: true,
		},
		{
			name: "Label Differs From Id",
			tree: func() *domain.Node {
				root := Relink(Clone(build("1>2")))
				root.Children[0].Label = "two"
				return root
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.tree())
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvariantViolation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSession_StrictModePanics(t *testing.T) {
	s := NewSession(WithStrictInvariants(true))
	s.AddChildToActive()

	broken := Relink(Clone(s.root))
	broken.Children[0].Depth = 9
	s.root = broken

	assert.Panics(t, func() { s.check(domain.OpAddChild) })
}
