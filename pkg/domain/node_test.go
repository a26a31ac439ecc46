package domain

import (
	"errors"
	"testing"
)

func TestNewChild(t *testing.T) {
	root := NewRoot(RootID)
	child := NewChild(root, "2")
	grandchild := NewChild(child, "3")

	if !root.IsRoot() || root.Depth != 0 {
		t.Errorf("root: IsRoot=%v Depth=%d", root.IsRoot(), root.Depth)
	}
	if child.IsRoot() || child.Depth != 1 || child.ParentID != RootID {
		t.Errorf("child: %+v", child)
	}
	if grandchild.Depth != 2 || grandchild.ParentID != "2" {
		t.Errorf("grandchild: %+v", grandchild)
	}
	if child.Label != child.ID {
		t.Errorf("label %q should equal id %q", child.Label, child.ID)
	}
	if len(root.Children) != 0 {
		t.Error("NewChild must not attach the node")
	}
}

func TestNode_Walk(t *testing.T) {
	root := tree("1>2", "2>3", "1>4", "4>5")

	var order []string
	completed := root.Walk(func(n *Node) bool {
		order = append(order, n.ID)
		return true
	})
	if !completed {
		t.Error("Walk should report completion")
	}
	want := []string{"1", "2", "3", "4", "5"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	var visited int
	completed = root.Walk(func(n *Node) bool {
		visited++
		return n.ID != "3"
	})
	if completed || visited != 3 {
		t.Errorf("early stop: completed=%v visited=%d", completed, visited)
	}

	var nilNode *Node
	if !nilNode.Walk(func(*Node) bool { return false }) {
		t.Error("Walk on nil should be a completed no-op")
	}
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in   string
		want Operation
	}{
		{"add", OpAddChild},
		{"ADD-CHILD", OpAddChild},
		{" select ", OpSelect},
		{"rm", OpDelete},
		{"reset", OpReset},
		{"undo", OpUndo},
		{"redo", OpRedo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOperation(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseOperation(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if _, err := ParseOperation("rename"); !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("expected ErrUnknownOperation, got %v", err)
	}
}
