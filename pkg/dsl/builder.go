package dsl

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/script"
)

// Builder accumulates script steps.
type Builder struct {
	sc script.Script
}

// New creates a new script builder.
func New(name string) *Builder {
	return &Builder{sc: script.Script{Name: name}}
}

func (b *Builder) step(op domain.Operation, id string) *Builder {
	b.sc.Steps = append(b.sc.Steps, script.Step{Op: op, ID: id})
	return b
}

// Add appends a child to the active node.
func (b *Builder) Add() *Builder { return b.step(domain.OpAddChild, "") }

// Select makes id the active node.
func (b *Builder) Select(id string) *Builder { return b.step(domain.OpSelect, id) }

// Delete removes the active subtree.
func (b *Builder) Delete() *Builder { return b.step(domain.OpDelete, "") }

// Reset starts over from a single root.
func (b *Builder) Reset() *Builder { return b.step(domain.OpReset, "") }

// Undo steps back in the history.
func (b *Builder) Undo() *Builder { return b.step(domain.OpUndo, "") }

// Redo steps forward in the history.
func (b *Builder) Redo() *Builder { return b.step(domain.OpRedo, "") }

// Chain appends n Add steps, producing a straight path of n nodes below the active one.
func (b *Builder) Chain(n int) *Builder {
	for i := 0; i < n; i++ {
		b.Add()
	}
	return b
}

// Repeat runs fn n times against the builder.
func (b *Builder) Repeat(n int, fn func(*Builder)) *Builder {
	for i := 0; i < n; i++ {
		fn(b)
	}
	return b
}

func (b *Builder) expect() *script.Expect {
	if b.sc.Expect == nil {
		b.sc.Expect = &script.Expect{}
	}
	return b.sc.Expect
}

// ExpectNodes requires the final tree to hold n nodes.
func (b *Builder) ExpectNodes(n int) *Builder {
	b.expect().Nodes = &n
	return b
}

// ExpectActive requires id to be active at the end.
func (b *Builder) ExpectActive(id string) *Builder {
	b.expect().Active = &id
	return b
}

// ExpectNextID requires the allocator to hand out n next.
func (b *Builder) ExpectNextID(n int) *Builder {
	b.expect().NextID = &n
	return b
}

// ExpectDepth requires the deepest node to sit at depth d.
func (b *Builder) ExpectDepth(d int) *Builder {
	b.expect().Depth = &d
	return b
}

// Build validates and returns a copy of the script.
func (b *Builder) Build() (*script.Script, error) {
	sc := b.sc
	sc.Steps = append([]script.Step(nil), b.sc.Steps...)
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}
