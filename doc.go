/*
Package arbor is an in-process engine for building a rooted tree one node at a time,
navigating it, and undoing or redoing every structural change.

The engine owns all tree state. Presentation layers (terminal, web, agents) call six
commands and re-read a handful of queries after each change notification; they never
keep structural state of their own.

# Concept

A Session starts with a single root labeled "1". Nodes are labeled by a monotonic
counter, carry a fixed depth, and point at their parent by id. Every structural change
is recorded as a whole-tree snapshot in a bounded, linear history (50 entries), so undo
and redo are cursor moves followed by a snapshot restore.

# Key Features

  - Pure Mutations: new tree versions share untouched subtrees with the previous one.
  - Depth Limit: nodes can be created down to depth 100; deeper requests are refused.
  - Destructive Root Delete: deleting the root is the same as resetting the tree.
  - Branch-on-Write History: committing after an undo discards the redo branch.
  - Adapters: REPL, HTTP with Server-Sent Events, and MCP tools over the same session.

# Usage

	s := arbor.New()
	s.AddChildToActive()       // "2" under "1", now active
	s.AddChildToActive()       // "3" under "2", now active
	s.DeleteActiveNode()       // removes "3", "2" is active again
	s.Undo()                   // "3" is back and active
	s.SelectNode("1")
	s.DeleteActiveNode()       // full reset to a single root "1"

Failed preconditions (depth limit, nothing to undo, unknown id) are reported through
boolean results and never modify the session.
*/
package arbor
