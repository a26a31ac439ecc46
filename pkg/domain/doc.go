/*
Package domain contains the core domain models for the Arbor tree engine.

It defines the fundamental entities of an editable tree: Nodes linked top-down through
their Children and bottom-up through a non-owning ParentID, and the GraphState snapshot
that the undo/redo history stores. This package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Node: A labeled point in the tree. Depth is fixed at construction time.
  - GraphState: A link-free deep copy of a tree plus the active node and allocator value.
  - StateDiff: The difference between two GraphStates, for partial client updates.
  - LifecycleHooks: Callbacks fired by the session after commits and rejections.
*/
package domain
