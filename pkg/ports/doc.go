/*
Package ports defines the driving ports (interfaces) of the Arbor tree engine.

These interfaces decouple adapters (CLI runner, HTTP, MCP) from the concrete session,
so that every outer surface drives the same small set of commands and queries.

# Key Interfaces

  - Commands: add-child, select, delete, reset, undo, redo.
  - Queries: read-only view of the tree, the active node and the history cursor.
  - Observable: payload-free change notification.
  - TreeSession: all of the above.
*/
package ports
