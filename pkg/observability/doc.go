/*
Package observability provides tools for monitoring Arbor sessions.

It turns the session lifecycle hooks into Prometheus metrics: command outcomes,
tree size, deepest level and history position. Metrics are registered against a
caller-provided registry so several sessions or tests do not collide.
*/
package observability
