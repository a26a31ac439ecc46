/*
Package session serializes access to a single tree session.

The core session is single-threaded by contract. Adapters that serve concurrent callers
(HTTP handlers, MCP over SSE) route every command and query through a Manager, which
holds one lock around the session, snapshots the state before and after each command,
and fans the resulting diff out to listeners (e.g. Server-Sent Events streams).
*/
package session
