// Package audit implements async dispatch of client audit events: logins,
// logouts, forced session expiry and checkouts.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, slog, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: structured record with id, timestamp, type, actor, role, metadata.
//
// # What this package must NOT do
//
//   - Decide which events to emit. The storefront Client does that.
//   - Import storefront or any sibling package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
