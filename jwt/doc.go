// Package jwt inspects bearer tokens without verifying them.
//
// The client never holds the server's signing keys, so a token is opaque as far
// as trust goes. When the server does issue JWTs, the registered claims still
// tell the client something useful: whether a persisted token has already
// expired and can be discarded at startup instead of failing on first use.
//
// # What this package must NOT do
//
//   - Treat an inspected token as authenticated. Inspection is advisory.
//   - Reject opaque (non-JWT) tokens. They report [ErrNotJWT] and callers keep them.
package jwt
