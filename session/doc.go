// Package session owns the client's authenticated session: the persisted
// record (token, profile, role, permission tag) and the in-memory state
// machine that hydrates, replaces and clears it.
//
// # Persistence
//
// A session occupies four keys (see [Store.Keys]). They are always written
// together in one all-or-nothing write, so a reader never observes a token
// without its profile. The profile is stored as a versioned envelope: one
// format byte followed by a JSON body. Unknown versions decode as corrupt.
//
// # Architecture boundaries
//
// [Manager] never talks to the network. Role checks against routes live in
// package route, the cart lives in package cart; both observe the session
// through [Manager.Subscribe] and [ScopedStore].
//
// # What this package must NOT do
//
//   - Verify tokens. Expiry inspection is advisory (package jwt).
//   - Leave Loading set after Hydrate returns.
//   - Mutate in-memory state when the persisted write failed.
package session
