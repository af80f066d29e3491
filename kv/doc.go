// Package kv provides the durable key-value storage that backs every persisted
// piece of client state (session fields, cart and wishlist collections).
//
// # Backends
//
//   - [RedisStorage]: go-redis client; multi-key writes run in MULTI/EXEC.
//   - [MemoryStorage]: process-local map with an optional byte quota, used by
//     tests and by the CLI when no Redis address is configured.
//
// # Architecture boundaries
//
// Keys are logical names such as "session.token" or "cart.entries". Each
// backend applies its own prefix. Callers own key namespaces; this package
// never interprets values.
//
// # What this package must NOT do
//
//   - Import storefront, session, or cart (no upward imports).
//   - Apply TTLs. Stored values live until deleted, like browser local storage.
package kv
