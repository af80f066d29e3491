// Package cart holds a customer's cart and wishlist and keeps them in durable
// storage.
//
// Every mutation is apply-then-persist: the next collection is built off to
// the side, written in full, and only swapped in once the write succeeded. A
// failed write leaves memory untouched and reports [ErrPersistence].
//
// Stock limits are enforced against the latest product snapshot the store
// has seen. [Store.ApplyStock] refreshes those snapshots from a catalog fetch
// and is ignored when the store has changed since the fetch was issued.
//
// # What this package must NOT do
//
//   - Call the API. Products come in from the caller.
//   - Hold more than one entry per product id in either collection.
package cart
