// Package storefront is the client-side state of a multi-role inventory
// storefront: the authenticated session, role-based route guarding, the
// customer cart and wishlist, checkout, and the HTTP facade to the
// inventory service they all share.
//
// A [Client] is assembled by [Builder] and owns every piece of state; there
// are no package globals. Methods are safe for concurrent use.
//
// # Architecture boundaries
//
// storefront composes the sub-packages and adds the cross-cutting rules:
// binding the cart to the logged-in customer, turning a server 401 into a
// forced logout, single-flight guards for login and checkout, audit events
// and metrics.
//
//   - session: persisted session and its transitions
//   - route, middleware: navigation decisions and their net/http adapter
//   - cart: cart and wishlist with stock clamps and atomic persistence
//   - catalog: product cache with latest-request-wins refresh
//   - api: HTTP facade and error taxonomy
//   - stockfeed: live stock updates over websocket
//   - kv: durable storage (Redis or in-memory)
//
// # What this package must NOT do
//
//   - Expose Redis clients or storage encodings in its public API.
//   - Retry failed service calls on its own.
//   - Import any sub-package that re-imports storefront (no import cycles).
package storefront
