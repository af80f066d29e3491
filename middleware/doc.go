// Package middleware adapts route decisions to net/http.
//
// # Guards
//
//   - [Guard]: enforces one [route.Requirement].
//   - [GuardTable]: looks the request path up in a [route.Table].
//   - [RequireRole] / [RequirePermission]: shorthands for single-check routes.
//
// Allowed requests reach the next handler with the [route.Decision] in the
// request context. Everything else is answered here: 302 to the login or
// not-authorized screen, or 503 while the session is still hydrating.
//
// # What this package must NOT do
//
//   - Read storage or call the API. The session snapshot comes from a [StateSource].
//   - Decide anything route.Authorize did not.
package middleware
