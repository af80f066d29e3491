// Package route decides whether the current session may enter a location.
//
// [Authorize] is a pure function of the session snapshot and the route's
// [Requirement]. It never touches storage or the network, so a caller can
// evaluate it on every navigation.
//
// Checks run in a fixed order: hydration, authentication, role, permission.
// The first failing check decides the outcome.
package route
