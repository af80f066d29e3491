// Package api is the HTTP facade over the inventory service.
//
// Every request carries an X-Request-ID and, when a [TokenSource] yields one,
// a bearer token. Non-2xx responses become [*Error], which matches the
// package's sentinel errors through errors.Is. A 401 on a request that
// carried a bearer token also fires the unauthorized hook before the error is
// returned; the root package wires that hook to forced logout.
//
// Requests are never retried here.
package api
