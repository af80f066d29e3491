// Package internal contains helpers that are private to storefront.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - inflight: per-action guards refusing double submission
//   - metrics: lock-free counters and latency histograms
//
// # What this package must NOT do
//
//   - Export types that appear in the public storefront API except through
//     aliases declared in the root package.
//   - Be imported by any package outside the storefront module.
package internal
