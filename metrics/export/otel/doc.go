// Package otel binds storefront counters and latency histograms to
// OpenTelemetry observable instruments.
//
// Counters are grouped by concern: one instrument per concern
// (storefront.login.attempts, storefront.checkout.orders, ...) with the
// individual counter carried as an attribute. Latency histograms are
// exported as cumulative bucket counts on storefront.request.latency.buckets
// keyed by operation and le. One callback reads
// [storefront.Client.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate client state.
package otel
