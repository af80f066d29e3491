// Package prometheus exposes storefront metrics as a Prometheus collector.
//
// [NewPrometheusExporter] wraps a [storefront.Client]. The exporter can be
// registered with any registry, or mounted directly through
// [PrometheusExporter.Handler]. Counters are named storefront_*_total and
// the two latency histograms storefront_*_latency_seconds.
//
// # What this package must NOT do
//
//   - Register with the global default registry.
//   - Mutate client state.
package prometheus
