package internaldefs

import (
	"github.com/MrEthical07/storefront"
)

// CounterDef binds a counter id to its exported name.
type CounterDef struct {
	ID   storefront.MetricID
	Name string
	Help string
}

// HistogramDef binds a latency id to its exported name.
type HistogramDef struct {
	ID   storefront.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: storefront.MetricLoginSuccess, Name: "storefront_login_success_total", Help: "Successful logins."},
	{ID: storefront.MetricLoginFailure, Name: "storefront_login_failure_total", Help: "Failed logins, excluding rate-limited attempts."},
	{ID: storefront.MetricLoginRateLimited, Name: "storefront_login_rate_limited_total", Help: "Logins refused by the service rate limit."},
	{ID: storefront.MetricLogout, Name: "storefront_logout_total", Help: "Explicit logouts."},
	{ID: storefront.MetricSessionHydrated, Name: "storefront_session_hydrated_total", Help: "Sessions restored from storage at startup."},
	{ID: storefront.MetricSessionExpired, Name: "storefront_session_expired_total", Help: "Sessions ended by a server 401."},
	{ID: storefront.MetricCartMutation, Name: "storefront_cart_mutation_total", Help: "Applied cart and wishlist changes."},
	{ID: storefront.MetricCartConflict, Name: "storefront_cart_conflict_total", Help: "Cart changes refused by a stock limit."},
	{ID: storefront.MetricCartPersistFailure, Name: "storefront_cart_persist_failure_total", Help: "Cart writes that storage refused."},
	{ID: storefront.MetricCheckoutSuccess, Name: "storefront_checkout_success_total", Help: "Orders accepted by the service."},
	{ID: storefront.MetricCheckoutFailure, Name: "storefront_checkout_failure_total", Help: "Checkout requests that failed in transport or with an error status."},
	{ID: storefront.MetricCheckoutRejected, Name: "storefront_checkout_rejected_total", Help: "Orders the service answered with success=false."},
	{ID: storefront.MetricCatalogRefresh, Name: "storefront_catalog_refresh_total", Help: "Successful catalog refreshes."},
	{ID: storefront.MetricCatalogRefreshFailure, Name: "storefront_catalog_refresh_failure_total", Help: "Failed catalog refreshes."},
	{ID: storefront.MetricStockUpdate, Name: "storefront_stock_update_total", Help: "Stock updates received from the live feed."},
}

// HistogramDefs lists the latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: storefront.MetricLoginLatency, Name: "storefront_login_latency_seconds", Help: "Login round-trip latency."},
	{ID: storefront.MetricCheckoutLatency, Name: "storefront_checkout_latency_seconds", Help: "Checkout round-trip latency."},
}

// HistogramBounds are the upper bounds in seconds, matching the core buckets.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundValues are HistogramBounds without the +Inf bucket.
var HistogramBoundValues = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling when short.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
