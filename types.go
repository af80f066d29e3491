package storefront

import (
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/MrEthical07/storefront/api"
	"github.com/MrEthical07/storefront/cart"
	internalaudit "github.com/MrEthical07/storefront/internal/audit"
	internalmetrics "github.com/MrEthical07/storefront/internal/metrics"
	"github.com/MrEthical07/storefront/permission"
	"github.com/MrEthical07/storefront/session"
)

// LoginOutcome is a successful [Client.Login].
type LoginOutcome struct {
	Role permission.Role
	// Home is the dashboard for Role.
	Home    string
	Profile *session.Profile
	// Message is the service's greeting, if any.
	Message string
}

// OrderReceipt is a successful [Client.SubmitOrder].
type OrderReceipt struct {
	// IdempotencyKey was sent with the order; resubmitting with it is safe.
	IdempotencyKey string
	Items          []cart.CartEntry
	// LocalTotal is computed from the cart snapshots at submission.
	LocalTotal decimal.Decimal
	// ServerTotal is what the service charged.
	ServerTotal decimal.Decimal
	TotalItems  int
	Message     string
	Summary     map[string]api.OrderLine
	EmailSent   bool
}

// Audit event types.
const (
	AuditEventLogin          = "login"
	AuditEventLogout         = "logout"
	AuditEventSessionExpired = "session_expired"
	AuditEventCheckout       = "checkout"
)

// AuditEvent is a structured audit record emitted by the client.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the client's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink is an [AuditSink] that logs events.
type SlogSink = internalaudit.SlogSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

func NewSlogSink(l *slog.Logger) SlogSink {
	return internalaudit.SlogSink{Logger: l}
}

// MetricID identifies a counter or latency histogram.
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess          = internalmetrics.MetricLoginSuccess
	MetricLoginFailure          = internalmetrics.MetricLoginFailure
	MetricLoginRateLimited      = internalmetrics.MetricLoginRateLimited
	MetricLogout                = internalmetrics.MetricLogout
	MetricSessionHydrated       = internalmetrics.MetricSessionHydrated
	MetricSessionExpired        = internalmetrics.MetricSessionExpired
	MetricCartMutation          = internalmetrics.MetricCartMutation
	MetricCartConflict          = internalmetrics.MetricCartConflict
	MetricCartPersistFailure    = internalmetrics.MetricCartPersistFailure
	MetricCheckoutSuccess       = internalmetrics.MetricCheckoutSuccess
	MetricCheckoutFailure       = internalmetrics.MetricCheckoutFailure
	MetricCheckoutRejected      = internalmetrics.MetricCheckoutRejected
	MetricCatalogRefresh        = internalmetrics.MetricCatalogRefresh
	MetricCatalogRefreshFailure = internalmetrics.MetricCatalogRefreshFailure
	MetricStockUpdate           = internalmetrics.MetricStockUpdate
	MetricLoginLatency          = internalmetrics.MetricLoginLatency
	MetricCheckoutLatency       = internalmetrics.MetricCheckoutLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] configured by cfg. When Enabled is false,
// all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
