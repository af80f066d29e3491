package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrEthical07/storefront"
	"github.com/MrEthical07/storefront/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() storefront.MetricsSnapshot
	AuditDropped() uint64
}

// outcome is one storefront counter as seen through a concern instrument.
type outcome struct {
	id    storefront.MetricID
	value string
}

// concern groups the counters of one flow under a single instrument.
type concern struct {
	name        string
	description string
	unit        string
	key         attribute.Key
	outcomes    []outcome
}

var concerns = []concern{
	{
		name: "storefront.login.attempts", description: "Login attempts by outcome.", unit: "{attempt}", key: "outcome",
		outcomes: []outcome{
			{storefront.MetricLoginSuccess, "success"},
			{storefront.MetricLoginFailure, "failure"},
			{storefront.MetricLoginRateLimited, "rate_limited"},
		},
	},
	{
		name: "storefront.session.transitions", description: "Session transitions other than login.", unit: "{transition}", key: "event",
		outcomes: []outcome{
			{storefront.MetricLogout, "logout"},
			{storefront.MetricSessionHydrated, "hydrated"},
			{storefront.MetricSessionExpired, "expired"},
		},
	},
	{
		name: "storefront.cart.changes", description: "Cart and wishlist changes by outcome.", unit: "{change}", key: "outcome",
		outcomes: []outcome{
			{storefront.MetricCartMutation, "applied"},
			{storefront.MetricCartConflict, "stock_limit"},
			{storefront.MetricCartPersistFailure, "persist_failure"},
		},
	},
	{
		name: "storefront.checkout.orders", description: "Checkout submissions by outcome.", unit: "{order}", key: "outcome",
		outcomes: []outcome{
			{storefront.MetricCheckoutSuccess, "accepted"},
			{storefront.MetricCheckoutRejected, "rejected"},
			{storefront.MetricCheckoutFailure, "failed"},
		},
	},
	{
		name: "storefront.catalog.refreshes", description: "Catalog refreshes by outcome.", unit: "{refresh}", key: "outcome",
		outcomes: []outcome{
			{storefront.MetricCatalogRefresh, "success"},
			{storefront.MetricCatalogRefreshFailure, "failure"},
		},
	},
	{
		name: "storefront.stock.updates", description: "Stock updates received from the live feed.", unit: "{update}",
		outcomes: []outcome{
			{storefront.MetricStockUpdate, ""},
		},
	},
}

// operations names the request behind each latency histogram.
var operations = map[storefront.MetricID]string{
	storefront.MetricLoginLatency:    "login",
	storefront.MetricCheckoutLatency: "checkout",
}

type observedOutcome struct {
	id   storefront.MetricID
	opts metric.ObserveOption
}

type observedConcern struct {
	instrument metric.Int64ObservableCounter
	outcomes   []observedOutcome
}

type observedLatency struct {
	id      storefront.MetricID
	samples metric.ObserveOption
	buckets [8]metric.ObserveOption
}

// OTelExporter observes a client's metrics snapshot on every collection.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration

	concerns     []observedConcern
	latencies    []observedLatency
	buckets      metric.Int64ObservableCounter
	samples      metric.Int64ObservableCounter
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter registers instruments on meter that read from client.
func NewOTelExporter(meter metric.Meter, client *storefront.Client) (*OTelExporter, error) {
	if client == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, client)
}

func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	observables := make([]metric.Observable, 0, len(concerns)+3)

	for _, c := range concerns {
		ins, err := meter.Int64ObservableCounter(c.name,
			metric.WithDescription(c.description), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, err)
		}
		oc := observedConcern{instrument: ins}
		for _, o := range c.outcomes {
			var attrs []attribute.KeyValue
			if c.key != "" {
				attrs = append(attrs, c.key.String(o.value))
			}
			oc.outcomes = append(oc.outcomes, observedOutcome{id: o.id, opts: metric.WithAttributes(attrs...)})
		}
		e.concerns = append(e.concerns, oc)
		observables = append(observables, ins)
	}

	var err error
	e.buckets, err = meter.Int64ObservableCounter("storefront.request.latency.buckets",
		metric.WithDescription("Requests whose round trip took at most le seconds."), metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create latency buckets: %w", err)
	}
	e.samples, err = meter.Int64ObservableCounter("storefront.request.latency.samples",
		metric.WithDescription("Timed requests by operation."), metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create latency samples: %w", err)
	}
	for _, def := range internaldefs.HistogramDefs {
		op := attribute.String("operation", operations[def.ID])
		l := observedLatency{id: def.ID, samples: metric.WithAttributes(op)}
		for i, le := range internaldefs.HistogramBounds {
			l.buckets[i] = metric.WithAttributes(op, attribute.String("le", le))
		}
		e.latencies = append(e.latencies, l)
	}

	e.auditDropped, err = meter.Int64ObservableCounter("storefront.audit.dropped",
		metric.WithDescription("Audit events dropped because the dispatcher buffer was full."), metric.WithUnit("{event}"))
	if err != nil {
		return nil, fmt.Errorf("create audit dropped: %w", err)
	}
	observables = append(observables, e.buckets, e.samples, e.auditDropped)

	e.registration, err = meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for _, c := range e.concerns {
		for _, oc := range c.outcomes {
			o.ObserveInt64(c.instrument, int64(snap.Counters[oc.id]), oc.opts)
		}
	}
	for _, l := range e.latencies {
		raw, ok := snap.Histograms[l.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		for i, n := range cumulative {
			o.ObserveInt64(e.buckets, int64(n), l.buckets[i])
		}
		o.ObserveInt64(e.samples, int64(cumulative[len(cumulative)-1]), l.samples)
	}
	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the callback. It is safe on a nil exporter.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
