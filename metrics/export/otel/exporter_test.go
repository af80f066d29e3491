package otel

import (
	"context"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrEthical07/storefront"
	"github.com/MrEthical07/storefront/metrics/export/internaldefs"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot storefront.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() storefront.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := storefront.MetricsSnapshot{
		Counters:   make(map[storefront.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[storefront.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		out.Histograms[k] = append([]uint64(nil), buckets...)
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

// pointOf returns the value observed on name for exactly attrs.
func pointOf(t *testing.T, rm metricdata.ResourceMetrics, name string, attrs ...attribute.KeyValue) (int64, bool) {
	t.Helper()
	want := attribute.NewSet(attrs...)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: unexpected data %T", name, m.Data)
			}
			for _, dp := range data.DataPoints {
				if dp.Attributes.Equals(&want) {
					return dp.Value, true
				}
			}
		}
	}
	return 0, false
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newMeter()

	src := &fakeSource{
		snapshot: storefront.MetricsSnapshot{
			Counters: map[storefront.MetricID]uint64{
				storefront.MetricCheckoutSuccess:  3,
				storefront.MetricLoginRateLimited: 2,
				storefront.MetricStockUpdate:      5,
			},
			Histograms: map[storefront.MetricID][]uint64{
				storefront.MetricLoginLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewOTelExporterFromSource(provider.Meter("storefront-test"), src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	outcome := func(v string) attribute.KeyValue { return attribute.String("outcome", v) }
	login := attribute.String("operation", "login")
	checks := []struct {
		name  string
		attrs []attribute.KeyValue
		want  int64
	}{
		{"storefront.checkout.orders", []attribute.KeyValue{outcome("accepted")}, 3},
		{"storefront.checkout.orders", []attribute.KeyValue{outcome("rejected")}, 0},
		{"storefront.login.attempts", []attribute.KeyValue{outcome("rate_limited")}, 2},
		{"storefront.stock.updates", nil, 5},
		{"storefront.request.latency.buckets", []attribute.KeyValue{login, attribute.String("le", "0.05")}, 1},
		{"storefront.request.latency.buckets", []attribute.KeyValue{login, attribute.String("le", "+Inf")}, 8},
		{"storefront.request.latency.samples", []attribute.KeyValue{login}, 8},
		{"storefront.audit.dropped", nil, 1},
	}
	for _, c := range checks {
		if v, ok := pointOf(t, rm, c.name, c.attrs...); !ok || v != c.want {
			t.Fatalf("%s %v = %d, %v; want %d", c.name, c.attrs, v, ok, c.want)
		}
	}

	checkout := attribute.String("operation", "checkout")
	if _, ok := pointOf(t, rm, "storefront.request.latency.samples", checkout); ok {
		t.Fatal("checkout latency observed without samples")
	}
}

func TestConcernsCoverEveryCounter(t *testing.T) {
	seen := map[storefront.MetricID]int{}
	for _, c := range concerns {
		for _, o := range c.outcomes {
			seen[o.id]++
		}
	}
	for _, def := range internaldefs.CounterDefs {
		if seen[def.ID] != 1 {
			t.Fatalf("%s mapped %d times", def.Name, seen[def.ID])
		}
	}
	if len(seen) != len(internaldefs.CounterDefs) {
		t.Fatalf("concerns map %d counters, want %d", len(seen), len(internaldefs.CounterDefs))
	}
	for _, def := range internaldefs.HistogramDefs {
		if operations[def.ID] == "" {
			t.Fatalf("%s has no operation name", def.Name)
		}
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newMeter()

	if _, err := NewOTelExporterFromSource(provider.Meter("storefront-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporter(provider.Meter("storefront-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource for nil client, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newMeter()

	src := &fakeSource{
		snapshot: storefront.MetricsSnapshot{
			Counters: map[storefront.MetricID]uint64{
				storefront.MetricLoginSuccess: 1,
			},
			Histograms: map[storefront.MetricID][]uint64{},
		},
	}

	exp, err := NewOTelExporterFromSource(provider.Meter("storefront-test"), src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[storefront.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
