package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, key attribute.Key, value string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expect int64 sum, got %T", data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(key); ok && v.Emit() == value {
			total += dp.Value
		}
	}
	return total
}

func TestMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := ProvideMetrics(mp)
	if err != nil {
		t.Fatalf("ProvideMetrics failed: %v", err)
	}
	ctx := context.Background()

	m.RecordProbe(ctx, "a", true)
	m.RecordProbe(ctx, "a", false)
	m.RecordProbe(ctx, "a", true)
	m.RecordPublish(ctx, nil)
	m.RecordPublish(ctx, errors.New("boom"))
	m.RecordDispatch(ctx, "a", nil)
	m.RecordDispatch(ctx, "", nil)
	m.RecordCycle(ctx, map[string][]string{"a": {"10.0.0.1", "10.0.0.2"}})

	data := collect(t, reader)

	if got := sumFor(t, data["healthroute.probe.checks"], "healthy", "true"); got != 2 {
		t.Errorf("expect 2 healthy probes, got %d", got)
	}
	if got := sumFor(t, data["healthroute.prober.publishes"], "status", "error"); got != 1 {
		t.Errorf("expect 1 failed publish, got %d", got)
	}
	if got := sumFor(t, data["healthroute.dispatch.requests"], "status", "no_target"); got != 1 {
		t.Errorf("expect 1 no_target dispatch, got %d", got)
	}

	gauge, ok := data["healthroute.prober.healthy_members"].(metricdata.Gauge[int64])
	if !ok || len(gauge.DataPoints) != 1 || gauge.DataPoints[0].Value != 2 {
		t.Errorf("expect healthy gauge of 2, got %#v", data["healthroute.prober.healthy_members"])
	}
}

func TestProvideMeterProviderDisabled(t *testing.T) {
	cfg := config.GetDefaultConfig()
	mp, cleanup, err := ProvideMeterProvider(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("ProvideMeterProvider failed: %v", err)
	}
	defer cleanup()

	m, err := ProvideMetrics(mp)
	if err != nil {
		t.Fatalf("ProvideMetrics failed: %v", err)
	}
	m.RecordProbe(context.Background(), "a", true)
}
