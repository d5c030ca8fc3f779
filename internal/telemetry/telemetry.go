// Package telemetry sets up OpenTelemetry metrics for the prober and the
// dispatcher.
package telemetry

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
)

// MeterName scopes every instrument created by this module.
const MeterName = "github.com/heytom-labs/heytom-healthroute"

// ProviderSet 监控Provider集合
var ProviderSet = wire.NewSet(
	ProvideMeterProvider,
	ProvideMetrics,
)

// ProvideMeterProvider exports metrics over OTLP/HTTP when an endpoint is
// configured, and records nothing otherwise.
func ProvideMeterProvider(cfg *config.Config, log zerolog.Logger) (metric.MeterProvider, func(), error) {
	if cfg.Metrics.OTLPEndpoint == "" {
		return noop.NewMeterProvider(), func() {}, nil
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Metrics.OTLPEndpoint)}
	if cfg.Metrics.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Metrics.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Metrics.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
	)
	otel.SetMeterProvider(mp)

	log.Info().
		Str("endpoint", cfg.Metrics.OTLPEndpoint).
		Dur("interval", cfg.Metrics.Interval).
		Msg("meter initialized")

	cleanup := func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to shut down meter provider")
		}
	}
	return mp, cleanup, nil
}

// Metrics holds the instruments recorded by the prober and the dispatcher.
type Metrics struct {
	probes     metric.Int64Counter
	cycles     metric.Int64Counter
	publishes  metric.Int64Counter
	healthy    metric.Int64Gauge
	dispatches metric.Int64Counter
	refreshes  metric.Int64Counter
}

// ProvideMetrics 提供监控指标
func ProvideMetrics(mp metric.MeterProvider) (*Metrics, error) {
	return NewMetrics(mp.Meter(MeterName))
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	probes, err := meter.Int64Counter("healthroute.probe.checks",
		metric.WithDescription("Health checks by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating probe counter: %w", err)
	}

	cycles, err := meter.Int64Counter("healthroute.prober.cycles",
		metric.WithDescription("Completed probe cycles"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cycle counter: %w", err)
	}

	publishes, err := meter.Int64Counter("healthroute.prober.publishes",
		metric.WithDescription("Snapshot publications by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating publish counter: %w", err)
	}

	healthy, err := meter.Int64Gauge("healthroute.prober.healthy_members",
		metric.WithDescription("Healthy members per service in the last cycle"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating healthy gauge: %w", err)
	}

	dispatches, err := meter.Int64Counter("healthroute.dispatch.requests",
		metric.WithDescription("Dispatched requests by service and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatch counter: %w", err)
	}

	refreshes, err := meter.Int64Counter("healthroute.cache.refreshes",
		metric.WithDescription("Registry cache refreshes by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refresh counter: %w", err)
	}

	return &Metrics{
		probes:     probes,
		cycles:     cycles,
		publishes:  publishes,
		healthy:    healthy,
		dispatches: dispatches,
		refreshes:  refreshes,
	}, nil
}

// Nop returns metrics that record nothing.
func Nop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// RecordProbe counts one health check.
func (m *Metrics) RecordProbe(ctx context.Context, service string, healthy bool) {
	m.probes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.Bool("healthy", healthy),
	))
}

// RecordCycle counts a finished cycle and records healthy members per service.
func (m *Metrics) RecordCycle(ctx context.Context, healthy map[string][]string) {
	m.cycles.Add(ctx, 1)
	for service, addrs := range healthy {
		m.healthy.Record(ctx, int64(len(addrs)), metric.WithAttributes(attribute.String("service", service)))
	}
}

// RecordPublish counts one publish attempt.
func (m *Metrics) RecordPublish(ctx context.Context, err error) {
	m.publishes.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status(err))))
}

// RecordDispatch counts one dispatched request. An empty service means no
// target was available.
func (m *Metrics) RecordDispatch(ctx context.Context, service string, err error) {
	st := status(err)
	if service == "" {
		st = "no_target"
	}
	m.dispatches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("status", st),
	))
}

// RecordRefresh counts one cache refresh.
func (m *Metrics) RecordRefresh(ctx context.Context, err error) {
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status(err))))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
