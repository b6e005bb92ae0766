package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector

	// OTel meters and instruments
	meter             metric.Meter
	pendingWaitsGauge metric.Int64ObservableGauge
	outcomeGauge      metric.Int64ObservableGauge
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	// Create Prometheus exporter
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	// Create meter provider
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	// Create meter with service info
	meter := meterProvider.Meter(
		"webhook-resume",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		meter:         meter,
	}

	// Register metrics instruments
	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	// Pending waits gauge (per kind)
	oe.pendingWaitsGauge, err = oe.meter.Int64ObservableGauge(
		"resume.waits.pending",
		metric.WithDescription("Number of live pending waits per webhook kind"),
		metric.WithUnit("{waits}"),
		metric.WithInt64Callback(oe.observePendingWaits),
	)
	if err != nil {
		return fmt.Errorf("creating pending waits gauge: %w", err)
	}

	// Outcome gauge (cumulative, per outcome)
	oe.outcomeGauge, err = oe.meter.Int64ObservableGauge(
		"resume.waits.outcomes",
		metric.WithDescription("Cumulative wait outcomes by name"),
		metric.WithUnit("{waits}"),
		metric.WithInt64Callback(oe.observeOutcomes),
	)
	if err != nil {
		return fmt.Errorf("creating outcome gauge: %w", err)
	}

	return nil
}

// observePendingWaits is a callback that reports pending waits per kind
func (oe *OTelExporter) observePendingWaits(ctx context.Context, observer metric.Int64Observer) error {
	pending, err := oe.collector.GetPendingWaits(ctx)
	if err != nil {
		return err
	}

	for kind, count := range pending {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("webhook.kind", kind),
		))
	}

	return nil
}

// observeOutcomes is a callback that reports cumulative wait outcomes
func (oe *OTelExporter) observeOutcomes(ctx context.Context, observer metric.Int64Observer) error {
	outcomes, err := oe.collector.GetOutcomeCounts(ctx)
	if err != nil {
		return err
	}

	for outcome, count := range outcomes {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("wait.outcome", outcome),
		))
	}

	return nil
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.Handler()
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
