package otel

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelglobal "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const meterName = "github.com/cobaltline/outreach"

// InitMeterProvider initializes the global MeterProvider with a Prometheus exporter
// and returns an http.Handler that serves /metrics. Call once at daemon startup.
// If init fails, returns (nil, err); caller can fall back to a plain /metrics.
func InitMeterProvider(ctx context.Context, serviceName string) (http.Handler, error) {
	if serviceName == "" {
		serviceName = "outreach"
	}
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otelglobal.SetMeterProvider(provider)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}), nil
}

// Meter returns the global meter for outreach (after InitMeterProvider).
func Meter() metric.Meter {
	return otelglobal.Meter(meterName)
}

// Common attribute keys for metrics.
var (
	AttrChannel  = attribute.Key("channel")
	AttrStatus   = attribute.Key("status")
	AttrGate     = attribute.Key("gate")
	AttrEvent    = attribute.Key("event")
	AttrCampaign = attribute.Key("campaign")
)
