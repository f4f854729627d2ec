package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

var (
	initMetricsOnce     sync.Once
	hooksMinedCounter   metric.Int64Counter
	variantsCounter     metric.Int64Counter
	sendsCounter        metric.Int64Counter
	gateSkipsCounter    metric.Int64Counter
	webhookCounter      metric.Int64Counter
	sweepDuration       metric.Float64Histogram
	sseEventsCounter    metric.Int64Counter
	sseConnectionsGauge metric.Int64ObservableGauge
	sseConnections      int64
	sseConnectionsMu    sync.Mutex
)

// InitMetrics creates the meter instruments. Safe to call multiple times; only runs once.
// Call after InitMeterProvider.
func InitMetrics(ctx context.Context) error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		hooksMinedCounter, err = m.Int64Counter("outreach_hooks_mined_total", metric.WithDescription("Total hooks mined, by terminal status"))
		if err != nil {
			return
		}
		variantsCounter, err = m.Int64Counter("outreach_variants_composed_total", metric.WithDescription("Total message variants composed, by channel"))
		if err != nil {
			return
		}
		sendsCounter, err = m.Int64Counter("outreach_sends_total", metric.WithDescription("Total send attempts, by channel and outcome"))
		if err != nil {
			return
		}
		gateSkipsCounter, err = m.Int64Counter("outreach_gate_skips_total", metric.WithDescription("Due steps skipped by a policy gate"))
		if err != nil {
			return
		}
		webhookCounter, err = m.Int64Counter("outreach_webhook_events_total", metric.WithDescription("Inbound delivery events, by type"))
		if err != nil {
			return
		}
		sweepDuration, err = m.Float64Histogram("outreach_sweep_duration_seconds", metric.WithDescription("Send sweep duration in seconds"))
		if err != nil {
			return
		}
		sseEventsCounter, err = m.Int64Counter("outreach_sse_events_total", metric.WithDescription("Total SSE events published"))
		if err != nil {
			return
		}
		sseConnectionsGauge, err = m.Int64ObservableGauge("outreach_sse_connections", metric.WithDescription("Current SSE subscriber count"))
		if err != nil {
			return
		}
		_, err = m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			sseConnectionsMu.Lock()
			n := sseConnections
			sseConnectionsMu.Unlock()
			o.ObserveInt64(sseConnectionsGauge, n)
			return nil
		}, sseConnectionsGauge)
		if err != nil {
			return
		}
	})
	return err
}

// RecordHookMined records one mined hook and its terminal status.
func RecordHookMined(ctx context.Context, status string) {
	if hooksMinedCounter == nil {
		return
	}
	hooksMinedCounter.Add(ctx, 1, metric.WithAttributes(AttrStatus.String(status)))
}

// RecordVariantComposed records one composed variant.
func RecordVariantComposed(ctx context.Context, channel string) {
	if variantsCounter == nil {
		return
	}
	variantsCounter.Add(ctx, 1, metric.WithAttributes(AttrChannel.String(channel)))
}

// RecordSend records one dispatch attempt outcome ("sent" or "failed").
func RecordSend(ctx context.Context, channel, outcome string) {
	if sendsCounter == nil {
		return
	}
	sendsCounter.Add(ctx, 1, metric.WithAttributes(AttrChannel.String(channel), AttrStatus.String(outcome)))
}

// RecordGateSkip records a due step skipped by a policy gate.
func RecordGateSkip(ctx context.Context, channel, gate string) {
	if gateSkipsCounter == nil {
		return
	}
	gateSkipsCounter.Add(ctx, 1, metric.WithAttributes(AttrChannel.String(channel), AttrGate.String(gate)))
}

// RecordWebhookEvent records one inbound delivery event.
func RecordWebhookEvent(ctx context.Context, event string) {
	if webhookCounter == nil {
		return
	}
	webhookCounter.Add(ctx, 1, metric.WithAttributes(AttrEvent.String(event)))
}

// RecordSweep records a sweep duration.
func RecordSweep(ctx context.Context, duration time.Duration) {
	if sweepDuration != nil {
		sweepDuration.Record(ctx, duration.Seconds())
	}
}

// RecordSSEEvent records one SSE event published.
func RecordSSEEvent(ctx context.Context) {
	if sseEventsCounter != nil {
		sseEventsCounter.Add(ctx, 1)
	}
}

// AddSSEConnection adds 1 to the SSE connection gauge (call on subscribe).
func AddSSEConnection() {
	sseConnectionsMu.Lock()
	sseConnections++
	sseConnectionsMu.Unlock()
}

// RemoveSSEConnection subtracts 1 from the SSE connection gauge (call on unsubscribe).
func RemoveSSEConnection() {
	sseConnectionsMu.Lock()
	sseConnections--
	if sseConnections < 0 {
		sseConnections = 0
	}
	sseConnectionsMu.Unlock()
}
