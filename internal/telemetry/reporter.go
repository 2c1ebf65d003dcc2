// Package telemetry periodically exports adapter statistics as time-series points.
package telemetry

import (
	"context"
	"time"

	"github.com/nerrad567/mqtt-tickbridge/internal/bridge"
)

// Measurement is the InfluxDB measurement name for adapter samples.
const Measurement = "tickbridge_adapter"

// Sink accepts points. influxdb.Client satisfies it.
type Sink interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time)
}

// StatsSource provides adapter snapshots. bridge.Adapter satisfies it.
type StatsSource interface {
	Stats() bridge.Stats
}

// Reporter samples a StatsSource on a fixed interval and writes each
// sample to a Sink.
type Reporter struct {
	source   StatsSource
	sink     Sink
	interval time.Duration
	now      func() time.Time

	// lastArrivals and lastDelivered turn cumulative counters into
	// per-interval deltas. They reset when the adapter starts a new session.
	lastArrivals  uint64
	lastDelivered uint64
	lastSession   uint64
}

// NewReporter creates a reporter. A non-positive interval means 10s.
func NewReporter(source StatsSource, sink Sink, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Reporter{
		source:   source,
		sink:     sink,
		interval: interval,
		now:      time.Now,
	}
}

// Run samples until ctx is done. It always returns nil.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sample()
		}
	}
}

// Sample writes one point for the current stats.
func (r *Reporter) Sample() {
	s := r.source.Stats()

	tags := map[string]string{
		"configured": boolTag(s.Configured),
	}
	if s.Configured {
		tags["host"] = s.Host
		tags["client_id"] = s.ClientID
	}

	if s.Session != r.lastSession {
		r.lastArrivals, r.lastDelivered, r.lastSession = 0, 0, s.Session
	}

	fields := map[string]any{
		"connected":       s.Connected,
		"queue_depth":     s.QueueDepth,
		"has_current":     s.HasCurrent,
		"arrivals_total":  s.Arrivals,
		"delivered_total": s.Delivered,
		"arrivals_delta":  s.Arrivals - r.lastArrivals,
		"delivered_delta": s.Delivered - r.lastDelivered,
		"has_last_error":  s.LastError != "",
	}
	r.lastArrivals, r.lastDelivered = s.Arrivals, s.Delivered

	r.sink.WritePoint(Measurement, tags, fields, r.now())
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
