// Package telemetry holds the process-wide prometheus instruments.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsIngested counts upstream events by type (join, comment, like,
	// gift, share, follow, viewer_count).
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streampulse_events_ingested_total",
		Help: "Upstream events ingested, by event type.",
	}, []string{"type"})

	// PromptsIssued counts prompts delivered to dashboards by source.
	PromptsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streampulse_prompts_issued_total",
		Help: "Talking-point prompts issued, by source (gemini or fallback).",
	}, []string{"source"})

	// GeneratorCalls counts attempted generator calls by outcome.
	GeneratorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streampulse_generator_calls_total",
		Help: "Generator API call attempts, by outcome.",
	}, []string{"outcome"})

	// ActiveSessions tracks the number of live analytics sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "streampulse_active_sessions",
		Help: "Number of live analytics sessions.",
	})
)
