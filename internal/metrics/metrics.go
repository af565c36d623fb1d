package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters registered with the default registry, which fiberprometheus
// exposes at /metrics alongside the HTTP metrics.
var (
	DraftUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wpq",
		Subsystem: "draft",
		Name:      "updates_total",
		Help:      "Draft mutations by section or action.",
	}, []string{"section"})

	DraftPersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wpq",
		Subsystem: "draft",
		Name:      "persist_failures_total",
		Help:      "Draft store operations that failed and were dropped.",
	}, []string{"op"})

	DraftResets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wpq",
		Subsystem: "draft",
		Name:      "resets_total",
		Help:      "Drafts reset after submission or discard.",
	})

	RecordsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wpq",
		Subsystem: "records",
		Name:      "created_total",
		Help:      "WPQ records created from submitted drafts.",
	})

	PreviewsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wpq",
		Subsystem: "previews",
		Name:      "active",
		Help:      "Uploaded previews held in memory awaiting submission.",
	})
)
