// internal/server/metrics.go

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codeshare",
		Name:      "sessions_active",
		Help:      "Number of classroom sessions currently held in memory.",
	})

	snapshotsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codeshare",
		Name:      "snapshots_created_total",
		Help:      "Code snapshots created across all sessions.",
	})

	versionsSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeshare",
		Name:      "versions_selected_total",
		Help:      "Version switches, labelled by whether unsaved edits were discarded.",
	}, []string{"discarded"})

	messagesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeshare",
		Name:      "messages_posted_total",
		Help:      "Questions and replies posted.",
	}, []string{"kind"})

	votesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeshare",
		Name:      "votes_cast_total",
		Help:      "Comprehension votes cast, by choice.",
	}, []string{"choice"})

	persistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codeshare",
		Name:      "persist_failures_total",
		Help:      "Failed attempts to save classroom state.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codeshare",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
