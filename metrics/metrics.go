// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songshelf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "songshelf_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songshelf_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Playlist metrics
var (
	PlaylistCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songshelf_playlist_commands_total",
			Help: "Playlist commands by command and outcome",
		},
		[]string{"command", "outcome"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songshelf_sessions_active",
			Help: "Number of listener sessions held in memory",
		},
	)

	TracksServedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "songshelf_tracks_served_total",
			Help: "Number of track responses started",
		},
	)
)

// Library metrics
var (
	LibraryListDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "songshelf_library_list_duration_seconds",
			Help:    "Time spent listing library folders and files",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"},
	)
)
