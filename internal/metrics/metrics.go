// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

// Package metrics defines the Prometheus instrumentation surface: database
// query performance, API latency and throughput, access recording volume,
// live feed fan-out, and geolocation resolution outcomes. All collectors
// register themselves against the default registry via promauto.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Access recording metrics
	AccessEventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_events_recorded_total",
			Help: "Total number of access events persisted, by action kind",
		},
		[]string{"action"},
	)

	CitationsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "citations_recorded_total",
			Help: "Total number of citation increments",
		},
	)

	// Live feed metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of live feed clients",
		},
	)

	ActivityBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_broadcasts_total",
			Help: "Total number of activity deltas published to the live feed",
		},
	)

	// Geolocation metrics
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geo_lookups_total",
			Help: "Total number of geolocation resolutions, by outcome source",
		},
		[]string{"source"}, // cache, ipapi.co, ip-api.com, default
	)

	GeoLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geo_lookup_duration_seconds",
			Help:    "Duration of geolocation resolutions in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)
)

// RecordDBQuery observes one database query.
func RecordDBQuery(operation, table string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest observes one completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordAccessEvent counts one persisted access event.
func RecordAccessEvent(action string) {
	AccessEventsRecorded.WithLabelValues(action).Inc()
}

// RecordGeoLookup observes one geolocation resolution.
func RecordGeoLookup(source string, start time.Time) {
	GeoLookups.WithLabelValues(source).Inc()
	GeoLookupDuration.Observe(time.Since(start).Seconds())
}
