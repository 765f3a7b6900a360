// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package api

import (
	"net/http"
	"time"
)

// healthStatus is the payload of the health endpoints.
type healthStatus struct {
	Status     string `json:"status"`
	Uptime     string `json:"uptime"`
	Database   string `json:"database,omitempty"`
	LiveFeed   int    `json:"live_feed_clients"`
	ServerTime string `json:"server_time"`
}

// Health handles GET /api/v1/health: liveness plus a database check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := healthStatus{
		Status:     "ok",
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Database:   "ok",
		LiveFeed:   h.hub.ClientCount(),
		ServerTime: time.Now().UTC().Format(time.RFC3339),
	}

	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}

	respondSuccess(w, code, status, start)
}

// HealthLive handles GET /api/v1/health/live. It answers as long as the
// process serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, time.Now())
}

// HealthReady handles GET /api/v1/health/ready. Readiness requires the
// database to answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "database unreachable")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"}, start)
}
