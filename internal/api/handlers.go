// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package api

import (
	"net"
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/hmassawe/karatasi/internal/archive"
	"github.com/hmassawe/karatasi/internal/blob"
	"github.com/hmassawe/karatasi/internal/config"
	"github.com/hmassawe/karatasi/internal/database"
	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/websocket"
)

// Handler carries the dependencies shared by all HTTP handlers.
type Handler struct {
	cfg     *config.Config
	svc     *archive.Service
	db      *database.DB
	geo     archive.GeoResolver
	hub     *websocket.Hub
	blobs   *blob.Store
	started time.Time
}

// NewHandler creates the HTTP handler set.
func NewHandler(cfg *config.Config, svc *archive.Service, db *database.DB, geo archive.GeoResolver, hub *websocket.Hub, blobs *blob.Store) *Handler {
	return &Handler{
		cfg:     cfg,
		svc:     svc,
		db:      db,
		geo:     geo,
		hub:     hub,
		blobs:   blobs,
		started: time.Now(),
	}
}

// clientIP extracts the caller's IP. The router's RealIP middleware has
// already rewritten RemoteAddr from X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WebSocket upgrades the connection and attaches it to the live hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "live channel unavailable")
		return
	}

	upgrader := gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Str("component", "api").Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}

// checkWebSocketOrigin validates the Origin header against the configured
// CORS origins. Requests without an Origin header come from non-browser
// clients and are allowed.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.cfg == nil {
		return true
	}

	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("component", "api").
		Str("origin", origin).
		Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
