// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hmassawe/karatasi/internal/middleware"
)

// NewRouter assembles the full HTTP surface. adminOnly guards the document
// upload and admin activity-log routes; with auth_mode "none" it is a
// passthrough.
func NewRouter(h *Handler, adminOnly func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(corsHandler(h))
	r.Use(chimiddleware.Compress(5))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		// The live channel holds its connection open and is exempt
		// from per-request rate limiting.
		r.Get("/ws", h.WebSocket)

		r.Group(func(r chi.Router) {
			if h.cfg != nil && !h.cfg.Security.RateLimitDisabled {
				requests := h.cfg.Security.RateLimitReqs
				window := h.cfg.Security.RateLimitWindow
				if requests <= 0 {
					requests = 100
				}
				if window <= 0 {
					window = time.Minute
				}
				r.Use(httprate.LimitByIP(requests, window))
			}

			r.Get("/health", h.Health)
			r.Get("/health/live", h.HealthLive)
			r.Get("/health/ready", h.HealthReady)

			r.Get("/documents", h.ListDocuments)
			r.Get("/documents/{id}", h.GetDocument)
			r.Get("/documents/{id}/activity", h.DocumentActivity)
			r.Post("/documents/{id}/cite", h.CiteDocument)

			r.Post("/access", h.RecordAccess)
			r.Get("/analytics", h.Analytics)
			r.Get("/geo", h.Geolocate)

			r.With(adminOnly).Post("/documents", h.CreateDocument)
			r.With(adminOnly).Get("/activity", h.RecentActivity)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	if h.blobs != nil {
		r.Handle(h.blobs.BaseURL()+"/*", h.blobs.Handler())
	}

	if h.cfg != nil && h.cfg.Server.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(h.cfg.Server.StaticDir))
		r.Handle("/*", fileServer)
	}

	return r
}

func corsHandler(h *Handler) func(http.Handler) http.Handler {
	var origins []string
	if h.cfg != nil {
		origins = h.cfg.Security.CORSOrigins
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           86400,
	})
}
