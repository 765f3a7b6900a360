// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/hmassawe/karatasi/internal/archive"
	"github.com/hmassawe/karatasi/internal/database"
	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/validation"
)

// RecordAccess handles POST /api/v1/access. The persisted event is returned
// so callers can surface the resolved location immediately.
func (h *Handler) RecordAccess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req accessRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	input, err := req.toInput(clientIP(r))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	event, err := h.svc.RecordAccess(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, archive.ErrInvalidAction), errors.Is(err, archive.ErrMissingTitle):
			respondError(w, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		case errors.Is(err, database.ErrNotFound):
			respondError(w, http.StatusNotFound, ErrCodeNotFound, "document not found")
		default:
			logging.Error().Err(err).Str("component", "api").Msg("Failed to record access event")
			respondError(w, http.StatusInternalServerError, ErrCodeStorageError, "failed to record access event")
		}
		return
	}

	respondSuccess(w, http.StatusCreated, event, start)
}

// Analytics handles GET /api/v1/analytics, assembling the full dashboard
// snapshot from the event log.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snapshot, err := h.db.AnalyticsSnapshot(r.Context())
	if err != nil {
		logging.Error().Err(err).Str("component", "api").Msg("Failed to build analytics snapshot")
		respondError(w, http.StatusInternalServerError, ErrCodeStorageError, "failed to build analytics snapshot")
		return
	}

	respondSuccess(w, http.StatusOK, snapshot, start)
}

// Geolocate handles GET /api/v1/geo, resolving the caller's own location.
// Resolution never fails; unresolvable addresses yield the default location.
func (h *Handler) Geolocate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	location := h.geo.Resolve(r.Context(), clientIP(r))
	respondSuccess(w, http.StatusOK, location, start)
}

// RecentActivity handles GET /api/v1/activity for the admin event log table.
func (h *Handler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := parseLimit(r, 10, 100)
	entries, err := h.db.RecentActivity(r.Context(), limit)
	if err != nil {
		logging.Error().Err(err).Str("component", "api").Msg("Failed to load recent activity")
		respondError(w, http.StatusInternalServerError, ErrCodeStorageError, "failed to load recent activity")
		return
	}

	respondSuccess(w, http.StatusOK, entries, start)
}
