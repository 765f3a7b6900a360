// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/hmassawe/karatasi/internal/config"
	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/models"
)

type contextKey string

// UserKey holds the authenticated username in the request context.
const UserKey contextKey = "auth_user"

// Middleware builds the authentication middleware for administrative routes.
// With auth_mode "none" it is a passthrough; with "basic" every request must
// carry valid admin credentials.
func Middleware(cfg *config.SecurityConfig) (func(http.Handler) http.Handler, error) {
	if cfg.AuthMode != "basic" {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	manager, err := NewBasicAuthManager(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := manager.ValidateCredentials(r.Header.Get("Authorization"))
			if err != nil {
				logging.Warn().
					Str("component", "auth").
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("Rejected unauthenticated request")
				w.Header().Set("WWW-Authenticate", manager.WWWAuthenticateHeader())
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

// GetUser returns the authenticated username from the context, or "".
func GetUser(ctx context.Context) string {
	if user, ok := ctx.Value(UserKey).(string); ok {
		return user
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	resp := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    "UNAUTHORIZED",
			Message: "valid credentials are required",
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Str("component", "auth").Msg("Failed to encode response")
	}
}
