// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hmassawe/karatasi/internal/config"
	"github.com/hmassawe/karatasi/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

func protectedHandler(t *testing.T, wantUser string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := GetUser(r.Context()); got != wantUser {
			t.Errorf("GetUser() = %q, want %q", got, wantUser)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddlewareModeNone(t *testing.T) {
	mw, err := Middleware(&config.SecurityConfig{AuthMode: "none"})
	if err != nil {
		t.Fatalf("Middleware() error = %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", nil)
	mw(protectedHandler(t, "")).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestMiddlewareModeBasic(t *testing.T) {
	cfg := &config.SecurityConfig{
		AuthMode:      "basic",
		AdminUsername: "librarian",
		AdminPassword: "correct-horse",
	}
	mw, err := Middleware(cfg)
	if err != nil {
		t.Fatalf("Middleware() error = %v", err)
	}

	t.Run("valid credentials pass through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/books", nil)
		req.Header.Set("Authorization", basicHeader("librarian", "correct-horse"))
		mw(protectedHandler(t, "librarian")).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
	})

	t.Run("missing credentials rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/books", nil)
		handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("handler should not be reached")
		})
		mw(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if got := rec.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Basic ") {
			t.Errorf("WWW-Authenticate = %q, want Basic challenge", got)
		}
		if !strings.Contains(rec.Body.String(), "UNAUTHORIZED") {
			t.Errorf("body = %q, want UNAUTHORIZED error code", rec.Body.String())
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/books", nil)
		req.Header.Set("Authorization", basicHeader("librarian", "wrong-horse"))
		handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("handler should not be reached")
		})
		mw(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func TestMiddlewareInvalidConfig(t *testing.T) {
	_, err := Middleware(&config.SecurityConfig{AuthMode: "basic", AdminUsername: "admin"})
	if err == nil {
		t.Error("Middleware() expected error for missing password")
	}
}
