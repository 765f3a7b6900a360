// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/hmassawe/karatasi/internal/config"
)

func wsURL(httpURL, path string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + path
}

func TestWebSocketThroughRouter(t *testing.T) {
	ts := newTestServer(t, nil)

	conn, resp, err := gorillaws.DefaultDialer.Dial(wsURL(ts.srv.URL, "/api/v1/ws"), nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = resp.Body.Close() }()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}

	var msg struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read status message: %v", err)
	}
	if msg.Type != "status" {
		t.Errorf("first message type = %q, want status", msg.Type)
	}
}

func TestWebSocketOriginRejected(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.CORSOrigins = []string{"https://karatasi.example"}
	})

	header := http.Header{"Origin": []string{"https://evil.example"}}
	conn, resp, err := gorillaws.DefaultDialer.Dial(wsURL(ts.srv.URL, "/api/v1/ws"), header)
	if err == nil {
		_ = conn.Close()
		t.Fatal("dial succeeded from unauthorized origin")
	}
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
		}
	}
}

func TestWebSocketOriginAllowed(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.CORSOrigins = []string{"https://karatasi.example"}
	})

	header := http.Header{"Origin": []string{"https://karatasi.example"}}
	conn, resp, err := gorillaws.DefaultDialer.Dial(wsURL(ts.srv.URL, "/api/v1/ws"), header)
	if err != nil {
		t.Fatalf("dial from allowed origin failed: %v", err)
	}
	defer func() { _ = conn.Close() }()
	_ = resp.Body.Close()
}
