// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package services

import (
	"context"
	"errors"
	"testing"
)

type mockHub struct {
	ran bool
}

func (m *mockHub) RunWithContext(ctx context.Context) error {
	m.ran = true
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubServiceDelegates(t *testing.T) {
	hub := &mockHub{}
	svc := NewWebSocketHubService(hub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if !hub.ran {
		t.Error("hub run loop was not invoked")
	}
}

func TestWebSocketHubServiceString(t *testing.T) {
	svc := NewWebSocketHubService(&mockHub{})
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}
}
