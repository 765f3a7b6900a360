// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package services

import (
	"context"
)

// ContextHub matches *websocket.Hub's run loop without importing the
// websocket package.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService runs the live-feed hub under supervision. The hub's
// RunWithContext already follows the suture contract; this wrapper only
// contributes the service name.
type WebSocketHubService struct {
	hub ContextHub
}

// NewWebSocketHubService wraps the hub.
func NewWebSocketHubService(hub ContextHub) *WebSocketHubService {
	return &WebSocketHubService{hub: hub}
}

// Serve implements suture.Service.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	return w.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for supervision logs.
func (w *WebSocketHubService) String() string {
	return "websocket-hub"
}
