// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

// Package websocket implements the live activity feed.
//
// A single Hub owns the set of connected clients and fans recorded activity
// out to all of them. Each client gets a one-time status message on connect,
// then a stream of new_activity deltas. The feed is at-most-once: a client
// that connects late or falls behind misses deltas and is expected to
// resynchronize by fetching the aggregated analytics snapshot over HTTP.
//
// Slow clients are dropped rather than buffered indefinitely. A client whose
// send queue is full when a broadcast arrives is disconnected, which bounds
// hub memory regardless of client behavior.
package websocket
