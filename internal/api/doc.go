// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

// Package api exposes the HTTP surface of the archive: catalog browsing and
// upload, access event recording, the pull-aggregated analytics snapshot,
// visitor geolocation, the websocket live channel, and health endpoints.
//
// Every JSON endpoint wraps its payload in models.APIResponse. Routing is
// chi with the ecosystem middleware stack (RealIP, Recoverer, request IDs,
// CORS, rate limiting, compression) plus Prometheus instrumentation.
package api
