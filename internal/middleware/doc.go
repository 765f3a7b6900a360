// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

// Package middleware provides chi-compatible HTTP middleware: Prometheus
// request instrumentation and request ID propagation. Compression, CORS,
// rate limiting, and panic recovery come from the chi ecosystem and are
// assembled in the router.
package middleware
