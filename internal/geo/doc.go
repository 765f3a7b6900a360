// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

// Package geo resolves visitor IP addresses to coarse locations.
//
// Resolution order: Badger cache, then each provider in turn (ipapi.co,
// then ip-api.com), then the configured default location. Each provider
// sits behind a circuit breaker so a dead upstream stops being probed on
// every request. Resolution never fails: any error path yields the default
// location, which represents the home institution.
package geo
