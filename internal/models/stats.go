// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package models

import (
	"time"

	"github.com/google/uuid"
)

// CategoryStats is the per-category rollup of catalog size and access counts.
// Derived fresh from the event log on every query, never stored.
// Categories with zero events still appear with zero counts.
type CategoryStats struct {
	Category  string `json:"category"`
	BookCount int    `json:"book_count"`
	Reads     int    `json:"reads"`
	Views     int    `json:"views"`
}

// RegionStats is the per-(country, region) rollup of access counts.
// Events with an unknown country are excluded before grouping.
type RegionStats struct {
	Country     string `json:"country"`
	Region      string `json:"region"`
	TotalAccess int    `json:"total_access"`
	Reads       int    `json:"reads"`
	Views       int    `json:"views"`
}

// ActivityEntry is the minimal event projection used by the admin log table
// and per-document activity feeds.
type ActivityEntry struct {
	ID            uuid.UUID  `json:"id"`
	DocumentID    *uuid.UUID `json:"document_id,omitempty"`
	DocumentTitle string     `json:"document_title"`
	Action        string     `json:"action"`
	Country       string     `json:"country"`
	Region        *string    `json:"region,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AnalyticsSnapshot is the pull-aggregated dashboard state. A reconnecting
// live-channel client fetches this to resynchronize, then applies deltas.
type AnalyticsSnapshot struct {
	TotalBooks     int             `json:"total_books"`
	TotalReads     int             `json:"total_reads"`
	TotalViews     int             `json:"total_views"`
	TotalCitations int             `json:"total_citations"`
	Categories     []CategoryStats `json:"category_stats"`
	Regions        []RegionStats   `json:"access_by_region"`
	Recent         []ActivityEntry `json:"recent_activity"`
}
