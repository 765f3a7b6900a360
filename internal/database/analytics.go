// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package database

import (
	"context"
	"fmt"

	"github.com/hmassawe/karatasi/internal/models"
)

// Reads count READ and DOWNLOAD actions; views count VIEW only. Page-level
// actions (CLICK, PAGE_VIEW) and CITATION are recorded but excluded from
// both totals.

// TotalReads returns the all-time count of read and download events.
func (db *DB) TotalReads(ctx context.Context) (int, error) {
	return db.countRows(ctx,
		"SELECT COUNT(*) FROM access_events WHERE action IN ('READ', 'DOWNLOAD')")
}

// TotalViews returns the all-time count of view events.
func (db *DB) TotalViews(ctx context.Context) (int, error) {
	return db.countRows(ctx,
		"SELECT COUNT(*) FROM access_events WHERE action = 'VIEW'")
}

// TotalBooks returns the number of catalog entries.
func (db *DB) TotalBooks(ctx context.Context) (int, error) {
	return db.countRows(ctx, "SELECT COUNT(*) FROM documents")
}

// TotalCitations returns the sum of citation counts across the catalog.
func (db *DB) TotalCitations(ctx context.Context) (int, error) {
	return db.countRows(ctx,
		"SELECT COALESCE(SUM(citations), 0) FROM documents")
}

func (db *DB) countRows(ctx context.Context, query string) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	if err := db.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return count, nil
}

// CategoryBreakdown returns per-category catalog size and activity counts.
// Categories with zero recorded activity still appear, with zero counts,
// because the join starts from the catalog side.
func (db *DB) CategoryBreakdown(ctx context.Context) ([]models.CategoryStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT d.category,
			COUNT(DISTINCT d.id) AS book_count,
			COUNT(CASE WHEN e.action IN ('READ', 'DOWNLOAD') THEN 1 END) AS reads,
			COUNT(CASE WHEN e.action = 'VIEW' THEN 1 END) AS views
		FROM documents d
		LEFT JOIN access_events e ON e.document_id = d.id
		GROUP BY d.category
		ORDER BY book_count DESC, d.category ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category breakdown: %w", err)
	}
	defer closeWithLog(rows, "category breakdown rows")

	stats := make([]models.CategoryStats, 0)
	for rows.Next() {
		var s models.CategoryStats
		if err := rows.Scan(&s.Category, &s.BookCount, &s.Reads, &s.Views); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rows: %w", err)
	}

	return stats, nil
}

// RegionBreakdown returns per-location activity totals grouped by country
// and region, excluding events whose country could not be resolved, limited
// to the top entries by total access.
func (db *DB) RegionBreakdown(ctx context.Context, limit int) ([]models.RegionStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT country,
			COALESCE(region, '') AS region,
			COUNT(*) AS total_access,
			COUNT(CASE WHEN action IN ('READ', 'DOWNLOAD') THEN 1 END) AS reads,
			COUNT(CASE WHEN action = 'VIEW' THEN 1 END) AS views
		FROM access_events
		WHERE country IS NOT NULL AND country != 'Unknown'
		GROUP BY country, COALESCE(region, '')
		ORDER BY total_access DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query region breakdown: %w", err)
	}
	defer closeWithLog(rows, "region breakdown rows")

	stats := make([]models.RegionStats, 0)
	for rows.Next() {
		var s models.RegionStats
		if err := rows.Scan(&s.Country, &s.Region, &s.TotalAccess, &s.Reads, &s.Views); err != nil {
			return nil, fmt.Errorf("failed to scan region row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate region rows: %w", err)
	}

	return stats, nil
}

// AnalyticsSnapshot assembles the full aggregate view served by the stats
// endpoint. Each component query runs against the same connection; the
// snapshot is read-consistent enough for dashboard use.
func (db *DB) AnalyticsSnapshot(ctx context.Context) (*models.AnalyticsSnapshot, error) {
	totalBooks, err := db.TotalBooks(ctx)
	if err != nil {
		return nil, err
	}
	totalReads, err := db.TotalReads(ctx)
	if err != nil {
		return nil, err
	}
	totalViews, err := db.TotalViews(ctx)
	if err != nil {
		return nil, err
	}
	totalCitations, err := db.TotalCitations(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := db.CategoryBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	regions, err := db.RegionBreakdown(ctx, 20)
	if err != nil {
		return nil, err
	}
	recent, err := db.RecentActivity(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &models.AnalyticsSnapshot{
		TotalBooks:     totalBooks,
		TotalReads:     totalReads,
		TotalViews:     totalViews,
		TotalCitations: totalCitations,
		Categories:     categories,
		Regions:        regions,
		Recent:         recent,
	}, nil
}
