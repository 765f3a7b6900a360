// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hmassawe/karatasi/internal/metrics"
	"github.com/hmassawe/karatasi/internal/models"
)

// InsertAccessEvent persists a single access event. The event ID and
// timestamp are assigned server-side and written back to the passed event,
// so the persisted record is the authoritative one.
func (db *DB) InsertAccessEvent(ctx context.Context, event *models.AccessEvent) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "access_events", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Country == "" {
		event.Country = models.UnknownCountry
	}

	var documentID interface{}
	if event.DocumentID != nil {
		documentID = event.DocumentID.String()
	}

	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO access_events (id, document_id, document_title, action,
			country, region, identity_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`,
		event.ID.String(), documentID, event.DocumentTitle, event.Action,
		event.Country, event.Region, event.IdentityHash)

	if err := row.Scan(&event.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert access event: %w", err)
	}

	return nil
}

// RecentActivity returns the most recent access events, newest first.
func (db *DB) RecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id::VARCHAR AS id, document_id::VARCHAR AS document_id,
			document_title, action, country, region, created_at
		FROM access_events
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	defer closeWithLog(rows, "recent activity rows")

	return scanActivityRows(rows)
}

// DocumentActivity returns the most recent access events for one document.
func (db *DB) DocumentActivity(ctx context.Context, documentID uuid.UUID, limit int) ([]models.ActivityEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id::VARCHAR AS id, document_id::VARCHAR AS document_id,
			document_title, action, country, region, created_at
		FROM access_events
		WHERE document_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, documentID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query document activity: %w", err)
	}
	defer closeWithLog(rows, "document activity rows")

	return scanActivityRows(rows)
}

func scanActivityRows(rows *sql.Rows) ([]models.ActivityEntry, error) {
	entries := make([]models.ActivityEntry, 0)
	for rows.Next() {
		var entry models.ActivityEntry
		var id string
		var documentID, region sql.NullString

		err := rows.Scan(&id, &documentID, &entry.DocumentTitle, &entry.Action,
			&entry.Country, &region, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid event id %q: %w", id, err)
		}
		entry.ID = parsed

		if documentID.Valid {
			docID, err := uuid.Parse(documentID.String)
			if err != nil {
				return nil, fmt.Errorf("invalid document id %q: %w", documentID.String, err)
			}
			entry.DocumentID = &docID
		}
		if region.Valid {
			entry.Region = &region.String
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity rows: %w", err)
	}

	return entries, nil
}
