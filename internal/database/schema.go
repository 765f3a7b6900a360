// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package database

import (
	"context"
	"fmt"
	"time"
)

// createTables creates the documents and access_events tables if they do not
// already exist. DuckDB has no server-side migrations; the schema is applied
// idempotently at startup.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	statements := []struct {
		name string
		sql  string
	}{
		{
			name: "documents",
			sql: `
				CREATE TABLE IF NOT EXISTS documents (
					id UUID PRIMARY KEY,
					title VARCHAR NOT NULL,
					author VARCHAR NOT NULL,
					isbn VARCHAR,
					publication_year INTEGER,
					type VARCHAR NOT NULL,
					category VARCHAR NOT NULL DEFAULT 'General',
					citations INTEGER NOT NULL DEFAULT 0,
					abstract VARCHAR,
					file_url VARCHAR,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
		},
		{
			name: "access_events",
			sql: `
				CREATE TABLE IF NOT EXISTS access_events (
					id UUID PRIMARY KEY,
					document_id UUID,
					document_title VARCHAR NOT NULL DEFAULT '',
					action VARCHAR NOT NULL,
					country VARCHAR NOT NULL DEFAULT 'Unknown',
					region VARCHAR,
					identity_hash VARCHAR,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
		},
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt.sql); err != nil {
			return fmt.Errorf("failed to create table %s: %w", stmt.name, err)
		}
	}

	return nil
}

// createIndexes creates indexes for the aggregation query paths.
func (db *DB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_events_document_id ON access_events(document_id)",
		"CREATE INDEX IF NOT EXISTS idx_events_action ON access_events(action)",
		"CREATE INDEX IF NOT EXISTS idx_events_created_at ON access_events(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_events_country ON access_events(country)",
		"CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category)",
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
