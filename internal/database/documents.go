// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hmassawe/karatasi/internal/metrics"
	"github.com/hmassawe/karatasi/internal/models"
)

const documentColumns = `id::VARCHAR AS id, title, author, isbn, publication_year, type,
	category, citations, abstract, file_url, created_at`

// ListDocuments returns catalog entries matching the given search term and
// category, newest first. An empty search matches everything; category "all"
// or "" disables the category filter. Search is case-insensitive over title,
// author, and abstract.
func (db *DB) ListDocuments(ctx context.Context, search, category string) (docs []models.Document, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", "documents", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var conditions []string
	var args []interface{}

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		conditions = append(conditions,
			"(LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(COALESCE(abstract, '')) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if category != "" && !strings.EqualFold(category, "all") {
		conditions = append(conditions, "category = ?")
		args = append(args, category)
	}

	query := "SELECT " + documentColumns + " FROM documents"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer closeWithLog(rows, "documents rows")

	docs = make([]models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// GetDocument returns a single catalog entry by ID.
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id.String())

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &doc, nil
}

// CreateDocument inserts a new catalog entry. The ID and CreatedAt fields
// are assigned server-side and written back to the passed document.
func (db *DB) CreateDocument(ctx context.Context, doc *models.Document) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Category == "" {
		doc.Category = models.DefaultCategory
	}

	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO documents (id, title, author, isbn, publication_year,
			type, category, citations, abstract, file_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`,
		doc.ID.String(), doc.Title, doc.Author, doc.ISBN, doc.PublicationYear,
		doc.Type, doc.Category, doc.Citations, doc.Abstract, doc.FileURL)

	if err := row.Scan(&doc.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

// IncrementCitations atomically bumps the citation count for a document and
// returns the new count. The increment happens inside a single UPDATE so
// that concurrent citations never lose updates.
func (db *DB) IncrementCitations(ctx context.Context, id uuid.UUID) (citations int, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("update", "documents", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err = db.conn.QueryRowContext(ctx, `
		UPDATE documents SET citations = citations + 1
		WHERE id = ?
		RETURNING citations`, id.String()).Scan(&citations)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment citations: %w", err)
	}

	return citations, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (models.Document, error) {
	var doc models.Document
	var id string
	var isbn, abstract, fileURL sql.NullString
	var pubYear sql.NullInt32

	err := row.Scan(&id, &doc.Title, &doc.Author, &isbn, &pubYear, &doc.Type,
		&doc.Category, &doc.Citations, &abstract, &fileURL, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return doc, err
		}
		return doc, fmt.Errorf("failed to scan document: %w", err)
	}

	doc.ID, err = uuid.Parse(id)
	if err != nil {
		return doc, fmt.Errorf("invalid document id %q: %w", id, err)
	}
	if isbn.Valid {
		doc.ISBN = &isbn.String
	}
	if pubYear.Valid {
		year := int(pubYear.Int32)
		doc.PublicationYear = &year
	}
	if abstract.Valid {
		doc.Abstract = &abstract.String
	}
	if fileURL.Valid {
		doc.FileURL = &fileURL.String
	}

	return doc, nil
}
