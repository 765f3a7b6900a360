// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package models

import (
	"time"

	"github.com/google/uuid"
)

// Document types in the catalog.
const (
	DocumentTypeBook    = "Book"
	DocumentTypeJournal = "Journal"
	DocumentTypePaper   = "Paper"
)

// DefaultCategory is assigned when a document is created without a category.
const DefaultCategory = "General"

// Document is a catalog entry representing a book, journal, or paper.
//
// Documents are created on upload and mutated only by citation increments;
// they are never deleted. The citation count is non-negative and
// monotonically non-decreasing.
type Document struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            *string    `json:"isbn,omitempty"`
	PublicationYear *int       `json:"publication_year,omitempty"`
	Type            string     `json:"type"`
	Category        string     `json:"category"`
	Citations       int        `json:"citations"`
	Abstract        *string    `json:"abstract,omitempty"`
	FileURL         *string    `json:"file_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ValidDocumentType reports whether t is one of the catalog document types.
func ValidDocumentType(t string) bool {
	switch t {
	case DocumentTypeBook, DocumentTypeJournal, DocumentTypePaper:
		return true
	}
	return false
}
