// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/hmassawe/karatasi/internal/archive"
	"github.com/hmassawe/karatasi/internal/models"
)

// accessRequest is the body of POST /api/v1/access.
type accessRequest struct {
	DocumentID    string `json:"document_id" validate:"omitempty,uuid"`
	DocumentTitle string `json:"document_title" validate:"max=500"`
	Action        string `json:"action" validate:"required,action"`
	Country       string `json:"country" validate:"max=100"`
	Region        string `json:"region" validate:"max=100"`
}

// toInput converts the request into the service-layer form. The caller has
// already validated the fields, so the UUID parse only guards against races
// between validation rules and this mapping.
func (req *accessRequest) toInput(clientIP string) (archive.RecordAccessInput, error) {
	input := archive.RecordAccessInput{
		DocumentTitle: strings.TrimSpace(req.DocumentTitle),
		Action:        req.Action,
		Country:       strings.TrimSpace(req.Country),
		Region:        strings.TrimSpace(req.Region),
		ClientIP:      clientIP,
	}

	if req.DocumentID != "" {
		id, err := uuid.Parse(req.DocumentID)
		if err != nil {
			return input, fmt.Errorf("invalid document_id: %w", err)
		}
		input.DocumentID = &id
	}
	return input, nil
}

// documentRequest is the metadata of POST /api/v1/documents, from either a
// JSON body or multipart form fields.
type documentRequest struct {
	Title           string `json:"title" validate:"required,max=500"`
	Author          string `json:"author" validate:"required,max=255"`
	ISBN            string `json:"isbn" validate:"max=32"`
	PublicationYear int    `json:"publication_year" validate:"omitempty,min=1000,max=2100"`
	Type            string `json:"type" validate:"omitempty,doctype"`
	Category        string `json:"category" validate:"max=100"`
	Abstract        string `json:"abstract" validate:"max=5000"`
}

// toDocument builds the catalog entry. fileURL is empty when no file was
// uploaded; entries without an explicit type default to Book.
func (req *documentRequest) toDocument(fileURL string) *models.Document {
	docType := strings.TrimSpace(req.Type)
	if docType == "" {
		docType = models.DocumentTypeBook
	}
	doc := &models.Document{
		Title:    strings.TrimSpace(req.Title),
		Author:   strings.TrimSpace(req.Author),
		Type:     docType,
		Category: strings.TrimSpace(req.Category),
	}
	if isbn := strings.TrimSpace(req.ISBN); isbn != "" {
		doc.ISBN = &isbn
	}
	if req.PublicationYear != 0 {
		year := req.PublicationYear
		doc.PublicationYear = &year
	}
	if abstract := strings.TrimSpace(req.Abstract); abstract != "" {
		doc.Abstract = &abstract
	}
	if fileURL != "" {
		doc.FileURL = &fileURL
	}
	return doc
}

// documentRequestFromForm reads metadata fields from a parsed multipart form.
func documentRequestFromForm(r *http.Request) (*documentRequest, error) {
	req := &documentRequest{
		Title:    r.FormValue("title"),
		Author:   r.FormValue("author"),
		ISBN:     r.FormValue("isbn"),
		Type:     r.FormValue("type"),
		Category: r.FormValue("category"),
		Abstract: r.FormValue("abstract"),
	}

	if raw := strings.TrimSpace(r.FormValue("publication_year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid publication_year %q", raw)
		}
		req.PublicationYear = year
	}
	return req, nil
}

// decodeJSON parses a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
