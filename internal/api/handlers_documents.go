// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hmassawe/karatasi/internal/archive"
	"github.com/hmassawe/karatasi/internal/blob"
	"github.com/hmassawe/karatasi/internal/database"
	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/validation"
)

// ListDocuments handles GET /api/v1/documents. The q parameter is a
// case-insensitive substring search over title, author, and abstract;
// category filters exactly, with "all" or absent meaning no filter.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	search := strings.TrimSpace(r.URL.Query().Get("q"))
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	docs, err := h.db.ListDocuments(r.Context(), search, category)
	if err != nil {
		logging.Error().Err(err).Str("component", "api").Msg("Failed to list documents")
		respondError(w, http.StatusInternalServerError, ErrCodeStorageError, "failed to list documents")
		return
	}

	respondSuccess(w, http.StatusOK, docs, start)
}

// GetDocument handles GET /api/v1/documents/{id}.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := parseDocumentID(w, r)
	if !ok {
		return
	}

	doc, err := h.db.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, ErrCodeNotFound, "document not found")
			return
		}
		logging.Error().Err(err).Str("component", "api").Msg("Failed to load document")
		respondError(w, http.StatusInternalServerError, ErrCodeStorageError, "failed to load document")
		return
	}

	respondSuccess(w, http.StatusOK, doc, start)
}

// DocumentActivity handles GET /api/v1/documents/{id}/activity, returning
// the document's recent access events newest first.
func (h *Handler) DocumentActivity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := parseDocumentID(w, r)
	if !ok {
		return
	}

	limit := parseLimit(r, 10, 100)
	entries, err := h.db.DocumentActivity(r.Context(), id, limit)
	if err != nil {
		logging.Error().Err(err).Str("component", "api").Msg("Failed to load document activity")
		respondError(w, http.StatusInternalServerError, ErrCodeStorageError, "failed to load activity")
		return
	}

	respondSuccess(w, http.StatusOK, entries, start)
}

// CreateDocument handles POST /api/v1/documents. Metadata arrives either as
// a JSON body or as multipart form fields with an optional "file" part that
// is persisted to the blob store.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, fileURL, ok := h.parseCreateDocument(w, r)
	if !ok {
		return
	}

	if verr := validation.ValidateStruct(req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	doc := req.toDocument(fileURL)
	if err := h.svc.CreateDocument(r.Context(), doc); err != nil {
		if errors.Is(err, archive.ErrInvalidDocumentType) {
			respondError(w, http.StatusBadRequest, ErrCodeValidationError, err.Error())
			return
		}
		logging.Error().Err(err).Str("component", "api").Msg("Failed to create document")
		respondError(w, http.StatusInternalServerError, ErrCodeStorageError, "failed to create document")
		return
	}

	respondSuccess(w, http.StatusCreated, doc, start)
}

// parseCreateDocument extracts the metadata and stores an uploaded file if
// one is present. It writes the error response itself and reports ok=false.
func (h *Handler) parseCreateDocument(w http.ResponseWriter, r *http.Request) (req *documentRequest, fileURL string, ok bool) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		req = &documentRequest{}
		if err := decodeJSON(r, req); err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return nil, "", false
		}
		return req, "", true
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.blobs.MaxBytes()+1024*1024)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid multipart form")
		return nil, "", false
	}

	req, err := documentRequestFromForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, "", true
	case err != nil:
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid file upload")
		return nil, "", false
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("component", "api").Msg("Failed to close upload")
		}
	}()

	fileURL, err = h.blobs.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, blob.ErrTooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, err.Error())
			return nil, "", false
		}
		logging.Error().Err(err).Str("component", "api").Msg("Failed to store upload")
		respondError(w, http.StatusInternalServerError, ErrCodeStorageError, "failed to store upload")
		return nil, "", false
	}
	return req, fileURL, true
}

// CiteDocument handles POST /api/v1/documents/{id}/cite. It increments the
// citation count, records a CITATION access event, and returns the new count.
func (h *Handler) CiteDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := parseDocumentID(w, r)
	if !ok {
		return
	}

	// The body is optional and may carry a caller-supplied location.
	var req accessRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
	}

	input := archive.RecordAccessInput{
		Country:  strings.TrimSpace(req.Country),
		Region:   strings.TrimSpace(req.Region),
		ClientIP: clientIP(r),
	}

	citations, err := h.svc.Cite(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, ErrCodeNotFound, "document not found")
			return
		}
		logging.Error().Err(err).Str("component", "api").Msg("Failed to record citation")
		respondError(w, http.StatusInternalServerError, ErrCodeStorageError, "failed to record citation")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]int{"citations": citations}, start)
}

func parseDocumentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid document id")
		return uuid.Nil, false
	}
	return id, true
}

func parseLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
