// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

// Package archive implements the write paths of the library archive: access
// recording, citation tracking, and catalog additions. Each write persists
// first, then publishes a live delta onto the activity bus. Publish failures
// never fail the request; the event log is the source of truth and live
// clients resynchronize from the analytics snapshot.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hmassawe/karatasi/internal/database"
	"github.com/hmassawe/karatasi/internal/events"
	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/metrics"
	"github.com/hmassawe/karatasi/internal/models"
)

// ErrInvalidAction is returned when an access record names an unknown or
// non-recordable action kind.
var ErrInvalidAction = errors.New("invalid access action")

// ErrInvalidDocumentType is returned when a new catalog entry names an
// unknown document type.
var ErrInvalidDocumentType = errors.New("invalid document type")

// ErrMissingTitle is returned when a page-level event (no document
// reference) carries no title. Events referencing a document inherit the
// catalog title instead.
var ErrMissingTitle = errors.New("document title is required")

// GeoResolver maps a client IP to a coarse location.
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) models.Geolocation
}

// Service coordinates persistence, geolocation, and live broadcast.
type Service struct {
	db  *database.DB
	bus *events.Bus
	geo GeoResolver
}

// NewService wires the write paths together.
func NewService(db *database.DB, bus *events.Bus, geo GeoResolver) *Service {
	return &Service{db: db, bus: bus, geo: geo}
}

// RecordAccessInput is one access action to record. Country and Region are
// trusted if supplied by the client; otherwise the service resolves them
// from ClientIP.
type RecordAccessInput struct {
	DocumentID    *uuid.UUID
	DocumentTitle string
	Action        string
	Country       string
	Region        string
	ClientIP      string
}

// RecordAccess validates, geolocates, persists, and broadcasts one access
// event. The returned event carries the server-assigned ID and timestamp.
func (s *Service) RecordAccess(ctx context.Context, input RecordAccessInput) (*models.AccessEvent, error) {
	if !models.ValidAction(input.Action) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, input.Action)
	}

	country := input.Country
	region := input.Region
	if country == "" && s.geo != nil {
		loc := s.geo.Resolve(ctx, input.ClientIP)
		country = loc.Country
		region = loc.Region
	}
	if country == "" {
		country = models.UnknownCountry
	}

	// Denormalize the document title onto the event so activity history
	// survives catalog changes. A client-supplied title wins; otherwise
	// look it up, and reject unknown document IDs.
	title := input.DocumentTitle
	if input.DocumentID != nil && title == "" {
		doc, err := s.db.GetDocument(ctx, *input.DocumentID)
		if err != nil {
			return nil, err
		}
		title = doc.Title
	}
	if title == "" {
		return nil, ErrMissingTitle
	}

	event := &models.AccessEvent{
		DocumentID:    input.DocumentID,
		DocumentTitle: title,
		Action:        input.Action,
		Country:       country,
	}
	if region != "" {
		event.Region = &region
	}
	if hash := HashIdentity(input.ClientIP, time.Now()); hash != "" {
		event.IdentityHash = &hash
	}

	if err := s.db.InsertAccessEvent(ctx, event); err != nil {
		return nil, err
	}
	metrics.RecordAccessEvent(event.Action)

	s.publish(event)
	return event, nil
}

// Cite atomically increments a document's citation count, records the
// citation as an access event, and broadcasts it. Returns the new count.
func (s *Service) Cite(ctx context.Context, documentID uuid.UUID, input RecordAccessInput) (int, error) {
	doc, err := s.db.GetDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}

	citations, err := s.db.IncrementCitations(ctx, documentID)
	if err != nil {
		return 0, err
	}
	metrics.CitationsRecorded.Inc()

	input.DocumentID = &documentID
	input.DocumentTitle = doc.Title
	input.Action = models.ActionCitation
	if _, err := s.RecordAccess(ctx, input); err != nil {
		// The increment already happened; a failed activity record must
		// not undo or mask it.
		logging.Warn().Err(err).Str("document_id", documentID.String()).Msg("citation recorded without activity event")
	}

	return citations, nil
}

// CreateDocument adds a catalog entry and broadcasts its arrival. The
// upload announcement is live-only: no access event is persisted for it.
func (s *Service) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc.Type == "" {
		doc.Type = models.DocumentTypeBook
	}
	if !models.ValidDocumentType(doc.Type) {
		return fmt.Errorf("%w: %q", ErrInvalidDocumentType, doc.Type)
	}

	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return err
	}

	activity := &models.Activity{
		Action:    models.ActionUpload,
		Book:      doc.Title,
		BookID:    &doc.ID,
		Location:  "Library",
		Timestamp: doc.CreatedAt,
	}
	if err := s.bus.PublishActivity(activity); err != nil {
		logging.Warn().Err(err).Msg("failed to broadcast catalog addition")
	}

	return nil
}

func (s *Service) publish(event *models.AccessEvent) {
	activity := models.NewActivity(event)
	if err := s.bus.PublishActivity(&activity); err != nil {
		logging.Warn().Err(err).Str("action", event.Action).Msg("failed to broadcast activity")
	}
}
