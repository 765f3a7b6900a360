// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package models

import (
	"time"

	"github.com/google/uuid"
)

// Access event actions. Every persisted event carries exactly one of these.
const (
	ActionView     = "VIEW"
	ActionDownload = "DOWNLOAD"
	ActionRead     = "READ"
	ActionClick    = "CLICK"
	ActionPageView = "PAGE_VIEW"
	ActionCitation = "CITATION"
)

// ActionUpload is broadcast when a new document enters the catalog.
// It is a live-channel message only and is never persisted as an AccessEvent.
const ActionUpload = "UPLOAD"

// UnknownCountry is persisted when a caller supplies no country.
// Events with this country are excluded from regional aggregation.
const UnknownCountry = "Unknown"

// AccessEvent is an immutable record of one user action against the catalog
// or a specific document.
//
// The document title is denormalized onto the event so event history survives
// independent of catalog lifecycle. DocumentID is nil for page-level events.
// CreatedAt is always server-assigned.
type AccessEvent struct {
	ID            uuid.UUID  `json:"id"`
	DocumentID    *uuid.UUID `json:"document_id,omitempty"`
	DocumentTitle string     `json:"document_title"`
	Action        string     `json:"action"`
	Country       string     `json:"country"`
	Region        *string    `json:"region,omitempty"`
	IdentityHash  *string    `json:"identity_hash,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ValidAction reports whether action is one of the six persisted event kinds.
func ValidAction(action string) bool {
	switch action {
	case ActionView, ActionDownload, ActionRead, ActionClick, ActionPageView, ActionCitation:
		return true
	}
	return false
}

// DisplayLocation derives the single canonical human-readable location string
// used by live-channel payloads: "Region, Country" when both are known,
// the country alone otherwise, and "Unknown" when nothing is known.
func DisplayLocation(country, region string) string {
	if country == "" || country == UnknownCountry {
		return UnknownCountry
	}
	if region == "" || region == UnknownCountry {
		return country
	}
	return region + ", " + country
}

// Activity is the live-channel payload broadcast for every recorded event.
// Field names match what dashboard sessions consume.
type Activity struct {
	Action    string     `json:"action"`
	Book      string     `json:"book"`
	BookID    *uuid.UUID `json:"book_id,omitempty"`
	Location  string     `json:"location"`
	Country   string     `json:"country,omitempty"`
	Region    string     `json:"region,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewActivity builds the broadcast payload for a persisted access event.
func NewActivity(event *AccessEvent) Activity {
	region := ""
	if event.Region != nil {
		region = *event.Region
	}
	return Activity{
		Action:    event.Action,
		Book:      event.DocumentTitle,
		BookID:    event.DocumentID,
		Location:  DisplayLocation(event.Country, region),
		Country:   event.Country,
		Region:    region,
		Timestamp: event.CreatedAt,
	}
}
