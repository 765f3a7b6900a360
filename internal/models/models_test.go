// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValidAction(t *testing.T) {
	valid := []string{ActionView, ActionDownload, ActionRead, ActionClick, ActionPageView, ActionCitation}
	for _, a := range valid {
		if !ValidAction(a) {
			t.Errorf("ValidAction(%q) = false, want true", a)
		}
	}

	invalid := []string{"", "view", "BOGUS", "UPLOAD", "Download", "VIEW "}
	for _, a := range invalid {
		if ValidAction(a) {
			t.Errorf("ValidAction(%q) = true, want false", a)
		}
	}
}

func TestValidDocumentType(t *testing.T) {
	for _, typ := range []string{DocumentTypeBook, DocumentTypeJournal, DocumentTypePaper} {
		if !ValidDocumentType(typ) {
			t.Errorf("ValidDocumentType(%q) = false, want true", typ)
		}
	}
	if ValidDocumentType("Magazine") {
		t.Error("ValidDocumentType(\"Magazine\") = true, want false")
	}
}

func TestDisplayLocation(t *testing.T) {
	tests := []struct {
		name    string
		country string
		region  string
		want    string
	}{
		{"both present", "Kenya", "Nairobi", "Nairobi, Kenya"},
		{"country only", "Tanzania", "", "Tanzania"},
		{"unknown region", "Tanzania", "Unknown", "Tanzania"},
		{"unknown country", "Unknown", "Nairobi", "Unknown"},
		{"nothing known", "", "", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayLocation(tt.country, tt.region); got != tt.want {
				t.Errorf("DisplayLocation(%q, %q) = %q, want %q", tt.country, tt.region, got, tt.want)
			}
		})
	}
}

func TestNewActivity(t *testing.T) {
	docID := uuid.New()
	region := "Nairobi"
	now := time.Now()

	event := &AccessEvent{
		ID:            uuid.New(),
		DocumentID:    &docID,
		DocumentTitle: "Media Law & Ethics",
		Action:        ActionView,
		Country:       "Kenya",
		Region:        &region,
		CreatedAt:     now,
	}

	activity := NewActivity(event)

	if activity.Action != ActionView {
		t.Errorf("Action = %q, want %q", activity.Action, ActionView)
	}
	if activity.Book != "Media Law & Ethics" {
		t.Errorf("Book = %q, want %q", activity.Book, "Media Law & Ethics")
	}
	if activity.BookID == nil || *activity.BookID != docID {
		t.Error("BookID not carried through")
	}
	if activity.Location != "Nairobi, Kenya" {
		t.Errorf("Location = %q, want %q", activity.Location, "Nairobi, Kenya")
	}
	if !activity.Timestamp.Equal(now) {
		t.Error("Timestamp should be the event creation time")
	}
}

func TestNewActivityPageLevel(t *testing.T) {
	event := &AccessEvent{
		ID:            uuid.New(),
		DocumentTitle: "Homepage",
		Action:        ActionPageView,
		Country:       UnknownCountry,
		CreatedAt:     time.Now(),
	}

	activity := NewActivity(event)

	if activity.BookID != nil {
		t.Error("BookID should be nil for page-level events")
	}
	if activity.Location != UnknownCountry {
		t.Errorf("Location = %q, want %q", activity.Location, UnknownCountry)
	}
}
