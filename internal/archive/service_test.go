// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/hmassawe/karatasi/internal/config"
	"github.com/hmassawe/karatasi/internal/database"
	"github.com/hmassawe/karatasi/internal/events"
	"github.com/hmassawe/karatasi/internal/models"
)

// fixedResolver returns a canned location for every lookup.
type fixedResolver struct {
	loc models.Geolocation
}

func (f *fixedResolver) Resolve(ctx context.Context, ip string) models.Geolocation {
	return f.loc
}

type testEnv struct {
	svc  *Service
	db   *database.DB
	msgs <-chan *message.Message
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:      filepath.Join(t.TempDir(), "test.duckdb"),
		MaxMemory: "256MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	bus := events.NewBus(nil)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("failed to subscribe to bus: %v", err)
	}

	resolver := &fixedResolver{loc: models.Geolocation{
		Country: "Tanzania",
		Region:  "Dar es Salaam",
		Source:  "test",
	}}

	return &testEnv{
		svc:  NewService(db, bus, resolver),
		db:   db,
		msgs: msgs,
	}
}

func (e *testEnv) nextActivity(t *testing.T) *models.Activity {
	t.Helper()

	select {
	case msg := <-e.msgs:
		activity, err := events.DecodeActivity(msg)
		if err != nil {
			t.Fatalf("failed to decode activity: %v", err)
		}
		msg.Ack()
		return activity
	case <-time.After(2 * time.Second):
		t.Fatal("no activity published")
		return nil
	}
}

func (e *testEnv) createDocument(t *testing.T, title string) *models.Document {
	t.Helper()

	doc := &models.Document{Title: title, Author: "Test Author", Type: models.DocumentTypeBook}
	if err := e.svc.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	// Consume the UPLOAD announcement so later assertions see only the
	// activity under test.
	upload := e.nextActivity(t)
	if upload.Action != models.ActionUpload {
		t.Fatalf("expected UPLOAD announcement, got %q", upload.Action)
	}
	return doc
}

func TestRecordAccessPersistsAndBroadcasts(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, "Pan-Africanism and Media")

	event, err := env.svc.RecordAccess(context.Background(), RecordAccessInput{
		DocumentID: &doc.ID,
		Action:     models.ActionRead,
		Country:    "Kenya",
		Region:     "Nairobi County",
		ClientIP:   "203.0.113.5",
	})
	if err != nil {
		t.Fatalf("RecordAccess failed: %v", err)
	}

	if event.ID == uuid.Nil {
		t.Error("event ID not assigned")
	}
	if event.DocumentTitle != doc.Title {
		t.Errorf("title = %q, want %q (denormalized)", event.DocumentTitle, doc.Title)
	}
	if event.IdentityHash == nil || *event.IdentityHash == "" {
		t.Error("identity hash not derived from client IP")
	}

	activity := env.nextActivity(t)
	if activity.Action != models.ActionRead {
		t.Errorf("broadcast action = %q, want READ", activity.Action)
	}
	if activity.Location != "Nairobi County, Kenya" {
		t.Errorf("broadcast location = %q, want Nairobi County, Kenya", activity.Location)
	}
	if activity.BookID == nil || *activity.BookID != doc.ID {
		t.Errorf("broadcast book id = %v, want %s", activity.BookID, doc.ID)
	}

	stored, err := env.db.DocumentActivity(context.Background(), doc.ID, 10)
	if err != nil {
		t.Fatalf("DocumentActivity failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d events, want 1", len(stored))
	}
}

func TestRecordAccessResolvesLocation(t *testing.T) {
	env := newTestEnv(t)

	event, err := env.svc.RecordAccess(context.Background(), RecordAccessInput{
		DocumentTitle: "Archive Home",
		Action:        models.ActionPageView,
		ClientIP:      "203.0.113.5",
	})
	if err != nil {
		t.Fatalf("RecordAccess failed: %v", err)
	}

	if event.Country != "Tanzania" {
		t.Errorf("country = %q, want resolver's Tanzania", event.Country)
	}
	if event.Region == nil || *event.Region != "Dar es Salaam" {
		t.Errorf("region = %v, want Dar es Salaam", event.Region)
	}

	activity := env.nextActivity(t)
	if activity.Location != "Dar es Salaam, Tanzania" {
		t.Errorf("location = %q, want Dar es Salaam, Tanzania", activity.Location)
	}
}

func TestRecordAccessClientCountryWins(t *testing.T) {
	env := newTestEnv(t)

	event, err := env.svc.RecordAccess(context.Background(), RecordAccessInput{
		DocumentTitle: "Archive Home",
		Action:        models.ActionView,
		Country:       "Uganda",
		ClientIP:      "203.0.113.5",
	})
	if err != nil {
		t.Fatalf("RecordAccess failed: %v", err)
	}
	if event.Country != "Uganda" {
		t.Errorf("country = %q, want client-supplied Uganda", event.Country)
	}
}

func TestRecordAccessRejectsInvalidAction(t *testing.T) {
	env := newTestEnv(t)

	tests := []string{"", "BORROW", "view", models.ActionUpload}
	for _, action := range tests {
		_, err := env.svc.RecordAccess(context.Background(), RecordAccessInput{Action: action})
		if !errors.Is(err, ErrInvalidAction) {
			t.Errorf("action %q: got %v, want ErrInvalidAction", action, err)
		}
	}
}

func TestRecordAccessMissingTitle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.RecordAccess(context.Background(), RecordAccessInput{
		Action:   models.ActionPageView,
		ClientIP: "203.0.113.5",
	})
	if !errors.Is(err, ErrMissingTitle) {
		t.Errorf("got %v, want ErrMissingTitle", err)
	}
}

func TestRecordAccessUnknownDocument(t *testing.T) {
	env := newTestEnv(t)

	missing := uuid.New()
	_, err := env.svc.RecordAccess(context.Background(), RecordAccessInput{
		DocumentID: &missing,
		Action:     models.ActionView,
	})
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("got %v, want database.ErrNotFound", err)
	}
}

func TestCite(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, "Media Law & Ethics")

	ctx := context.Background()
	for want := 1; want <= 2; want++ {
		got, err := env.svc.Cite(ctx, doc.ID, RecordAccessInput{Country: "Tanzania", ClientIP: "203.0.113.5"})
		if err != nil {
			t.Fatalf("Cite failed: %v", err)
		}
		if got != want {
			t.Errorf("citations = %d, want %d", got, want)
		}

		activity := env.nextActivity(t)
		if activity.Action != models.ActionCitation {
			t.Errorf("broadcast action = %q, want CITATION", activity.Action)
		}
		if activity.Book != doc.Title {
			t.Errorf("broadcast book = %q, want %q", activity.Book, doc.Title)
		}
	}

	// Citations are persisted as access events too.
	stored, err := env.db.DocumentActivity(ctx, doc.ID, 10)
	if err != nil {
		t.Fatalf("DocumentActivity failed: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored %d events, want 2", len(stored))
	}
}

func TestCiteUnknownDocument(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Cite(context.Background(), uuid.New(), RecordAccessInput{})
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("got %v, want database.ErrNotFound", err)
	}
}

func TestCreateDocumentBroadcastsUploadOnly(t *testing.T) {
	env := newTestEnv(t)

	doc := &models.Document{Title: "New Arrival", Author: "A. Mushi", Type: models.DocumentTypePaper}
	if err := env.svc.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	activity := env.nextActivity(t)
	if activity.Action != models.ActionUpload {
		t.Errorf("action = %q, want UPLOAD", activity.Action)
	}
	if activity.Location != "Library" {
		t.Errorf("location = %q, want Library", activity.Location)
	}

	// The announcement is live-only: nothing lands in the event log.
	recent, err := env.db.RecentActivity(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentActivity failed: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("stored %d events, want 0 for catalog addition", len(recent))
	}
}

func TestCreateDocumentDefaultType(t *testing.T) {
	env := newTestEnv(t)

	doc := &models.Document{Title: "Untyped Entry", Author: "A. Mushi"}
	if err := env.svc.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if doc.Type != models.DocumentTypeBook {
		t.Errorf("type = %q, want %q", doc.Type, models.DocumentTypeBook)
	}
}

func TestCreateDocumentInvalidType(t *testing.T) {
	env := newTestEnv(t)

	doc := &models.Document{Title: "Bad Type", Author: "X", Type: "Thesis"}
	if err := env.svc.CreateDocument(context.Background(), doc); err == nil {
		t.Error("expected error for invalid document type")
	}
}

func TestHashIdentity(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	a := HashIdentity("203.0.113.5", now)
	b := HashIdentity("203.0.113.5", now.Add(2*time.Hour))
	if a == "" || a != b {
		t.Errorf("same IP and day should hash identically: %q vs %q", a, b)
	}

	next := HashIdentity("203.0.113.5", now.Add(24*time.Hour))
	if a == next {
		t.Error("hash should rotate across days")
	}

	other := HashIdentity("203.0.113.6", now)
	if a == other {
		t.Error("different IPs should hash differently")
	}

	if HashIdentity("", now) != "" {
		t.Error("empty IP should produce empty hash")
	}
}
