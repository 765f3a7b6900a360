// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package blob

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hmassawe/karatasi/internal/config"
	"github.com/hmassawe/karatasi/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

func newTestStore(t *testing.T, maxSizeMB int64) *Store {
	t.Helper()
	store, err := NewStore(&config.UploadsConfig{
		Dir:       t.TempDir(),
		BaseURL:   "/uploads",
		MaxSizeMB: maxSizeMB,
	})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestSaveAndServe(t *testing.T) {
	store := newTestStore(t, 1)

	url, err := store.Save("thesis.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("Save() url = %q, want /uploads/ prefix", url)
	}
	if !strings.HasSuffix(url, "-thesis.pdf") {
		t.Errorf("Save() url = %q, want -thesis.pdf suffix", url)
	}

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("serve status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "pdf bytes" {
		t.Errorf("served body = %q, want %q", got, "pdf bytes")
	}
}

func TestSaveUniqueNames(t *testing.T) {
	store := newTestStore(t, 1)

	first, err := store.Save("paper.pdf", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := store.Save("paper.pdf", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first == second {
		t.Errorf("duplicate filenames mapped to the same URL %q", first)
	}
}

func TestSaveRejectsOversized(t *testing.T) {
	store := newTestStore(t, 1)

	_, err := store.Save("big.pdf", strings.NewReader(strings.Repeat("x", 1024*1024+1)))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Save() error = %v, want ErrTooLarge", err)
	}

	entries, err := os.ReadDir(storeDir(t, store))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("store left %d files behind after rejected upload", len(entries))
	}
}

func storeDir(t *testing.T, store *Store) string {
	t.Helper()
	return store.dir
}

func TestSaveRejectsInvalidNames(t *testing.T) {
	store := newTestStore(t, 1)

	for _, name := range []string{"", "   ", "..", "..."} {
		if _, err := store.Save(name, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) expected error", name)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"thesis.pdf", "thesis.pdf"},
		{"../../etc/passwd", "passwd"},
		{"my report (final).pdf", "my_report__final_.pdf"},
		{"Taarifa ya Utafiti.pdf", "Taarifa_ya_Utafiti.pdf"},
		{"...", ""},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewStoreRequiresDir(t *testing.T) {
	if _, err := NewStore(&config.UploadsConfig{}); err == nil {
		t.Error("NewStore() expected error for empty dir")
	}
}

func TestHandlerRefusesTraversal(t *testing.T) {
	store := newTestStore(t, 1)

	secret := filepath.Join(filepath.Dir(store.dir), "secret.txt")
	if err := os.WriteFile(secret, []byte("hidden"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/uploads/../secret.txt", nil)
	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, req)

	if rec.Code == http.StatusOK && rec.Body.String() == "hidden" {
		t.Error("handler served a file outside the store directory")
	}
}
