// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

// Package blob stores uploaded document files on the local filesystem and
// maps each stored file to a public URL under the configured base path.
package blob

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hmassawe/karatasi/internal/config"
	"github.com/hmassawe/karatasi/internal/logging"
)

// ErrTooLarge is returned when an upload exceeds the configured size limit.
var ErrTooLarge = fmt.Errorf("file exceeds maximum upload size")

// Store persists uploaded files under a single directory. Stored names are
// prefixed with a random UUID so catalog entries with identical filenames
// never collide.
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewStore creates a blob store rooted at cfg.Dir, creating the directory if
// needed.
func NewStore(cfg *config.UploadsConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("uploads directory must not be empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "/uploads"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	maxBytes := cfg.MaxSizeMB * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 50 * 1024 * 1024
	}

	return &Store{
		dir:      cfg.Dir,
		baseURL:  baseURL,
		maxBytes: maxBytes,
	}, nil
}

// BaseURL returns the public URL prefix for stored files, without a
// trailing slash.
func (s *Store) BaseURL() string {
	return s.baseURL
}

// MaxBytes returns the per-file upload limit in bytes.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save writes the reader's content to the store and returns the public URL of
// the stored file. The write goes to a temporary file first and is renamed
// into place, so a failed upload never leaves a partial file visible.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	stored := uuid.New().String() + "-" + name

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	// Read one byte past the limit to distinguish at-limit from over-limit.
	written, err := io.Copy(tmp, io.LimitReader(r, s.maxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		removeQuietly(tmpName)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if written > s.maxBytes {
		removeQuietly(tmpName)
		return "", ErrTooLarge
	}

	dest := filepath.Join(s.dir, stored)
	if err := os.Rename(tmpName, dest); err != nil {
		removeQuietly(tmpName)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	logging.Debug().
		Str("component", "blob").
		Str("file", stored).
		Int64("bytes", written).
		Msg("Stored uploaded file")

	return s.baseURL + "/" + stored, nil
}

// Handler serves stored files over HTTP. Mount it at the store's base URL.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(s.baseURL+"/", http.FileServer(http.Dir(s.dir)))
}

// sanitizeFilename strips any path components and characters that could
// confuse filesystems or URLs, keeping the extension intact.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(os.PathSeparator) {
		return ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		return ""
	}
	return cleaned
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to remove temporary file")
	}
}
