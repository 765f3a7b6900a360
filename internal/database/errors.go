// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package database

import (
	"errors"
	"io"

	"github.com/hmassawe/karatasi/internal/logging"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// closeQuietly closes a resource and discards any error. Use for cleanup
// paths where a close failure cannot change the outcome.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// closeWithLog closes a resource and logs any error at debug level.
func closeWithLog(c io.Closer, resource string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Debug().Err(err).Str("resource", resource).Msg("failed to close resource")
	}
}
