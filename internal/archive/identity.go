// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// HashIdentity derives the per-visitor identity hash stored on access
// events. The hash is salted with the current UTC date, so the same visitor
// produces a stable hash within a day but cannot be tracked across days,
// and the raw address is never persisted.
func HashIdentity(ip string, now time.Time) string {
	if ip == "" {
		return ""
	}

	sum := sha256.Sum256([]byte("karatasi:" + now.UTC().Format("2006-01-02") + ":" + ip))
	return hex.EncodeToString(sum[:8])
}
