package domain

import (
	"crypto/sha256"
	"strings"

	"github.com/google/uuid"
)

const catalogNamespace = "crowdcue:media"

// MediaIDFromCatalogRef maps an external catalog reference (for example
// "spotify:track:4uLU6hMCjMI75M1A2tKUQC") to a stable internal media ID.
// The same ref always yields the same UUID, so bids from different clients
// on the same track land on the same media row.
func MediaIDFromCatalogRef(ref string) uuid.UUID {
	h := sha256.New()
	h.Write([]byte(catalogNamespace))
	h.Write([]byte(":"))
	h.Write([]byte(strings.TrimSpace(ref)))
	digest := h.Sum(nil)

	var id uuid.UUID
	copy(id[:], digest[:16])
	id[6] = (id[6] & 0x0f) | 0x50 // version 5
	id[8] = (id[8] & 0x3f) | 0x80 // variant RFC4122
	return id
}

// IsCatalogRef reports whether s looks like an external catalog reference
// rather than a raw media UUID.
func IsCatalogRef(s string) bool {
	if _, err := uuid.Parse(s); err == nil {
		return false
	}
	return strings.Contains(s, ":")
}
