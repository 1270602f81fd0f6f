package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMediaIDFromCatalogRef_Deterministic(t *testing.T) {
	ref := "spotify:track:4uLU6hMCjMI75M1A2tKUQC"

	a := MediaIDFromCatalogRef(ref)
	b := MediaIDFromCatalogRef(ref)
	assert.Equal(t, a, b)

	other := MediaIDFromCatalogRef("spotify:track:something-else")
	assert.NotEqual(t, a, other)

	// Whitespace from sloppy clients must not fork the media row.
	assert.Equal(t, a, MediaIDFromCatalogRef("  "+ref+" "))

	assert.Equal(t, uuid.Version(5), a.Version())
}

func TestIsCatalogRef(t *testing.T) {
	assert.True(t, IsCatalogRef("spotify:track:abc"))
	assert.False(t, IsCatalogRef(uuid.New().String()))
	assert.False(t, IsCatalogRef("not-a-ref"))
	assert.False(t, IsCatalogRef(""))
}
