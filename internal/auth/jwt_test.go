package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("test-secret-for-unit-tests-only!!", time.Hour, time.Hour)
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestManager()
	userID := uuid.New()

	token, err := m.GenerateToken(RealmUser, userID, "a@example.com", "")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, RealmUser, claims.Realm)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestValidateTokenForRealm_RejectsWrongRealm(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateToken(RealmUser, uuid.New(), "", "")
	require.NoError(t, err)

	_, err = m.ValidateTokenForRealm(token, RealmAdmin)
	assert.Error(t, err)

	_, err = m.ValidateTokenForRealm(token, RealmUser)
	assert.NoError(t, err)
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	m := newTestManager()
	other := NewJWTManager("a-completely-different-secret!!!!", time.Hour, time.Hour)

	token, err := other.GenerateToken(RealmUser, uuid.New(), "", "")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)

	_, err = m.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestGenerateToken_UnknownRealm(t *testing.T) {
	m := newTestManager()
	_, err := m.GenerateToken(Realm("ghost"), uuid.New(), "", "")
	assert.Error(t, err)
}

func TestAdminRoleClaims(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateToken(RealmAdmin, uuid.New(), "ops@example.com", RoleModerator)
	require.NoError(t, err)

	claims, err := m.ValidateTokenForRealm(token, RealmAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleModerator, claims.Role)
	assert.Contains(t, WriteRoles(), claims.Role)
}
