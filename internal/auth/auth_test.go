package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func TestHashVerifyRoundtrip(t *testing.T) {
	phc, err := HashPassword("correct horse battery", DefaultArgonParams())
	require.NoError(t, err)
	assert.True(t, VerifyPassword("correct horse battery", phc))
	assert.False(t, VerifyPassword("wrong password", phc))
	assert.False(t, VerifyPassword("", phc))
}

func TestHashIsSalted(t *testing.T) {
	a, err := HashPassword("same password", DefaultArgonParams())
	require.NoError(t, err)
	b, err := HashPassword("same password", DefaultArgonParams())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.True(t, VerifyPassword("same password", a))
	assert.True(t, VerifyPassword("same password", b))
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("anything", "not-a-phc-string"))
	assert.False(t, VerifyPassword("anything", ""))
}

func TestTokenRoundtrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	u := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "rescuer1",
		Role:     models.RoleOfficer,
	}
	token, err := tm.Generate(u)
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, "rescuer1", claims.Username)
	assert.Equal(t, models.RoleOfficer, claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", time.Hour)
	other := NewTokenManager("secret-b", time.Hour)
	u := &models.User{ID: primitive.NewObjectID(), Username: "x", Role: models.RoleMember}

	token, err := tm.Generate(u)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("s"), ttl: -time.Minute}
	u := &models.User{ID: primitive.NewObjectID(), Username: "x", Role: models.RoleMember}

	token, err := tm.Generate(u)
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestExtractBearer(t *testing.T) {
	tok, err := ExtractBearer("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	_, err = ExtractBearer("")
	assert.Error(t, err)
	_, err = ExtractBearer("Basic abc")
	assert.Error(t, err)
	_, err = ExtractBearer("bearer lowercase")
	assert.Error(t, err)
}
