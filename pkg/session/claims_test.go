package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestInspectToken(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{
		"sub":   "42",
		"email": "a@b.com",
		"iat":   time.Now().Unix(),
		"exp":   exp.Unix(),
	})

	info, err := InspectToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", info.Subject)
	assert.Equal(t, "a@b.com", info.Email)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(exp.Add(time.Second)))
}

func TestInspectToken_NoExpiry(t *testing.T) {
	t.Parallel()

	info, err := InspectToken(signed(t, jwt.MapClaims{"sub": "7"}))
	require.NoError(t, err)
	assert.True(t, info.ExpiresAt.IsZero())
	assert.False(t, info.Expired(time.Now().Add(100*time.Hour)))
}

func TestInspectToken_Opaque(t *testing.T) {
	t.Parallel()

	_, err := InspectToken("T1")
	assert.ErrorIs(t, err, ErrOpaqueToken)
}
