package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	t.Parallel()

	m := NewManager("secret", time.Hour)
	token, err := m.Generate("ada@example.com", "u-1")
	require.NoError(t, err)

	for _, header := range []string{token, "Bearer " + token} {
		claims, err := m.Verify(header)
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
		assert.Equal(t, "ada@example.com", claims.Email)
	}
}

func TestVerify_Errors(t *testing.T) {
	t.Parallel()

	m := NewManager("secret", time.Hour)
	valid, err := m.Generate("ada@example.com", "u-1")
	require.NoError(t, err)

	other := NewManager("other", time.Hour)
	forged, err := other.Generate("ada@example.com", "u-1")
	require.NoError(t, err)

	expired := NewManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Generate("ada@example.com", "u-1")
	require.NoError(t, err)

	noPayload, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mgr    *Manager
		header string
		want   error
	}{
		{"empty", m, "", ErrMissingCredential},
		{"bearer only", m, "Bearer ", ErrMissingCredential},
		{"bearer without space", m, "Bearer", ErrMissingCredential},
		{"bearer padded", m, "  Bearer   ", ErrMissingCredential},
		{"no secret", NewManager("", time.Hour), valid, ErrServerMisconfigured},
		{"garbage", m, "not-a-token", ErrInvalidOrExpiredCredential},
		{"wrong key", m, forged, ErrInvalidOrExpiredCredential},
		{"expired", m, old, ErrInvalidOrExpiredCredential},
		{"missing claims", m, noPayload, ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mgr.Verify(tt.header)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDefaultExpiry(t *testing.T) {
	t.Parallel()

	m := NewManager("secret", 0)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	token, err := m.Generate("ada@example.com", "u-1")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(10*time.Hour), claims.ExpiresAt.Time.UTC())
}
