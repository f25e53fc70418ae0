package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret-key", time.Hour)

	tokenString, err := issuer.Issue("64f1b2c3d4e5f60718293a4b")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := issuer.Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "64f1b2c3d4e5f60718293a4b", claims.UserID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestParseExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret-key", -time.Minute)

	tokenString, err := issuer.Issue("64f1b2c3d4e5f60718293a4b")
	require.NoError(t, err)

	_, err = issuer.Parse(tokenString)
	assert.Error(t, err)
}

func TestParseWrongSecret(t *testing.T) {
	issuer := NewIssuer("test-secret-key", time.Hour)
	other := NewIssuer("another-secret-key", time.Hour)

	tokenString, err := issuer.Issue("64f1b2c3d4e5f60718293a4b")
	require.NoError(t, err)

	_, err = other.Parse(tokenString)
	assert.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret-key", time.Hour)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Parse(tokenString)
		assert.Error(t, err, "token %q should not parse", tokenString)
	}
}
