package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("unit-test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken(secret, "user-123", time.Hour)
	require.NoError(t, err)

	userID, err := VerifyToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := IssueToken(secret, "user-123", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(secret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := IssueToken(secret, "user-123", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken([]byte("other-secret"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := VerifyToken(secret, tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestTokenWithoutSubjectRejected(t *testing.T) {
	token, err := IssueToken(secret, "", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(secret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
