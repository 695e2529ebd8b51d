package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken(secret, "owner@roastery.co", time.Hour, time.Now())
	require.NoError(t, err)

	email, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "owner@roastery.co", email)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := NewToken(secret, "owner@roastery.co", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestForeignTokenRejected(t *testing.T) {
	token, err := NewToken([]byte("other-secret"), "owner@roastery.co", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := ParseToken(secret, "definitely.not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
