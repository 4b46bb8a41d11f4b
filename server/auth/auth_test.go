package auth

import (
	"testing"

	"github.com/Daskott/tapcard/server/auth/key"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	PasswordHashCost = 4

	hash, err := HashPassword("s3cret")
	require.Nil(t, err)

	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestJWT(t *testing.T) {
	keyPair, err := key.GenerateKeyPair(1024)
	require.Nil(t, err)

	otherKeyPair, err := key.GenerateKeyPair(1024)
	require.Nil(t, err)

	token, err := EncodeJWT(NewTokenClaims(7, "Ada", "Lovelace", true), keyPair)
	require.Nil(t, err)

	claims, err := DecodeJWT(token, keyPair)
	require.Nil(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "Ada", claims.FirstName)
	assert.True(t, claims.IsAdmin)

	_, err = DecodeJWT(token, otherKeyPair)
	assert.NotNil(t, err, "Should reject a token signed by another key")

	expired := NewTokenClaims(7, "Ada", "Lovelace", false)
	expired.StandardClaims = jwt.StandardClaims{Subject: "7", ExpiresAt: 1}
	token, err = EncodeJWT(expired, keyPair)
	require.Nil(t, err)

	_, err = DecodeJWT(token, keyPair)
	assert.NotNil(t, err, "Should reject an expired token")
}
