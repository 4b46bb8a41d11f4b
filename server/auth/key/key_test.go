package key

import (
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyPairFromRSAPrivateKeyPem(t *testing.T) {
	generated, err := GenerateKeyPair(1024)
	require.Nil(t, err)

	privateKeyPem := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(generated.PrivateKey),
	})

	keyPair, err := NewKeyPairFromRSAPrivateKeyPem(string(privateKeyPem))
	require.Nil(t, err)
	assert.Equal(t, DEFAULT_KEY_ID, keyPair.Kid)
	assert.True(t, generated.PublicKey.Equal(keyPair.PublicKey))

	_, err = NewKeyPairFromRSAPrivateKeyPem("not a pem")
	assert.NotNil(t, err)
}

func TestJWKRoundTrip(t *testing.T) {
	keyPair, err := GenerateKeyPair(1024)
	require.Nil(t, err)

	jwkKey, err := keyPair.JWK()
	require.Nil(t, err)
	assert.Equal(t, DEFAULT_KEY_ID, jwkKey.KeyID())

	jwks := ExportJWKAsJWKS(jwkKey)
	assert.Len(t, jwks.Keys, 1)

	publicKey, err := PublicKeyFromJWK(jwkKey)
	require.Nil(t, err)
	assert.True(t, keyPair.PublicKey.Equal(publicKey))
}
