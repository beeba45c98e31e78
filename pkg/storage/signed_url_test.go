package storage

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", 15*time.Minute)

	token, expiresAt, err := signer.Generate("documents/stu-1/form.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), expiresAt, 5*time.Second)

	path, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "documents/stu-1/form.pdf", path)
}

func TestSignedURLRejectsWrongSecret(t *testing.T) {
	token, _, err := NewSignedURLSigner("secret-a", time.Minute).Generate("documents/x.pdf")
	require.NoError(t, err)

	_, err = NewSignedURLSigner("secret-b", time.Minute).Parse(token)
	require.Error(t, err)
}

func TestSignedURLRejectsExpiredToken(t *testing.T) {
	claims := &downloadClaims{
		Path: "documents/x.pdf",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC().Add(-2 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewSignedURLSigner("test-secret", time.Minute).Parse(token)
	require.Error(t, err)
}

func TestSignedURLRequiresPathAndSecret(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)
	_, _, err := signer.Generate("")
	require.Error(t, err)

	empty := NewSignedURLSigner("", time.Minute)
	_, _, err = empty.Generate("documents/x.pdf")
	require.Error(t, err)
}
