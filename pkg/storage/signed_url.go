package storage

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignedURLSigner mints and validates time-limited download tokens for
// stored files using HMAC-signed JWTs.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

type downloadClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// Generate returns a signed token referencing the stored file path.
func (s *SignedURLSigner) Generate(relPath string) (string, time.Time, error) {
	if relPath == "" {
		return "", time.Time{}, fmt.Errorf("relPath required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := &downloadClaims{
		Path: relPath,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign download token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded file path.
func (s *SignedURLSigner) Parse(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &downloadClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse download token: %w", err)
	}
	claims, ok := parsed.Claims.(*downloadClaims)
	if !ok || !parsed.Valid || claims.Path == "" {
		return "", fmt.Errorf("invalid download token")
	}
	return claims.Path, nil
}
