package client

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL bounds how long a signed service token is accepted upstream.
const tokenTTL = time.Minute

// TokenSigner issues short-lived HS256 tokens identifying the BFA to the
// upstream API.
type TokenSigner struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewTokenSigner returns nil when key is empty, which disables signing.
func NewTokenSigner(key, issuer string) *TokenSigner {
	if key == "" {
		return nil
	}
	return &TokenSigner{key: []byte(key), issuer: issuer, now: time.Now}
}

// Sign returns a token whose audience is the upstream service name.
func (s *TokenSigner) Sign(audience string) (string, error) {
	if s == nil {
		return "", errors.New("token signer not configured")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Verify parses a token signed with the same key. The upstream fakes in
// tests use it to check the Authorization header.
func (s *TokenSigner) Verify(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
