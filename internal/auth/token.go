// ABOUTME: JWT signing and verification for browser session cookies
// ABOUTME: Uses HS256 with the configured session secret; the subject is the session ID

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// sessionAudience scopes cookies to this application so a token signed for
// another service with the same secret is rejected.
const sessionAudience = "jobsforce-admin"

// SessionVerifier defines the interface for session cookie verification
type SessionVerifier interface {
	Verify(tokenString string) (sessionID string, err error)
}

// SessionSigner implements SessionVerifier using HS256 signed JWTs
type SessionSigner struct {
	secret []byte
}

// NewSessionSigner creates a new signer with the given secret
func NewSessionSigner(secret []byte) *SessionSigner {
	return &SessionSigner{secret: secret}
}

// Verify validates the token and extracts the session ID from the "sub" claim
func (s *SessionSigner) Verify(tokenString string) (sessionID string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithAudience(sessionAudience), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return sub, nil
}

// Sign creates a cookie value for the given session ID with expiration
func (s *SessionSigner) Sign(sessionID string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": sessionID,
		"aud": sessionAudience,
		"iat": now.Unix(),
		"exp": now.Add(expiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
