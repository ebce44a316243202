package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
)

// SessionClaims are the claims carried by a signed session token.
type SessionClaims struct {
	AccountID string    `json:"account_id"` // UUID stored as string in the token
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenSigner issues and verifies signed, time-bound session tokens bound
// to an account's {id, email}. Implementations: PasetoSigner (v4.local)
// and JWTSigner (HS256).
type TokenSigner interface {
	SignSession(accountID uuid.UUID, email string, duration time.Duration) (string, error)
	Verify(tokenStr string) (*SessionClaims, error)
}

// NewOpaqueToken returns a cryptographically random one-shot token used
// for email verification and password reset. 32 bytes of entropy,
// base64url encoded, no decodable structure.
func NewOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
