package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTSigner issues session tokens as HS256 JWTs. Alternative to
// PasetoSigner for deployments that need JWT interop.
type JWTSigner struct {
	secret []byte
}

type jwtSessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func NewJWTSigner(secret []byte) *JWTSigner {
	return &JWTSigner{secret: secret}
}

func (s *JWTSigner) SignSession(accountID uuid.UUID, email string, duration time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtSessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens unique even when two are minted within
			// the same second for the same account.
			ID:        uuid.NewString(),
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
		Email: email,
	})

	return token.SignedString(s.secret)
}

func (s *JWTSigner) Verify(tokenStr string) (*SessionClaims, error) {
	claims := &jwtSessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	var issuedAt, expiresAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &SessionClaims{
		AccountID: claims.Subject,
		Email:     claims.Email,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
