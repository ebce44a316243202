package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/halcyonlabs/identity-service/internal/httputil"
)

// ContextKey is a dedicated type for context keys to avoid collisions.
type ContextKey string

const (
	AccountIDContextKey    ContextKey = "account_id"
	AccountEmailContextKey ContextKey = "account_email"
)

// Middleware validates access tokens on protected routes.
type Middleware struct {
	signer TokenSigner
}

func NewMiddleware(signer TokenSigner) *Middleware {
	return &Middleware{signer: signer}
}

// RequireAuth verifies the Bearer access token and puts the account id
// and email on the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}

		claims, err := m.signer.Verify(parts[1])
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		accountID, err := uuid.Parse(claims.AccountID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "invalid account id in token", httputil.CodeInvalidTokenSubject, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AccountIDContextKey, accountID)
		ctx = context.WithValue(ctx, AccountEmailContextKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAccountIDFromContext extracts the authenticated account id.
func GetAccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	accountID, ok := ctx.Value(AccountIDContextKey).(uuid.UUID)
	return accountID, ok
}

// GetAccountEmailFromContext extracts the authenticated account email.
func GetAccountEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(AccountEmailContextKey).(string)
	return email, ok
}
