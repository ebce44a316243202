package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonlabs/identity-service/internal/account"
	"github.com/halcyonlabs/identity-service/internal/logging"
)

// AuthTokens is a freshly issued access/refresh pair.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterInput carries already-validated registration fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterResult is returned on successful registration. The notification
// record is for the caller to forward to the mail collaborator.
type RegisterResult struct {
	Account           *account.Account
	Tokens            *AuthTokens
	VerificationToken string
	Notification      Notification
}

// ResetRequestResult is returned by RequestPasswordReset.
type ResetRequestResult struct {
	Account      *account.Account
	Token        string
	Notification Notification
}

// Service owns every security-relevant transition on an account: password
// hash, verification token, reset token + expiry, refresh token. All six
// operations read the store, apply one transition, and write the record
// back in a single atomic update.
type Service struct {
	accounts account.Store
	hasher   SecretHasher
	signer   TokenSigner
	logger   *logging.Logger

	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	resetTokenTTL   time.Duration

	// dummyHash equalizes login timing when no account matches the email.
	dummyHash string

	// now is swapped out in tests to control token expiry.
	now func() time.Time
}

func NewService(
	accounts account.Store,
	hasher SecretHasher,
	signer TokenSigner,
	logger *logging.Logger,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
	resetTokenTTL time.Duration,
) (*Service, error) {
	dummyHash, err := hasher.Hash("login-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("failed to precompute dummy hash: %w", err)
	}

	return &Service{
		accounts:        accounts,
		hasher:          hasher,
		signer:          signer,
		logger:          logger,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		resetTokenTTL:   resetTokenTTL,
		dummyHash:       dummyHash,
		now:             time.Now,
	}, nil
}

// Register creates a new unverified account, issues a session token pair,
// and returns the verification notification for out-of-band delivery.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verificationToken, err := NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	acc := &account.Account{
		Email:                  in.Email,
		PasswordHash:           passwordHash,
		FirstName:              in.FirstName,
		LastName:               in.LastName,
		EmailVerified:          false,
		EmailVerificationToken: &verificationToken,
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	tokens, err := s.issueSession(ctx, acc)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered", "account_id", acc.ID)

	return &RegisterResult{
		Account:           acc,
		Tokens:            tokens,
		VerificationToken: verificationToken,
		Notification: Notification{
			To:          acc.Email,
			Kind:        NotificationVerification,
			Token:       verificationToken,
			DisplayName: acc.DisplayName(),
		},
	}, nil
}

// Login authenticates an account and issues a fresh token pair, replacing
// any previously stored refresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			// Burn a hash comparison so the not-found path costs the
			// same as a password mismatch.
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !s.hasher.Verify(password, acc.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !acc.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	tokens, err := s.issueSession(ctx, acc)
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// Logout clears the stored refresh token. The id must come from an
// already-validated session, but a missing record is still reported.
func (s *Service) Logout(ctx context.Context, accountID uuid.UUID) error {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	acc.RefreshToken = nil
	if err := s.accounts.Update(ctx, acc); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return nil
}

// VerifyEmail consumes a verification token. Replaying a consumed token
// fails with ErrInvalidOrExpiredToken rather than succeeding idempotently.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	acc, err := s.accounts.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to get account by verification token: %w", err)
	}

	acc.EmailVerified = true
	acc.EmailVerificationToken = nil
	if err := s.accounts.Update(ctx, acc); err != nil {
		return fmt.Errorf("failed to mark email as verified: %w", err)
	}

	s.logger.Info("email verified", "account_id", acc.ID)

	return nil
}

// RequestPasswordReset issues a new reset token valid for the configured
// TTL, overwriting any prior one: at most one reset token is live per
// account. The service reports AccountNotFound precisely; masking it from
// external callers is the transport layer's decision.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	token, err := NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	expires := s.now().Add(s.resetTokenTTL)
	acc.ResetPasswordToken = &token
	acc.ResetPasswordExpires = &expires
	if err := s.accounts.Update(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	return &ResetRequestResult{
		Account: acc,
		Token:   token,
		Notification: Notification{
			To:          acc.Email,
			Kind:        NotificationPasswordReset,
			Token:       token,
			DisplayName: acc.DisplayName(),
		},
	}, nil
}

// ResetPassword consumes an unexpired reset token and replaces the
// password hash. The stored refresh token is cleared as well, so stolen
// sessions do not survive a password reset.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	acc, err := s.accounts.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to get account by reset token: %w", err)
	}

	// An expired pair is treated exactly like an unknown token.
	if acc.ResetPasswordExpires == nil || acc.ResetPasswordExpires.Before(s.now()) {
		return ErrInvalidOrExpiredToken
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	acc.PasswordHash = passwordHash
	acc.ResetPasswordToken = nil
	acc.ResetPasswordExpires = nil
	acc.RefreshToken = nil
	if err := s.accounts.Update(ctx, acc); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password reset", "account_id", acc.ID)

	return nil
}

// issueSession signs a fresh access/refresh pair bound to {id, email} and
// persists the refresh token on the account, invalidating the previous one.
func (s *Service) issueSession(ctx context.Context, acc *account.Account) (*AuthTokens, error) {
	accessToken, err := s.signer.SignSession(acc.ID, acc.Email, s.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.signer.SignSession(acc.ID, acc.Email, s.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	acc.RefreshToken = &refreshToken
	if err := s.accounts.Update(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}
