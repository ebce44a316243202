package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/halcyonlabs/identity-service/internal/database"
)

// BunStore persists accounts in Postgres via Bun.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

func (s *BunStore) Create(ctx context.Context, acc *Account) error {
	now := time.Now()
	row := &database.Account{
		ID:                     uuid.New(),
		Email:                  acc.Email,
		PasswordHash:           acc.PasswordHash,
		FirstName:              acc.FirstName,
		LastName:               acc.LastName,
		EmailVerified:          acc.EmailVerified,
		EmailVerificationToken: acc.EmailVerificationToken,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	_, err := s.db.NewInsert().
		Model(row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	acc.ID = row.ID
	acc.CreatedAt = row.CreatedAt
	acc.UpdatedAt = row.UpdatedAt

	return nil
}

func (s *BunStore) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.getOne(ctx, "id = ?", id)
}

func (s *BunStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.getOne(ctx, "email = ?", email)
}

func (s *BunStore) GetByVerificationToken(ctx context.Context, token string) (*Account, error) {
	row := new(database.Account)
	err := s.db.NewSelect().
		Model(row).
		Where("email_verification_token = ?", token).
		Where("email_verified = ?", false).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by verification token: %w", err)
	}

	return mapRowToAccount(row), nil
}

func (s *BunStore) GetByResetToken(ctx context.Context, token string) (*Account, error) {
	return s.getOne(ctx, "reset_password_token = ?", token)
}

// Update overwrites every mutable column in a single statement so a
// cancelled request leaves either the old or the new record, never a mix.
func (s *BunStore) Update(ctx context.Context, acc *Account) error {
	result, err := s.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("password_hash = ?", acc.PasswordHash).
		Set("first_name = ?", acc.FirstName).
		Set("last_name = ?", acc.LastName).
		Set("email_verified = ?", acc.EmailVerified).
		Set("email_verification_token = ?", acc.EmailVerificationToken).
		Set("reset_password_token = ?", acc.ResetPasswordToken).
		Set("reset_password_expires = ?", acc.ResetPasswordExpires).
		Set("refresh_token = ?", acc.RefreshToken).
		Set("updated_at = NOW()").
		Where("id = ?", acc.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *BunStore) getOne(ctx context.Context, where string, arg any) (*Account, error) {
	row := new(database.Account)
	err := s.db.NewSelect().
		Model(row).
		Where(where, arg).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return mapRowToAccount(row), nil
}

func mapRowToAccount(row *database.Account) *Account {
	return &Account{
		ID:                     row.ID,
		Email:                  row.Email,
		PasswordHash:           row.PasswordHash,
		FirstName:              row.FirstName,
		LastName:               row.LastName,
		EmailVerified:          row.EmailVerified,
		EmailVerificationToken: row.EmailVerificationToken,
		ResetPasswordToken:     row.ResetPasswordToken,
		ResetPasswordExpires:   row.ResetPasswordExpires,
		RefreshToken:           row.RefreshToken,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}
}
