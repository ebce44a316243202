package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Store is the keyed persistence contract for accounts. Implementations
// must enforce email uniqueness on Create and apply Update as a single
// atomic record write (no partial multi-field state is ever observable).
type Store interface {
	// Create persists a new account, assigning ID and timestamps.
	// Returns ErrDuplicateEmail if the email is already taken.
	Create(ctx context.Context, acc *Account) error

	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByVerificationToken resolves an account by its pending email
	// verification token. Verified accounts never match.
	GetByVerificationToken(ctx context.Context, token string) (*Account, error)

	// GetByResetToken resolves an account by its password reset token,
	// expired or not; expiry is the caller's concern.
	GetByResetToken(ctx context.Context, token string) (*Account, error)

	// Update overwrites the stored record identified by acc.ID.
	// Returns ErrNotFound if no such record exists.
	Update(ctx context.Context, acc *Account) error
}
