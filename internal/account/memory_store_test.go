package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredAccount(t *testing.T, store *MemoryStore, email string) *Account {
	t.Helper()

	token := "verify-" + email
	acc := &Account{
		Email:                  email,
		PasswordHash:           "$argon2id$fake",
		FirstName:              "Ada",
		LastName:               "Lovelace",
		EmailVerificationToken: &token,
	}
	require.NoError(t, store.Create(context.Background(), acc))
	return acc
}

func TestMemoryStore_CreateAssignsIDAndTimestamps(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	acc := newStoredAccount(t, store, "ada@example.com")

	assert.NotEqual(t, uuid.Nil, acc.ID)
	assert.False(t, acc.CreatedAt.IsZero())
	assert.False(t, acc.UpdatedAt.IsZero())
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	newStoredAccount(t, store, "ada@example.com")

	err := store.Create(context.Background(), &Account{Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryStore_Lookups(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	acc := newStoredAccount(t, store, "ada@example.com")

	byID, err := store.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.Email, byID.Email)

	byEmail, err := store.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byEmail.ID)

	byToken, err := store.GetByVerificationToken(ctx, "verify-ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byToken.ID)

	_, err = store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetByVerificationToken(ctx, "bogus")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetByResetToken(ctx, "bogus")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_VerifiedAccountNotFoundByVerificationToken(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	acc := newStoredAccount(t, store, "ada@example.com")

	acc.EmailVerified = true
	require.NoError(t, store.Update(ctx, acc))

	_, err := store.GetByVerificationToken(ctx, "verify-ada@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UpdateRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	acc := newStoredAccount(t, store, "ada@example.com")

	reset := "reset-token"
	expires := time.Now().Add(time.Hour)
	acc.ResetPasswordToken = &reset
	acc.ResetPasswordExpires = &expires
	require.NoError(t, store.Update(ctx, acc))

	got, err := store.GetByResetToken(ctx, "reset-token")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)
	require.NotNil(t, got.ResetPasswordExpires)
	assert.WithinDuration(t, expires, *got.ResetPasswordExpires, time.Second)
}

func TestMemoryStore_UpdateUnknownAccount(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	err := store.Update(context.Background(), &Account{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	acc := newStoredAccount(t, store, "ada@example.com")

	got, err := store.GetByID(ctx, acc.ID)
	require.NoError(t, err)

	// Mutating the returned value must not leak into the store.
	got.PasswordHash = "tampered"
	again, err := store.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$fake", again.PasswordHash)
}
