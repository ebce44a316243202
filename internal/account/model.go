package account

import (
	"time"

	"github.com/google/uuid"
)

// Account is the persisted identity record. Optional fields are pointers:
// nil means absent. ResetPasswordToken and ResetPasswordExpires are always
// set or cleared together.
type Account struct {
	ID                     uuid.UUID  `json:"id"`
	Email                  string     `json:"email"`
	PasswordHash           string     `json:"-"`
	FirstName              string     `json:"first_name"`
	LastName               string     `json:"last_name"`
	EmailVerified          bool       `json:"email_verified"`
	EmailVerificationToken *string    `json:"-"`
	ResetPasswordToken     *string    `json:"-"`
	ResetPasswordExpires   *time.Time `json:"-"`
	RefreshToken           *string    `json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// DisplayName returns the name used in outbound notifications.
func (a *Account) DisplayName() string {
	return a.FirstName
}

// Clone returns a deep copy so callers can mutate freely without aliasing
// store-held state.
func (a *Account) Clone() *Account {
	c := *a
	c.EmailVerificationToken = cloneString(a.EmailVerificationToken)
	c.ResetPasswordToken = cloneString(a.ResetPasswordToken)
	c.RefreshToken = cloneString(a.RefreshToken)
	c.ResetPasswordExpires = cloneTime(a.ResetPasswordExpires)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
