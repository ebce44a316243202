package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the bun table model for the accounts table. The domain model
// lives in internal/account; repositories map between the two.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID                     uuid.UUID  `bun:"id,pk,type:uuid"`
	Email                  string     `bun:"email,notnull,unique"`
	PasswordHash           string     `bun:"password_hash,notnull"`
	FirstName              string     `bun:"first_name,notnull"`
	LastName               string     `bun:"last_name,notnull"`
	EmailVerified          bool       `bun:"email_verified,notnull,default:false"`
	EmailVerificationToken *string    `bun:"email_verification_token"`
	ResetPasswordToken     *string    `bun:"reset_password_token"`
	ResetPasswordExpires   *time.Time `bun:"reset_password_expires"`
	RefreshToken           *string    `bun:"refresh_token"`
	CreatedAt              time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt              time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}
