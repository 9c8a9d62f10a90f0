package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TokenPurpose distinguishes what a verification token unlocks
type TokenPurpose string

const (
	TokenPurposeEmailVerification TokenPurpose = "EMAIL_VERIFICATION"
	TokenPurposePasswordReset     TokenPurpose = "PASSWORD_RESET"
)

// Token lifetimes
const (
	EmailVerificationTTL = 24 * time.Hour
	PasswordResetTTL     = time.Hour
)

// VerificationToken is a single-use, expiring secret bound to an email
type VerificationToken struct {
	ID         uuid.UUID    `json:"id"`
	Identifier string       `json:"identifier"`
	Token      string       `json:"-"`
	Purpose    TokenPurpose `json:"purpose"`
	ExpiresAt  time.Time    `json:"expiresAt"`
	ConsumedAt null.Time    `json:"consumedAt"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// IsExpired reports whether the token can no longer be used at now.
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsConsumed reports whether the token was already used.
func (t *VerificationToken) IsConsumed() bool {
	return t.ConsumedAt.Valid
}
