package repositories

import (
	"context"
	"time"

	"bookmarket.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// VerificationTokenRepository defines single-use token operations
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *entities.VerificationToken) error
	GetByToken(ctx context.Context, token string, purpose entities.TokenPurpose) (*entities.VerificationToken, error)
	// Consume marks the token used. It returns ErrTokenConsumed if another
	// request consumed it first.
	Consume(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteByIdentifier(ctx context.Context, identifier string, purpose entities.TokenPurpose) error
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}
