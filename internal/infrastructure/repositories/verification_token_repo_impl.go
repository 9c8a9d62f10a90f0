package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/infrastructure/models"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// VerificationTokenRepository implements single-use token storage
type VerificationTokenRepository struct {
	db *gorm.DB
}

// NewVerificationTokenRepository creates a new token repository
func NewVerificationTokenRepository(db *gorm.DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

// Create stores a new token
func (r *VerificationTokenRepository) Create(ctx context.Context, token *entities.VerificationToken) error {
	if token.ID == uuid.Nil {
		token.ID = utils.GenerateUUIDv7()
	}
	m := &models.VerificationToken{
		ID:         token.ID,
		Identifier: strings.ToLower(token.Identifier),
		Token:      token.Token,
		Purpose:    string(token.Purpose),
		ExpiresAt:  token.ExpiresAt.UTC(),
		CreatedAt:  token.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByToken looks a token up by its secret value and purpose. Expired and
// consumed tokens are still returned; callers decide.
func (r *VerificationTokenRepository) GetByToken(ctx context.Context, token string, purpose entities.TokenPurpose) (*entities.VerificationToken, error) {
	var m models.VerificationToken
	if err := GetDB(ctx, r.db).Where("token = ? AND purpose = ?", token, string(purpose)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.VerificationToken{
		ID:         m.ID,
		Identifier: m.Identifier,
		Token:      m.Token,
		Purpose:    entities.TokenPurpose(m.Purpose),
		ExpiresAt:  m.ExpiresAt,
		ConsumedAt: null.TimeFromPtr(m.ConsumedAt),
		CreatedAt:  m.CreatedAt,
	}, nil
}

// Consume marks the token used unless someone else already did
func (r *VerificationTokenRepository) Consume(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.VerificationToken{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", at.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTokenConsumed
	}
	return nil
}

// DeleteByIdentifier drops every token of a purpose issued to identifier
func (r *VerificationTokenRepository) DeleteByIdentifier(ctx context.Context, identifier string, purpose entities.TokenPurpose) error {
	return GetDB(ctx, r.db).
		Where("identifier = ? AND purpose = ?", strings.ToLower(identifier), string(purpose)).
		Delete(&models.VerificationToken{}).Error
}

// DeleteStale removes tokens that expired or were consumed before the cutoff
func (r *VerificationTokenRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	before = before.UTC()
	result := GetDB(ctx, r.db).
		Where("expires_at < ? OR (consumed_at IS NOT NULL AND consumed_at < ?)", before, before).
		Delete(&models.VerificationToken{})
	return result.RowsAffected, result.Error
}
