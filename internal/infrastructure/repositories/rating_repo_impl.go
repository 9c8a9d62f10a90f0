package repositories

import (
	"context"
	"errors"
	"time"

	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/infrastructure/models"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RatingRepository implements seller rating operations
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts a rating. A second rating by the same user for the same
// seller is rejected with ErrAlreadyExists.
func (r *RatingRepository) Create(ctx context.Context, rating *entities.SellerRating) error {
	if rating.ID == uuid.Nil {
		rating.ID = utils.GenerateUUIDv7()
	}
	m := &models.SellerRating{
		ID:        rating.ID,
		UserID:    rating.UserID,
		SellerID:  rating.SellerID,
		Rating:    rating.Rating,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt,
		UpdatedAt: rating.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Omit("User").Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	rating.CreatedAt = m.CreatedAt
	rating.UpdatedAt = m.UpdatedAt
	return nil
}

// Update rewrites the score and comment
func (r *RatingRepository) Update(ctx context.Context, rating *entities.SellerRating) error {
	rating.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).Model(&models.SellerRating{}).Where("id = ?", rating.ID).Updates(map[string]interface{}{
		"rating":     rating.Rating,
		"comment":    rating.Comment,
		"updated_at": rating.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// GetByID gets a rating by ID
func (r *RatingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SellerRating, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUserAndSeller gets the rating a user gave a seller
func (r *RatingRepository) GetByUserAndSeller(ctx context.Context, userID, sellerID uuid.UUID) (*entities.SellerRating, error) {
	return r.first(ctx, "user_id = ? AND seller_id = ?", userID, sellerID)
}

func (r *RatingRepository) first(ctx context.Context, where string, args ...interface{}) (*entities.SellerRating, error) {
	var m models.SellerRating
	if err := lockedRead(ctx, r.db).Where(where, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toRatingEntity(&m), nil
}

// Delete removes a rating
func (r *RatingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&models.SellerRating{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListBySeller lists a seller's ratings, newest first
func (r *RatingRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.SellerRating, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.SellerRating{}).Where("seller_id = ?", sellerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.SellerRating
	if err := paginate(query.Order("created_at DESC"), pagination).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.SellerRating, 0, len(ms))
	for i := range ms {
		out = append(out, toRatingEntity(&ms[i]))
	}
	return out, total, nil
}

// ListSellerIDsRatedBy returns the seller profiles a user has rated
func (r *RatingRepository) ListSellerIDsRatedBy(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := GetDB(ctx, r.db).Model(&models.SellerRating{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("seller_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func toRatingEntity(m *models.SellerRating) *entities.SellerRating {
	return &entities.SellerRating{
		ID:        m.ID,
		UserID:    m.UserID,
		SellerID:  m.SellerID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
