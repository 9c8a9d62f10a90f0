package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/infrastructure/models"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// SellerRepository implements seller profile operations
type SellerRepository struct {
	db *gorm.DB
}

// NewSellerRepository creates a new seller repository
func NewSellerRepository(db *gorm.DB) *SellerRepository {
	return &SellerRepository{db: db}
}

// Create creates a seller profile
func (r *SellerRepository) Create(ctx context.Context, profile *entities.SellerProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = utils.GenerateUUIDv7()
	}
	m := &models.SellerProfile{
		ID:        profile.ID,
		UserID:    profile.UserID,
		StoreName: profile.StoreName,
		Bio:       profile.Bio.Ptr(),
		Location:  profile.Location.Ptr(),
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a seller profile by ID
func (r *SellerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SellerProfile, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUserID gets the seller profile owned by a user
func (r *SellerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.SellerProfile, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *SellerRepository) first(ctx context.Context, where string, arg interface{}) (*entities.SellerProfile, error) {
	var m models.SellerProfile
	if err := lockedRead(ctx, r.db).Where(where, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toSellerEntity(&m), nil
}

// Update updates the editable profile fields. The rating aggregate is left
// alone.
func (r *SellerRepository) Update(ctx context.Context, profile *entities.SellerProfile) error {
	result := GetDB(ctx, r.db).Model(&models.SellerProfile{}).Where("id = ?", profile.ID).Updates(map[string]interface{}{
		"store_name": profile.StoreName,
		"bio":        profile.Bio.Ptr(),
		"location":   profile.Location.Ptr(),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListIDs returns every seller profile ID
func (r *SellerRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := GetDB(ctx, r.db).Model(&models.SellerProfile{}).Order("created_at").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// RecomputeAggregate recomputes the mean and count over all of the seller's
// ratings and stores them. The mean is NULL when there are none. Inside a
// transaction the profile row is locked before the ratings are read, so
// concurrent rating mutations of one seller recompute one after another.
func (r *SellerRepository) RecomputeAggregate(ctx context.Context, sellerID uuid.UUID) (*entities.RatingAggregate, error) {
	db := GetDB(ctx, r.db)

	if _, err := r.first(context.WithValue(ctx, lockKey, true), "id = ?", sellerID); err != nil {
		return nil, err
	}

	var row struct {
		Average sql.NullFloat64
		Total   int64
	}
	if err := db.Model(&models.SellerRating{}).
		Select("AVG(rating) AS average, COUNT(*) AS total").
		Where("seller_id = ?", sellerID).
		Scan(&row).Error; err != nil {
		return nil, err
	}

	agg := &entities.RatingAggregate{Count: int(row.Total)}
	var average *float64
	if row.Total > 0 && row.Average.Valid {
		v := row.Average.Float64
		average = &v
		agg.Average = null.Float64From(v)
	}

	result := db.Model(&models.SellerProfile{}).Where("id = ?", sellerID).Updates(map[string]interface{}{
		"average_rating": average,
		"total_ratings":  agg.Count,
		"updated_at":     time.Now(),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return agg, nil
}

func toSellerEntity(m *models.SellerProfile) *entities.SellerProfile {
	return &entities.SellerProfile{
		ID:            m.ID,
		UserID:        m.UserID,
		StoreName:     m.StoreName,
		Bio:           null.StringFromPtr(m.Bio),
		Location:      null.StringFromPtr(m.Location),
		AverageRating: null.Float64FromPtr(m.AverageRating),
		TotalRatings:  m.TotalRatings,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
