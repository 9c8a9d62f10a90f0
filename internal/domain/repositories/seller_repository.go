package repositories

import (
	"context"

	"bookmarket.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// SellerRepository defines seller profile operations
type SellerRepository interface {
	Create(ctx context.Context, profile *entities.SellerProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.SellerProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.SellerProfile, error)
	Update(ctx context.Context, profile *entities.SellerProfile) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	// RecomputeAggregate rewrites averageRating and totalRatings from the
	// profile's current ratings.
	RecomputeAggregate(ctx context.Context, sellerID uuid.UUID) (*entities.RatingAggregate, error)
}
