package repositories

import (
	"context"

	"bookmarket.backend/internal/domain/entities"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
)

// RatingRepository defines seller rating operations
type RatingRepository interface {
	Create(ctx context.Context, rating *entities.SellerRating) error
	Update(ctx context.Context, rating *entities.SellerRating) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.SellerRating, error)
	GetByUserAndSeller(ctx context.Context, userID, sellerID uuid.UUID) (*entities.SellerRating, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.SellerRating, int64, error)
	ListSellerIDsRatedBy(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
