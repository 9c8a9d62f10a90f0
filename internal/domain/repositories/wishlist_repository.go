package repositories

import (
	"context"

	"bookmarket.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// WishlistRepository defines wishlist operations
type WishlistRepository interface {
	// Add inserts the (user, book) pair unless it already exists. The bool
	// reports whether a new row was created.
	Add(ctx context.Context, item *entities.WishlistItem) (*entities.WishlistItem, bool, error)
	Get(ctx context.Context, userID, bookID uuid.UUID) (*entities.WishlistItem, error)
	Remove(ctx context.Context, userID, bookID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.WishlistItem, error)
}
