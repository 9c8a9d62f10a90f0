package repositories

import (
	"context"

	"bookmarket.backend/internal/domain/entities"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
)

// BookRepository defines book listing operations
type BookRepository interface {
	Create(ctx context.Context, book *entities.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Book, error)
	Update(ctx context.Context, book *entities.Book) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.BookStatus) error
	SetImageKey(ctx context.Context, id uuid.UUID, key string) error
	List(ctx context.Context, filter entities.BookFilter, pagination utils.PaginationParams) ([]*entities.Book, int64, error)
	Count(ctx context.Context, status entities.BookStatus) (int64, error)
	// FindOwned returns the books among ids that belong to sellerID.
	FindOwned(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID) ([]*entities.Book, error)
	ListImageKeysBySeller(ctx context.Context, sellerID uuid.UUID) ([]string, error)
	// DeleteOwned removes the owned books among ids together with their
	// wishlist items and reservations, returning the number of books removed.
	DeleteOwned(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID) (int64, error)
}
