package repositories

import (
	"context"
	"time"

	"bookmarket.backend/internal/domain/entities"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, email string, at time.Time) error
	List(ctx context.Context, search string, pagination utils.PaginationParams) ([]*entities.User, int64, error)
	Count(ctx context.Context) (int64, error)
	// Delete removes the user together with every record it owns:
	// tokens, wishlist items, reservations, ratings given, and its seller
	// profile with that profile's books, ratings and reservations.
	Delete(ctx context.Context, id uuid.UUID) error
}
