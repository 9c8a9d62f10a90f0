package repositories

import (
	"context"

	"bookmarket.backend/internal/domain/entities"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
)

// ReservationRepository defines reservation operations
type ReservationRepository interface {
	Create(ctx context.Context, reservation *entities.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Reservation, error)
	// UpdateStatusIf moves the reservation to next only while it is still in
	// expected. It returns ErrInvalidTransition when the row was not in
	// expected and ErrNotFound when it does not exist.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next entities.ReservationStatus) error
	HasActive(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, status entities.ReservationStatus, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error)
	List(ctx context.Context, status entities.ReservationStatus, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error)
	Count(ctx context.Context, status entities.ReservationStatus) (int64, error)
}
