package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/domain/repositories"
	"bookmarket.backend/pkg/logger"
	"bookmarket.backend/pkg/metrics"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var transitionVerbs = map[entities.ReservationStatus]string{
	entities.ReservationStatusCancelled: "cancel",
	entities.ReservationStatusConfirmed: "confirm",
	entities.ReservationStatusCompleted: "complete",
}

// ReservationUsecase handles the reservation lifecycle
type ReservationUsecase struct {
	uow             repositories.UnitOfWork
	reservationRepo repositories.ReservationRepository
	bookRepo        repositories.BookRepository
	gate            *authz.Gate
}

// NewReservationUsecase creates a new reservation usecase
func NewReservationUsecase(
	uow repositories.UnitOfWork,
	reservationRepo repositories.ReservationRepository,
	bookRepo repositories.BookRepository,
	gate *authz.Gate,
) *ReservationUsecase {
	return &ReservationUsecase{
		uow:             uow,
		reservationRepo: reservationRepo,
		bookRepo:        bookRepo,
		gate:            gate,
	}
}

// Create reserves a published book for the principal. New reservations are
// always PENDING.
func (u *ReservationUsecase) Create(ctx context.Context, p authz.Principal, input *entities.CreateReservationInput) (*entities.Reservation, error) {
	if err := u.gate.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if input.BookID == uuid.Nil {
		return nil, domainerrors.Validation("Invalid reservation", map[string]string{"bookId": "is required"})
	}

	var reservation *entities.Reservation
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		book, err := u.bookRepo.GetByID(u.uow.WithLock(txCtx), input.BookID)
		if err != nil {
			return notFoundAs(err, "Book not found")
		}
		if book.Status != entities.BookStatusPublished {
			return domainerrors.BadRequest("Book is not available for reservation")
		}
		if p.SellerID != nil && *p.SellerID == book.SellerID {
			return domainerrors.BadRequest("You cannot reserve your own book")
		}

		active, err := u.reservationRepo.HasActive(txCtx, p.UserID, book.ID)
		if err != nil {
			return err
		}
		if active {
			return domainerrors.Conflict("You already have an active reservation for this book")
		}

		now := time.Now()
		reservation = &entities.Reservation{
			UserID:    p.UserID,
			BookID:    book.ID,
			SellerID:  book.SellerID,
			Status:    entities.ReservationStatusPending,
			Message:   strings.TrimSpace(input.Message),
			CreatedAt: now,
			UpdatedAt: now,
		}
		return u.reservationRepo.Create(txCtx, reservation)
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// Cancel moves a PENDING reservation to CANCELLED
func (u *ReservationUsecase) Cancel(ctx context.Context, p authz.Principal, id uuid.UUID) (*entities.Reservation, error) {
	return u.transition(ctx, p, id, entities.ReservationStatusCancelled)
}

// Confirm moves a PENDING reservation to CONFIRMED
func (u *ReservationUsecase) Confirm(ctx context.Context, p authz.Principal, id uuid.UUID) (*entities.Reservation, error) {
	return u.transition(ctx, p, id, entities.ReservationStatusConfirmed)
}

// Complete moves a CONFIRMED reservation to COMPLETED
func (u *ReservationUsecase) Complete(ctx context.Context, p authz.Principal, id uuid.UUID) (*entities.Reservation, error) {
	return u.transition(ctx, p, id, entities.ReservationStatusCompleted)
}

// transition re-reads the reservation under lock, checks the transition table
// and writes the new status only if the row is still in the state it was read in.
func (u *ReservationUsecase) transition(ctx context.Context, p authz.Principal, id uuid.UUID, next entities.ReservationStatus) (*entities.Reservation, error) {
	if err := u.gate.RequireAuthenticated(p); err != nil {
		return nil, err
	}

	var reservation *entities.Reservation
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		current, err := u.reservationRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return notFoundAs(err, "Reservation not found")
		}
		if err := u.gate.AuthorizeOwner(p, current.SellerID); err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(next) {
			return transitionConflict(current.Status, next)
		}

		if err := u.reservationRepo.UpdateStatusIf(txCtx, id, current.Status, next); err != nil {
			switch {
			case errors.Is(err, domainerrors.ErrNotFound):
				return domainerrors.NotFound("Reservation not found")
			case errors.Is(err, domainerrors.ErrInvalidTransition):
				latest, rerr := u.reservationRepo.GetByID(txCtx, id)
				if rerr != nil {
					return notFoundAs(rerr, "Reservation not found")
				}
				return transitionConflict(latest.Status, next)
			}
			return err
		}

		current.Status = next
		current.UpdatedAt = time.Now()
		reservation = current
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidTransition) {
			metrics.ReservationTransitionsTotal.WithLabelValues(string(next), "conflict").Inc()
		}
		return nil, err
	}

	metrics.ReservationTransitionsTotal.WithLabelValues(string(next), "ok").Inc()
	logger.Info(ctx, "Reservation status changed",
		zap.String("reservation_id", id.String()),
		zap.String("status", string(next)),
	)
	return reservation, nil
}

// ListMine lists the principal's reservations as a buyer
func (u *ReservationUsecase) ListMine(ctx context.Context, p authz.Principal, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	if err := u.gate.RequireAuthenticated(p); err != nil {
		return nil, 0, err
	}
	return u.reservationRepo.ListByUser(ctx, p.UserID, pagination)
}

// ListForSeller lists reservations on the principal's books
func (u *ReservationUsecase) ListForSeller(ctx context.Context, p authz.Principal, status entities.ReservationStatus, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	if err := u.gate.RequireSeller(p); err != nil {
		return nil, 0, err
	}
	if p.SellerID == nil {
		return nil, 0, domainerrors.Forbidden("A seller profile is required")
	}
	if err := validReservationFilter(status); err != nil {
		return nil, 0, err
	}
	return u.reservationRepo.ListBySeller(ctx, *p.SellerID, status, pagination)
}

// ListAll lists every reservation for admins
func (u *ReservationUsecase) ListAll(ctx context.Context, p authz.Principal, status entities.ReservationStatus, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	if err := u.gate.RequireAdmin(p); err != nil {
		return nil, 0, err
	}
	if err := validReservationFilter(status); err != nil {
		return nil, 0, err
	}
	return u.reservationRepo.List(ctx, status, pagination)
}

func validReservationFilter(status entities.ReservationStatus) error {
	switch status {
	case "", entities.ReservationStatusPending, entities.ReservationStatusConfirmed,
		entities.ReservationStatusCompleted, entities.ReservationStatusCancelled:
		return nil
	}
	return domainerrors.BadRequest("Invalid reservation status")
}

func transitionConflict(current, next entities.ReservationStatus) error {
	return domainerrors.Conflict(fmt.Sprintf("Cannot %s a reservation that is %s", transitionVerbs[next], current))
}
