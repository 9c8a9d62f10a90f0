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

// ReservationRepository implements reservation operations
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create creates a new reservation
func (r *ReservationRepository) Create(ctx context.Context, reservation *entities.Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = utils.GenerateUUIDv7()
	}
	m := &models.Reservation{
		ID:        reservation.ID,
		UserID:    reservation.UserID,
		BookID:    reservation.BookID,
		SellerID:  reservation.SellerID,
		Status:    string(reservation.Status),
		Message:   reservation.Message,
		CreatedAt: reservation.CreatedAt,
		UpdatedAt: reservation.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Omit("User").Create(m).Error; err != nil {
		return err
	}
	reservation.CreatedAt = m.CreatedAt
	reservation.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a reservation by ID
func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Reservation, error) {
	var m models.Reservation
	if err := lockedRead(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toReservationEntity(&m), nil
}

// UpdateStatusIf performs a compare-and-set on the status column
func (r *ReservationRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next entities.ReservationStatus) error {
	db := GetDB(ctx, r.db)
	result := db.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(map[string]interface{}{
			"status":     string(next),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := db.Model(&models.Reservation{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domainerrors.ErrNotFound
	}
	return domainerrors.ErrInvalidTransition
}

// HasActive reports whether the user holds a PENDING or CONFIRMED reservation
// on the book
func (r *ReservationRepository) HasActive(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Reservation{}).
		Where("user_id = ? AND book_id = ? AND status IN ?", userID, bookID, []string{
			string(entities.ReservationStatusPending),
			string(entities.ReservationStatusConfirmed),
		}).
		Count(&n).Error
	return n > 0, err
}

// ListByUser lists the reservations a buyer made
func (r *ReservationRepository) ListByUser(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	return r.list(ctx, GetDB(ctx, r.db).Model(&models.Reservation{}).Where("user_id = ?", userID), pagination)
}

// ListBySeller lists reservations addressed to a seller profile
func (r *ReservationRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, status entities.ReservationStatus, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Reservation{}).Where("seller_id = ?", sellerID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	return r.list(ctx, query, pagination)
}

// List lists every reservation, optionally by status
func (r *ReservationRepository) List(ctx context.Context, status entities.ReservationStatus, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Reservation{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	return r.list(ctx, query, pagination)
}

// Count counts reservations, optionally by status
func (r *ReservationRepository) Count(ctx context.Context, status entities.ReservationStatus) (int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Reservation{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}

func (r *ReservationRepository) list(_ context.Context, query *gorm.DB, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Reservation
	if err := paginate(query.Order("created_at DESC"), pagination).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Reservation, 0, len(ms))
	for i := range ms {
		out = append(out, toReservationEntity(&ms[i]))
	}
	return out, total, nil
}

func toReservationEntity(m *models.Reservation) *entities.Reservation {
	return &entities.Reservation{
		ID:        m.ID,
		UserID:    m.UserID,
		BookID:    m.BookID,
		SellerID:  m.SellerID,
		Status:    entities.ReservationStatus(m.Status),
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
