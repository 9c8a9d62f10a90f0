package repositories

import (
	"context"
	"errors"

	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/infrastructure/models"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistRepository implements wishlist operations
type WishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository creates a new wishlist repository
func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Add inserts the pair if absent and returns the stored row either way.
// Concurrent adds of the same pair settle on a single row.
func (r *WishlistRepository) Add(ctx context.Context, item *entities.WishlistItem) (*entities.WishlistItem, bool, error) {
	if item.ID == uuid.Nil {
		item.ID = utils.GenerateUUIDv7()
	}
	m := &models.WishlistItem{
		ID:        item.ID,
		UserID:    item.UserID,
		BookID:    item.BookID,
		CreatedAt: item.CreatedAt,
	}
	result := GetDB(ctx, r.db).
		Omit("User", "Book").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
			DoNothing: true,
		}).
		Create(m)
	if result.Error != nil {
		return nil, false, result.Error
	}
	created := result.RowsAffected > 0

	stored, err := r.Get(ctx, item.UserID, item.BookID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// Get returns a user's wishlist entry for a book
func (r *WishlistRepository) Get(ctx context.Context, userID, bookID uuid.UUID) (*entities.WishlistItem, error) {
	var m models.WishlistItem
	if err := GetDB(ctx, r.db).Where("user_id = ? AND book_id = ?", userID, bookID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toWishlistEntity(&m), nil
}

// Remove deletes the (user, book) entry
func (r *WishlistRepository) Remove(ctx context.Context, userID, bookID uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&models.WishlistItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListByUser returns the user's wishlist with each book attached
func (r *WishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.WishlistItem, error) {
	var ms []models.WishlistItem
	if err := GetDB(ctx, r.db).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	out := make([]*entities.WishlistItem, 0, len(ms))
	for i := range ms {
		out = append(out, toWishlistEntity(&ms[i]))
	}
	return out, nil
}

func toWishlistEntity(m *models.WishlistItem) *entities.WishlistItem {
	item := &entities.WishlistItem{
		ID:        m.ID,
		UserID:    m.UserID,
		BookID:    m.BookID,
		CreatedAt: m.CreatedAt,
	}
	if m.Book != nil {
		item.Book = toBookEntity(m.Book)
	}
	return item
}
