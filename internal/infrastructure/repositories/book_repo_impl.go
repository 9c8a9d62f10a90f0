package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/infrastructure/models"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// BookRepository implements book listing operations
type BookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

// Create creates a new book
func (r *BookRepository) Create(ctx context.Context, book *entities.Book) error {
	if book.ID == uuid.Nil {
		book.ID = utils.GenerateUUIDv7()
	}
	if book.Status == "" {
		book.Status = entities.BookStatusPendingApproval
	}
	m := toBookModel(book)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	book.CreatedAt = m.CreatedAt
	book.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Book, error) {
	var m models.Book
	if err := lockedRead(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toBookEntity(&m), nil
}

// Update writes the seller-editable fields
func (r *BookRepository) Update(ctx context.Context, book *entities.Book) error {
	book.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).Model(&models.Book{}).Where("id = ?", book.ID).Updates(map[string]interface{}{
		"title":       book.Title,
		"author":      book.Author,
		"isbn":        book.ISBN.Ptr(),
		"description": book.Description,
		"condition":   string(book.Condition),
		"price":       book.Price,
		"updated_at":  book.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus sets the moderation status
func (r *BookRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.BookStatus) error {
	return r.updateColumn(ctx, id, "status", string(status))
}

// SetImageKey records the object key of the cover image
func (r *BookRepository) SetImageKey(ctx context.Context, id uuid.UUID, key string) error {
	return r.updateColumn(ctx, id, "image_key", key)
}

func (r *BookRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	result := GetDB(ctx, r.db).Model(&models.Book{}).Where("id = ?", id).Updates(map[string]interface{}{
		column:       value,
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

// List returns books matching filter, newest first
func (r *BookRepository) List(ctx context.Context, filter entities.BookFilter, pagination utils.PaginationParams) ([]*entities.Book, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Book{})
	if q := strings.TrimSpace(filter.Query); q != "" {
		term := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR isbn = ?", term, term, q)
	}
	if filter.Condition != "" {
		query = query.Where("condition = ?", string(filter.Condition))
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Book
	if err := paginate(query.Order("created_at DESC"), pagination).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return toBookEntities(ms), total, nil
}

// Count counts books, optionally restricted to one status
func (r *BookRepository) Count(ctx context.Context, status entities.BookStatus) (int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Book{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}

// FindOwned returns the books among ids owned by sellerID
func (r *BookRepository) FindOwned(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID) ([]*entities.Book, error) {
	if len(ids) == 0 {
		return []*entities.Book{}, nil
	}
	var ms []models.Book
	if err := lockedRead(ctx, r.db).
		Where("seller_id = ? AND id IN ?", sellerID, ids).
		Order("created_at").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return toBookEntities(ms), nil
}

// ListImageKeysBySeller returns the non-empty image keys of a seller's books
func (r *BookRepository) ListImageKeysBySeller(ctx context.Context, sellerID uuid.UUID) ([]string, error) {
	var keys []string
	if err := GetDB(ctx, r.db).Model(&models.Book{}).
		Where("seller_id = ? AND image_key IS NOT NULL AND image_key <> ''", sellerID).
		Pluck("image_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteOwned deletes the owned books among ids with their wishlist items and
// reservations. Ids belonging to other sellers are ignored.
func (r *BookRepository) DeleteOwned(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var owned []uuid.UUID
		if err := tx.Model(&models.Book{}).
			Where("seller_id = ? AND id IN ?", sellerID, ids).
			Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return nil
		}
		if err := tx.Where("book_id IN ?", owned).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id IN ?", owned).Delete(&models.Reservation{}).Error; err != nil {
			return err
		}
		result := tx.Where("seller_id = ? AND id IN ?", sellerID, owned).Delete(&models.Book{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func toBookModel(b *entities.Book) *models.Book {
	return &models.Book{
		ID:          b.ID,
		SellerID:    b.SellerID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN.Ptr(),
		Description: b.Description,
		Condition:   string(b.Condition),
		Price:       b.Price,
		Status:      string(b.Status),
		ImageKey:    b.ImageKey.Ptr(),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBookEntity(m *models.Book) *entities.Book {
	return &entities.Book{
		ID:          m.ID,
		SellerID:    m.SellerID,
		Title:       m.Title,
		Author:      m.Author,
		ISBN:        null.StringFromPtr(m.ISBN),
		Description: m.Description,
		Condition:   entities.BookCondition(m.Condition),
		Price:       m.Price,
		Status:      entities.BookStatus(m.Status),
		ImageKey:    null.StringFromPtr(m.ImageKey),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toBookEntities(ms []models.Book) []*entities.Book {
	out := make([]*entities.Book, 0, len(ms))
	for i := range ms {
		out = append(out, toBookEntity(&ms[i]))
	}
	return out
}
