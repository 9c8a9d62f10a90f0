package usecases

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/domain/repositories"
	"bookmarket.backend/pkg/logger"
	"bookmarket.backend/pkg/storage"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

// MaxBookImageSize is the default cover upload limit
const MaxBookImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// BookImageUpload is a cover image received from a client
type BookImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BatchDeleteResult reports how many books were removed
type BatchDeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// BookUsecase handles book listings
type BookUsecase struct {
	bookRepo      repositories.BookRepository
	gate          *authz.Gate
	store         storage.ObjectStore
	cleaner       *AssetCleaner
	presignExpiry time.Duration
	maxImageSize  int64
}

// NewBookUsecase creates a new book usecase. store may be nil, in which case
// uploads are rejected and no image URLs are produced.
func NewBookUsecase(bookRepo repositories.BookRepository, gate *authz.Gate, store storage.ObjectStore, presignExpiry time.Duration) *BookUsecase {
	if presignExpiry <= 0 {
		presignExpiry = time.Hour
	}
	return &BookUsecase{
		bookRepo:      bookRepo,
		gate:          gate,
		store:         store,
		cleaner:       NewAssetCleaner(store),
		presignExpiry: presignExpiry,
		maxImageSize:  MaxBookImageSize,
	}
}

// SetMaxImageSize lowers or raises the cover upload limit
func (u *BookUsecase) SetMaxImageSize(n int64) {
	if n > 0 {
		u.maxImageSize = n
	}
}

// MaxImageSize is the largest accepted cover upload
func (u *BookUsecase) MaxImageSize() int64 {
	return u.maxImageSize
}

// Create lists a new book for the principal's seller profile
func (u *BookUsecase) Create(ctx context.Context, p authz.Principal, input *entities.CreateBookInput) (*entities.Book, error) {
	sellerID, err := u.sellerOf(p)
	if err != nil {
		return nil, err
	}
	if input.Price <= 0 {
		return nil, domainerrors.Validation("Invalid book", map[string]string{"price": "must be greater than 0"})
	}

	now := time.Now()
	book := &entities.Book{
		SellerID:    sellerID,
		Title:       strings.TrimSpace(input.Title),
		Author:      strings.TrimSpace(input.Author),
		ISBN:        optionalString(input.ISBN),
		Description: input.Description,
		Condition:   input.Condition,
		Price:       input.Price,
		Status:      entities.BookStatusPendingApproval,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Update edits a listing owned by the principal
func (u *BookUsecase) Update(ctx context.Context, p authz.Principal, id uuid.UUID, input *entities.UpdateBookInput) (*entities.Book, error) {
	book, err := u.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Book not found")
	}
	if err := u.gate.AuthorizeOwner(p, book.SellerID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		book.Author = strings.TrimSpace(*input.Author)
	}
	if input.ISBN != nil {
		book.ISBN = optionalString(*input.ISBN)
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.Condition != nil {
		book.Condition = *input.Condition
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, domainerrors.Validation("Invalid book", map[string]string{"price": "must be greater than 0"})
		}
		book.Price = *input.Price
	}

	if err := u.bookRepo.Update(ctx, book); err != nil {
		return nil, notFoundAs(err, "Book not found")
	}
	u.attachImageURL(ctx, book)
	return book, nil
}

// Get returns a published book, or any book to its owner and admins.
// Hidden books look missing to everyone else.
func (u *BookUsecase) Get(ctx context.Context, p authz.Principal, id uuid.UUID) (*entities.Book, error) {
	book, err := u.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Book not found")
	}
	if book.Status != entities.BookStatusPublished && u.gate.AuthorizeOwner(p, book.SellerID) != nil {
		return nil, domainerrors.NotFound("Book not found")
	}
	u.attachImageURL(ctx, book)
	return book, nil
}

// Search lists published books
func (u *BookUsecase) Search(ctx context.Context, filter entities.BookFilter, pagination utils.PaginationParams) ([]*entities.Book, int64, error) {
	filter.Status = entities.BookStatusPublished
	filter.Query = strings.TrimSpace(filter.Query)
	books, total, err := u.bookRepo.List(ctx, filter, pagination)
	if err != nil {
		return nil, 0, err
	}
	u.attachImageURLs(ctx, books)
	return books, total, nil
}

// ListMine lists every book of the principal's seller profile
func (u *BookUsecase) ListMine(ctx context.Context, p authz.Principal, pagination utils.PaginationParams) ([]*entities.Book, int64, error) {
	sellerID, err := u.sellerOf(p)
	if err != nil {
		return nil, 0, err
	}
	books, total, err := u.bookRepo.List(ctx, entities.BookFilter{SellerID: &sellerID}, pagination)
	if err != nil {
		return nil, 0, err
	}
	u.attachImageURLs(ctx, books)
	return books, total, nil
}

// ListAll lists books in any status for moderation
func (u *BookUsecase) ListAll(ctx context.Context, p authz.Principal, status entities.BookStatus, pagination utils.PaginationParams) ([]*entities.Book, int64, error) {
	if err := u.gate.RequireAdmin(p); err != nil {
		return nil, 0, err
	}
	if status != "" && !status.IsValid() {
		return nil, 0, domainerrors.BadRequest("Invalid book status")
	}
	return u.bookRepo.List(ctx, entities.BookFilter{Status: status}, pagination)
}

// UpdateStatus moderates a listing
func (u *BookUsecase) UpdateStatus(ctx context.Context, p authz.Principal, id uuid.UUID, status entities.BookStatus) (*entities.Book, error) {
	if err := u.gate.RequireAdmin(p); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, domainerrors.BadRequest("Invalid book status")
	}
	if err := u.bookRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, notFoundAs(err, "Book not found")
	}
	return u.Get(ctx, p, id)
}

// UploadImage stores a cover image and replaces the previous one
func (u *BookUsecase) UploadImage(ctx context.Context, p authz.Principal, id uuid.UUID, img BookImageUpload) (*entities.Book, error) {
	if u.store == nil {
		return nil, domainerrors.BadRequest("Image uploads are not available")
	}
	if img.Size <= 0 || img.Size > u.maxImageSize {
		return nil, domainerrors.Validation("Invalid image", map[string]string{
			"image": fmt.Sprintf("must be between 1 and %d bytes", u.maxImageSize),
		})
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(img.ContentType, ";")[0]))
	if !allowedImageTypes[contentType] {
		return nil, domainerrors.Validation("Invalid image", map[string]string{"image": "must be a JPEG, PNG, WebP or GIF"})
	}

	book, err := u.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Book not found")
	}
	if err := u.gate.AuthorizeOwner(p, book.SellerID); err != nil {
		return nil, err
	}

	key := storage.BookImageKey(book.ID, img.Filename)
	if err := u.store.Put(ctx, key, img.Body, img.Size, contentType); err != nil {
		return nil, err
	}
	if err := u.bookRepo.SetImageKey(ctx, book.ID, key); err != nil {
		u.cleaner.Cleanup(ctx, []string{key})
		return nil, notFoundAs(err, "Book not found")
	}

	if book.ImageKey.Valid {
		u.cleaner.Cleanup(ctx, []string{book.ImageKey.String})
	}
	book.ImageKey = null.StringFrom(key)
	u.attachImageURL(ctx, book)
	return book, nil
}

// Delete removes one book owned by the principal
func (u *BookUsecase) Delete(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	book, err := u.bookRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, "Book not found")
	}
	if err := u.gate.AuthorizeOwner(p, book.SellerID); err != nil {
		return err
	}
	if _, err := u.deleteOwned(ctx, book.SellerID, []uuid.UUID{id}); err != nil {
		return err
	}
	return nil
}

// BatchDelete removes the books among ids owned by the principal's seller
// profile. Ids that are unknown or owned by someone else are skipped.
func (u *BookUsecase) BatchDelete(ctx context.Context, p authz.Principal, ids []uuid.UUID) (*BatchDeleteResult, error) {
	if err := u.gate.RequireSeller(p); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, domainerrors.Validation("Invalid request", map[string]string{"bookIds": "at least one id is required"})
	}
	// an admin without a store owns no books
	if p.SellerID == nil && u.gate.IsAdmin(p) {
		return &BatchDeleteResult{DeletedCount: 0}, nil
	}
	sellerID, err := u.sellerOf(p)
	if err != nil {
		return nil, err
	}
	deleted, err := u.deleteOwned(ctx, sellerID, dedupeIDs(ids))
	if err != nil {
		return nil, err
	}
	return &BatchDeleteResult{DeletedCount: deleted}, nil
}

func (u *BookUsecase) deleteOwned(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	owned, err := u.bookRepo.FindOwned(ctx, sellerID, ids)
	if err != nil {
		return 0, err
	}
	if len(owned) == 0 {
		return 0, nil
	}

	ownedIDs := make([]uuid.UUID, 0, len(owned))
	keys := make([]string, 0, len(owned))
	for _, b := range owned {
		ownedIDs = append(ownedIDs, b.ID)
		if b.ImageKey.Valid {
			keys = append(keys, b.ImageKey.String)
		}
	}

	wait := u.cleaner.Dispatch(ctx, keys)
	deleted, err := u.bookRepo.DeleteOwned(ctx, sellerID, ownedIDs)
	if failed := wait(); failed > 0 {
		logger.Warn(ctx, "Some book images were not removed",
			zap.String("seller_id", sellerID.String()),
			zap.Int("failed", failed),
		)
	}
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (u *BookUsecase) sellerOf(p authz.Principal) (uuid.UUID, error) {
	if err := u.gate.RequireSeller(p); err != nil {
		return uuid.Nil, err
	}
	if p.SellerID == nil {
		return uuid.Nil, domainerrors.Forbidden("A seller profile is required")
	}
	return *p.SellerID, nil
}

func (u *BookUsecase) attachImageURL(ctx context.Context, book *entities.Book) {
	if u.store == nil || !book.ImageKey.Valid {
		return
	}
	url, err := u.store.PresignGet(ctx, book.ImageKey.String, u.presignExpiry)
	if err != nil {
		logger.Warn(ctx, "Failed to presign book image", zap.String("book_id", book.ID.String()), zap.Error(err))
		return
	}
	book.ImageURL = url
}

func (u *BookUsecase) attachImageURLs(ctx context.Context, books []*entities.Book) {
	for _, b := range books {
		u.attachImageURL(ctx, b)
	}
}

func optionalString(s string) null.String {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
