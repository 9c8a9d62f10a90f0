package usecases

import (
	"context"
	"time"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/domain/repositories"
	"github.com/google/uuid"
)

// WishlistUsecase manages a user's wishlist
type WishlistUsecase struct {
	wishlistRepo repositories.WishlistRepository
	bookRepo     repositories.BookRepository
	gate         *authz.Gate
}

// NewWishlistUsecase creates a new wishlist usecase
func NewWishlistUsecase(wishlistRepo repositories.WishlistRepository, bookRepo repositories.BookRepository, gate *authz.Gate) *WishlistUsecase {
	return &WishlistUsecase{wishlistRepo: wishlistRepo, bookRepo: bookRepo, gate: gate}
}

// List returns the principal's wishlist
func (u *WishlistUsecase) List(ctx context.Context, p authz.Principal) ([]*entities.WishlistItem, error) {
	if err := u.gate.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	return u.wishlistRepo.ListByUser(ctx, p.UserID)
}

// Add puts a book on the principal's wishlist. Adding a book twice returns
// the existing entry with created set to false.
func (u *WishlistUsecase) Add(ctx context.Context, p authz.Principal, bookID uuid.UUID) (*entities.WishlistItem, bool, error) {
	if err := u.gate.RequireAuthenticated(p); err != nil {
		return nil, false, err
	}
	if bookID == uuid.Nil {
		return nil, false, domainerrors.Validation("Invalid request", map[string]string{"bookId": "is required"})
	}
	book, err := u.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, false, notFoundAs(err, "Book not found")
	}
	// same visibility as a direct read: unpublished listings stay hidden
	if book.Status != entities.BookStatusPublished && u.gate.AuthorizeOwner(p, book.SellerID) != nil {
		return nil, false, domainerrors.NotFound("Book not found")
	}

	item, created, err := u.wishlistRepo.Add(ctx, &entities.WishlistItem{
		UserID:    p.UserID,
		BookID:    bookID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, false, err
	}
	item.Book = book
	return item, created, nil
}

// Remove deletes ownerID's entry for bookID. Only the owner may do so.
func (u *WishlistUsecase) Remove(ctx context.Context, p authz.Principal, ownerID, bookID uuid.UUID) error {
	if err := u.gate.AuthorizeSelf(p, ownerID); err != nil {
		return err
	}
	if err := u.wishlistRepo.Remove(ctx, ownerID, bookID); err != nil {
		return notFoundAs(err, "Wishlist item not found")
	}
	return nil
}
