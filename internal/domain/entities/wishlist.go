package entities

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem links a user to a book they want to keep an eye on
type WishlistItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	BookID    uuid.UUID `json:"bookId"`
	CreatedAt time.Time `json:"createdAt"`
	Book      *Book     `json:"book,omitempty"`
}

// AddWishlistItemInput represents input for adding to the wishlist
type AddWishlistItemInput struct {
	BookID uuid.UUID `json:"bookId" binding:"required"`
}
