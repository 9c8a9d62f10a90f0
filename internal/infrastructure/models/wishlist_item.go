package models

import (
	"time"

	"github.com/google/uuid"
)

type WishlistItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_book"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_book;index"`
	CreatedAt time.Time

	User User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Book *Book `gorm:"foreignKey:BookID"`
}
