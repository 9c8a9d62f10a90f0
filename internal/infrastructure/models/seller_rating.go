package models

import (
	"time"

	"github.com/google/uuid"
)

type SellerRating struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_seller_ratings_user_seller"`
	SellerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_seller_ratings_user_seller;index"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment   string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
