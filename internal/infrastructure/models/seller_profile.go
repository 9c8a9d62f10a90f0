package models

import (
	"time"

	"github.com/google/uuid"
)

type SellerProfile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	StoreName     string    `gorm:"type:varchar(120);not null"`
	Bio           *string   `gorm:"type:text"`
	Location      *string   `gorm:"type:varchar(120)"`
	AverageRating *float64  `gorm:"type:double precision"`
	TotalRatings  int       `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Books        []Book         `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE"`
	Ratings      []SellerRating `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE"`
	Reservations []Reservation  `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE"`
}
