package models

import (
	"time"

	"github.com/google/uuid"
)

type Book struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SellerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(200);not null;index"`
	Author      string    `gorm:"type:varchar(200);not null"`
	ISBN        *string   `gorm:"column:isbn;type:varchar(20)"`
	Description string    `gorm:"type:text"`
	Condition   string    `gorm:"type:varchar(20);not null"`
	Price       float64   `gorm:"type:decimal(10,2);not null"`
	Status      string    `gorm:"type:varchar(20);not null;index;default:'PENDING_APPROVAL'"`
	ImageKey    *string   `gorm:"type:varchar(255)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	WishlistItems []WishlistItem `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	Reservations  []Reservation  `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}
