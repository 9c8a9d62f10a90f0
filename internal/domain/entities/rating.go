package entities

import (
	"time"

	"github.com/google/uuid"
)

// SellerRating is one buyer's score for a seller profile
type SellerRating struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	SellerID  uuid.UUID `json:"sellerId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RateSellerInput represents input for rating a seller
type RateSellerInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}
