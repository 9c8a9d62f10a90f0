package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// SellerProfile is the selling side of a user. AverageRating and TotalRatings
// are derived from the profile's ratings and only written by re-aggregation.
type SellerProfile struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"userId"`
	StoreName     string       `json:"storeName"`
	Bio           null.String  `json:"bio"`
	Location      null.String  `json:"location"`
	AverageRating null.Float64 `json:"averageRating"`
	TotalRatings  int          `json:"totalRatings"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// UpdateSellerProfileInput represents the editable profile fields
type UpdateSellerProfileInput struct {
	StoreName string  `json:"storeName" binding:"required,min=2,max=120"`
	Bio       *string `json:"bio" binding:"omitempty,max=1000"`
	Location  *string `json:"location" binding:"omitempty,max=120"`
}

// RatingAggregate is the recomputed mean and count of a seller's ratings.
type RatingAggregate struct {
	Average null.Float64
	Count   int
}
