package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// BookStatus is the moderation state of a listing
type BookStatus string

const (
	BookStatusPublished       BookStatus = "PUBLISHED"
	BookStatusUnpublished     BookStatus = "UNPUBLISHED"
	BookStatusPendingApproval BookStatus = "PENDING_APPROVAL"
)

// IsValid reports whether s is a known book status.
func (s BookStatus) IsValid() bool {
	switch s {
	case BookStatusPublished, BookStatusUnpublished, BookStatusPendingApproval:
		return true
	}
	return false
}

// BookCondition describes the physical state of a copy
type BookCondition string

const (
	BookConditionNew     BookCondition = "NEW"
	BookConditionLikeNew BookCondition = "LIKE_NEW"
	BookConditionUsed    BookCondition = "USED"
	BookConditionWorn    BookCondition = "WORN"
)

// Book represents a listing owned by a seller profile
type Book struct {
	ID          uuid.UUID     `json:"id"`
	SellerID    uuid.UUID     `json:"sellerId"`
	Title       string        `json:"title"`
	Author      string        `json:"author"`
	ISBN        null.String   `json:"isbn"`
	Description string        `json:"description"`
	Condition   BookCondition `json:"condition"`
	Price       float64       `json:"price"`
	Status      BookStatus    `json:"status"`
	ImageKey    null.String   `json:"imageKey"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// CreateBookInput represents input for listing a book
type CreateBookInput struct {
	Title       string        `json:"title" binding:"required,min=1,max=200"`
	Author      string        `json:"author" binding:"required,min=1,max=200"`
	ISBN        string        `json:"isbn" binding:"omitempty,max=20"`
	Description string        `json:"description" binding:"max=5000"`
	Condition   BookCondition `json:"condition" binding:"required,oneof=NEW LIKE_NEW USED WORN"`
	Price       float64       `json:"price" binding:"required,gt=0"`
}

// UpdateBookInput represents the editable listing fields
type UpdateBookInput struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=200"`
	Author      *string        `json:"author" binding:"omitempty,min=1,max=200"`
	ISBN        *string        `json:"isbn" binding:"omitempty,max=20"`
	Description *string        `json:"description" binding:"omitempty,max=5000"`
	Condition   *BookCondition `json:"condition" binding:"omitempty,oneof=NEW LIKE_NEW USED WORN"`
	Price       *float64       `json:"price" binding:"omitempty,gt=0"`
}

// UpdateBookStatusInput is the admin moderation payload
type UpdateBookStatusInput struct {
	Status BookStatus `json:"status" binding:"required,oneof=PUBLISHED UNPUBLISHED PENDING_APPROVAL"`
}

// BatchDeleteBooksInput carries the ids to delete
type BatchDeleteBooksInput struct {
	BookIDs []uuid.UUID `json:"bookIds" binding:"required,min=1,max=100"`
}

// BookFilter narrows book listings
type BookFilter struct {
	Query     string
	Condition BookCondition
	SellerID  *uuid.UUID
	Status    BookStatus
}
