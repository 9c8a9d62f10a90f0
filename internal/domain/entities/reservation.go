package entities

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// reservationTransitions lists the allowed moves out of each state.
// Terminal states have no entry.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusCompleted},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist.
func (s ReservationStatus) IsTerminal() bool {
	return len(reservationTransitions[s]) == 0
}

// IsActive reports whether the reservation still holds the book.
func (s ReservationStatus) IsActive() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

// SourcesFor returns every state that may move to target.
func SourcesFor(target ReservationStatus) []ReservationStatus {
	var out []ReservationStatus
	for _, from := range []ReservationStatus{
		ReservationStatusPending,
		ReservationStatusConfirmed,
		ReservationStatusCompleted,
		ReservationStatusCancelled,
	} {
		if from.CanTransitionTo(target) {
			out = append(out, from)
		}
	}
	return out
}

// Reservation is a buyer's hold on a book
type Reservation struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"userId"`
	BookID    uuid.UUID         `json:"bookId"`
	SellerID  uuid.UUID         `json:"sellerId"`
	Status    ReservationStatus `json:"status"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// CreateReservationInput represents input for reserving a book
type CreateReservationInput struct {
	BookID  uuid.UUID `json:"bookId" binding:"required"`
	Message string    `json:"message" binding:"max=1000"`
}
