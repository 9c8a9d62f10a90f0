package handlers

import (
	"context"
	"net/http"
	"strings"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	"bookmarket.backend/internal/interfaces/http/middleware"
	"bookmarket.backend/internal/interfaces/http/response"
	"bookmarket.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type reservationService interface {
	Create(ctx context.Context, p authz.Principal, input *entities.CreateReservationInput) (*entities.Reservation, error)
	Cancel(ctx context.Context, p authz.Principal, id uuid.UUID) (*entities.Reservation, error)
	Confirm(ctx context.Context, p authz.Principal, id uuid.UUID) (*entities.Reservation, error)
	Complete(ctx context.Context, p authz.Principal, id uuid.UUID) (*entities.Reservation, error)
	ListMine(ctx context.Context, p authz.Principal, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error)
	ListForSeller(ctx context.Context, p authz.Principal, status entities.ReservationStatus, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error)
	ListAll(ctx context.Context, p authz.Principal, status entities.ReservationStatus, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error)
}

// ReservationHandler handles reservations
type ReservationHandler struct {
	reservationUsecase reservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationUsecase reservationService) *ReservationHandler {
	return &ReservationHandler{reservationUsecase: reservationUsecase}
}

// Create reserves a published book for the caller
// POST /api/v1/reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	var input entities.CreateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	reservation, err := h.reservationUsecase.Create(c.Request.Context(), middleware.GetPrincipal(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"reservation": reservation})
}

// ListMine lists reservations the caller made
// GET /api/v1/reservations
func (h *ReservationHandler) ListMine(c *gin.Context) {
	pagination := paginationFromQuery(c)
	items, total, err := h.reservationUsecase.ListMine(c.Request.Context(), middleware.GetPrincipal(c), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "reservations", items, total, pagination)
}

// ListForSeller lists reservations on the caller's books
// GET /api/v1/reservations/seller?status=
func (h *ReservationHandler) ListForSeller(c *gin.Context) {
	pagination := paginationFromQuery(c)
	items, total, err := h.reservationUsecase.ListForSeller(c.Request.Context(), middleware.GetPrincipal(c), statusQuery(c), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "reservations", items, total, pagination)
}

// ListAll lists every reservation
// GET /api/v1/admin/reservations?status=
func (h *ReservationHandler) ListAll(c *gin.Context) {
	pagination := paginationFromQuery(c)
	items, total, err := h.reservationUsecase.ListAll(c.Request.Context(), middleware.GetPrincipal(c), statusQuery(c), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "reservations", items, total, pagination)
}

// Cancel cancels a pending reservation
// PATCH /api/v1/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.reservationUsecase.Cancel)
}

// Confirm confirms a pending reservation
// PATCH /api/v1/reservations/:id/confirm
func (h *ReservationHandler) Confirm(c *gin.Context) {
	h.transition(c, h.reservationUsecase.Confirm)
}

// Complete completes a confirmed reservation
// PATCH /api/v1/reservations/:id/complete
func (h *ReservationHandler) Complete(c *gin.Context) {
	h.transition(c, h.reservationUsecase.Complete)
}

func (h *ReservationHandler) transition(c *gin.Context, apply func(context.Context, authz.Principal, uuid.UUID) (*entities.Reservation, error)) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	reservation, err := apply(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": reservation})
}

func statusQuery(c *gin.Context) entities.ReservationStatus {
	return entities.ReservationStatus(strings.ToUpper(c.Query("status")))
}
