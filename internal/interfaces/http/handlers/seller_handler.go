package handlers

import (
	"context"
	"net/http"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	"bookmarket.backend/internal/interfaces/http/middleware"
	"bookmarket.backend/internal/interfaces/http/response"
	"bookmarket.backend/internal/usecases"
	"bookmarket.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type sellerService interface {
	Get(ctx context.Context, id uuid.UUID) (*entities.SellerProfile, error)
	UpdateMine(ctx context.Context, p authz.Principal, input *entities.UpdateSellerProfileInput) (*entities.SellerProfile, error)
}

type ratingService interface {
	Rate(ctx context.Context, p authz.Principal, sellerID uuid.UUID, input *entities.RateSellerInput) (*usecases.RatingResult, error)
	Delete(ctx context.Context, p authz.Principal, ratingID uuid.UUID) (*usecases.RatingResult, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.SellerRating, int64, error)
}

// SellerHandler handles seller profiles and their ratings
type SellerHandler struct {
	sellerUsecase sellerService
	ratingUsecase ratingService
}

// NewSellerHandler creates a new seller handler
func NewSellerHandler(sellerUsecase sellerService, ratingUsecase ratingService) *SellerHandler {
	return &SellerHandler{sellerUsecase: sellerUsecase, ratingUsecase: ratingUsecase}
}

// Get returns a public seller profile with its rating aggregate
// GET /api/v1/sellers/:id
func (h *SellerHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	seller, err := h.sellerUsecase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"seller": seller})
}

// UpdateMine edits the caller's store profile
// PUT /api/v1/sellers/me
func (h *SellerHandler) UpdateMine(c *gin.Context) {
	var input entities.UpdateSellerProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	seller, err := h.sellerUsecase.UpdateMine(c.Request.Context(), middleware.GetPrincipal(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"seller": seller})
}

// ListRatings lists a seller's ratings
// GET /api/v1/sellers/:id/ratings
func (h *SellerHandler) ListRatings(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := paginationFromQuery(c)
	ratings, total, err := h.ratingUsecase.ListForSeller(c.Request.Context(), id, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "ratings", ratings, total, pagination)
}

// Rate creates or replaces the caller's rating of a seller
// POST /api/v1/sellers/:id/ratings
func (h *SellerHandler) Rate(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.RateSellerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.ratingUsecase.Rate(c.Request.Context(), middleware.GetPrincipal(c), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, result)
}

// DeleteRating removes a rating and returns the recomputed aggregate
// DELETE /api/v1/ratings/:id
func (h *SellerHandler) DeleteRating(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.ratingUsecase.Delete(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
