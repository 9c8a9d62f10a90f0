package handlers

import (
	"context"
	"net/http"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	"bookmarket.backend/internal/interfaces/http/middleware"
	"bookmarket.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type wishlistService interface {
	List(ctx context.Context, p authz.Principal) ([]*entities.WishlistItem, error)
	Add(ctx context.Context, p authz.Principal, bookID uuid.UUID) (*entities.WishlistItem, bool, error)
	Remove(ctx context.Context, p authz.Principal, ownerID, bookID uuid.UUID) error
}

// WishlistHandler handles the caller's wishlist
type WishlistHandler struct {
	wishlistUsecase wishlistService
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistUsecase wishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistUsecase: wishlistUsecase}
}

// List returns the caller's wishlist
// GET /api/v1/wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	items, err := h.wishlistUsecase.List(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// Add puts a book on the wishlist. Adding a book twice is not an error: the
// existing entry comes back with 200 instead of 201.
// POST /api/v1/wishlist
func (h *WishlistHandler) Add(c *gin.Context) {
	var input entities.AddWishlistItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	item, created, err := h.wishlistUsecase.Add(c.Request.Context(), middleware.GetPrincipal(c), input.BookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"item": item})
}

// Remove takes a book off the caller's wishlist
// DELETE /api/v1/wishlist/:bookId
func (h *WishlistHandler) Remove(c *gin.Context) {
	bookID, err := uuidParam(c, "bookId")
	if err != nil {
		response.Error(c, err)
		return
	}

	p := middleware.GetPrincipal(c)
	if err := h.wishlistUsecase.Remove(c.Request.Context(), p, p.UserID, bookID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Removed from wishlist"})
}
