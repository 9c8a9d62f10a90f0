package handlers

import (
	"context"
	"net/http"
	"strings"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	"bookmarket.backend/internal/interfaces/http/middleware"
	"bookmarket.backend/internal/interfaces/http/response"
	"bookmarket.backend/internal/usecases"
	"bookmarket.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type adminService interface {
	ListUsers(ctx context.Context, p authz.Principal, search string, pagination utils.PaginationParams) ([]*entities.User, int64, error)
	DeleteUser(ctx context.Context, p authz.Principal, userID uuid.UUID) error
	Stats(ctx context.Context, p authz.Principal) (*usecases.DashboardStats, error)
}

// AdminHandler handles admin endpoints
type AdminHandler struct {
	adminUsecase adminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminUsecase adminService) *AdminHandler {
	return &AdminHandler{adminUsecase: adminUsecase}
}

// ListUsers lists all users
// GET /api/v1/admin/users?search=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	pagination := paginationFromQuery(c)
	users, total, err := h.adminUsecase.ListUsers(c.Request.Context(), middleware.GetPrincipal(c), strings.TrimSpace(c.Query("search")), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "users", users, total, pagination)
}

// DeleteUser removes a user with everything they own
// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.adminUsecase.DeleteUser(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "User deleted"})
}

// GetStats returns dashboard counts
// GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminUsecase.Stats(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
