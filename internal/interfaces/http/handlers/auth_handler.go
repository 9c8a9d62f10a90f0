package handlers

import (
	"context"
	"net/http"

	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/interfaces/http/middleware"
	"bookmarket.backend/internal/interfaces/http/response"
	"bookmarket.backend/internal/usecases"
	"bookmarket.backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const refreshCookie = "refresh_token"

type authService interface {
	Register(ctx context.Context, input *entities.CreateUserInput) (*entities.User, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	Logout(ctx context.Context, sessionID string) error
	RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input *entities.ChangePasswordInput) error
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email, clientKey string) error
	ResetPassword(ctx context.Context, input *entities.ResetPasswordInput) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase  authService
	secureCookie bool
}

// NewAuthHandler creates a new auth handler. secureCookie marks the refresh
// cookie Secure and should be set outside development.
func NewAuthHandler(authUsecase authService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, secureCookie: secureCookie}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.authUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email for verification.",
		"user":    user,
	})
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	authResponse, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	if authResponse.RefreshToken != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(refreshCookie, authResponse.RefreshToken, 3600*24*7, "/api/v1/auth", "", h.secureCookie, true)
	}
	response.Success(c, http.StatusOK, authResponse)
}

// Logout drops the caller's session, if any
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUsecase.Logout(c.Request.Context(), c.GetHeader(middleware.SessionHeader)); err != nil {
		response.Error(c, err)
		return
	}
	c.SetCookie(refreshCookie, "", -1, "/api/v1/auth", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// RefreshToken handles token refresh. The token comes from the JSON body or,
// failing that, the refresh cookie.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&input)
	}
	if input.RefreshToken == "" {
		if cookie, err := c.Cookie(refreshCookie); err == nil {
			input.RefreshToken = cookie
		}
	}
	if input.RefreshToken == "" {
		response.Error(c, domainerrors.Validation("Refresh token is required", map[string]string{"refreshToken": "is required"}))
		return
	}

	pair, err := h.authUsecase.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, pair)
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	user, err := h.authUsecase.GetUserByID(c.Request.Context(), p.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user, "sellerId": p.SellerID})
}

// ChangePassword handles password change for the authenticated user
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var input entities.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.authUsecase.ChangePassword(c.Request.Context(), middleware.GetPrincipal(c).UserID, &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// VerifyEmail handles email verification
// GET /api/v1/auth/verify-email?token=
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, domainerrors.Validation("Token is required", map[string]string{"token": "is required"}))
		return
	}

	if err := h.authUsecase.VerifyEmail(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// RequestPasswordReset sends a reset link. The answer is the same whether or
// not the account exists.
// POST /api/v1/auth/request-password-reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var input entities.RequestPasswordResetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.authUsecase.RequestPasswordReset(c.Request.Context(), input.Email, c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": usecases.PasswordResetRequestedMessage})
}

// ResetPassword sets a new password from a reset token
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input entities.ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.authUsecase.ResetPassword(c.Request.Context(), &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Password has been reset"})
}
