package middleware

import (
	"context"
	"errors"
	"strings"

	"bookmarket.backend/internal/domain/authz"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/interfaces/http/response"
	"bookmarket.backend/pkg/jwt"
	"bookmarket.backend/pkg/logger"
	"bookmarket.backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// SessionHeader carries a server side session id
	SessionHeader = "X-Session-ID"
	// PrincipalKey is the context key for the resolved principal
	PrincipalKey = "principal"
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
)

// PrincipalResolver loads the current principal for a user id
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (authz.Principal, error)
}

// SessionReader looks sessions up by id
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
}

// Authenticator turns request credentials into a principal
type Authenticator struct {
	jwtService *jwt.JWTService
	sessions   SessionReader
	resolver   PrincipalResolver
}

// NewAuthenticator creates an authenticator. sessions may be nil.
func NewAuthenticator(jwtService *jwt.JWTService, sessions SessionReader, resolver PrincipalResolver) *Authenticator {
	return &Authenticator{jwtService: jwtService, sessions: sessions, resolver: resolver}
}

// Required rejects requests without valid credentials
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.authenticate(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		if p.Anonymous() {
			response.Error(c, domainerrors.Unauthorized("Authorization header is required"))
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// Optional resolves credentials when present and lets anonymous requests
// through. Invalid credentials are still rejected.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.authenticate(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		if !p.Anonymous() {
			setPrincipal(c, p)
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) (authz.Principal, error) {
	ctx := c.Request.Context()

	if sessionID := strings.TrimSpace(c.GetHeader(SessionHeader)); sessionID != "" {
		if a.sessions == nil {
			return authz.Principal{}, domainerrors.Unauthorized("Sessions are not enabled")
		}
		data, err := a.sessions.GetSession(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, redis.ErrSessionNotFound) {
				logger.Warn(ctx, "Session lookup failed", zap.Error(err))
			}
			return authz.Principal{}, domainerrors.Unauthorized("Invalid or expired session")
		}
		return a.resolver.Resolve(ctx, data.UserID)
	}

	header := c.GetHeader(AuthorizationHeader)
	if header == "" {
		return authz.Principal{}, nil
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return authz.Principal{}, domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>")
	}

	claims, err := a.jwtService.ValidateAccessToken(strings.TrimPrefix(header, BearerPrefix))
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return authz.Principal{}, domainerrors.Unauthorized("Token has expired")
		}
		return authz.Principal{}, domainerrors.Unauthorized("Invalid token")
	}
	return a.resolver.Resolve(ctx, claims.UserID)
}

func setPrincipal(c *gin.Context, p authz.Principal) {
	c.Set(PrincipalKey, p)
	c.Set(UserIDKey, p.UserID)
	ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, p.UserID.String())
	c.Request = c.Request.WithContext(ctx)
}

// GetPrincipal returns the request principal, anonymous when unauthenticated
func GetPrincipal(c *gin.Context) authz.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return authz.Principal{}
	}
	p, _ := v.(authz.Principal)
	return p
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// RequireAdmin rejects principals without administrative rights
func RequireAdmin(gate *authz.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gate.RequireAdmin(GetPrincipal(c)); err != nil {
			response.Error(c, err)
			return
		}
		c.Next()
	}
}

// RequireSeller rejects principals that cannot sell
func RequireSeller(gate *authz.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gate.RequireSeller(GetPrincipal(c)); err != nil {
			response.Error(c, err)
			return
		}
		c.Next()
	}
}
