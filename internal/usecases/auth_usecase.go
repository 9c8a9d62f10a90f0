package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/domain/repositories"
	"bookmarket.backend/internal/ratelimit"
	"bookmarket.backend/pkg/crypto"
	"bookmarket.backend/pkg/jwt"
	"bookmarket.backend/pkg/logger"
	"bookmarket.backend/pkg/mail"
	"bookmarket.backend/pkg/metrics"
	"bookmarket.backend/pkg/redis"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PasswordResetRequestedMessage is the answer to every reset request, whether
// or not the email belongs to an account.
const PasswordResetRequestedMessage = "If an account exists for that email, a reset link has been sent."

var (
	errInvalidResetToken  = domainerrors.BadRequest("Invalid or expired reset token")
	errInvalidVerifyToken = domainerrors.BadRequest("Invalid or expired verification token")
)

// AuthUsecase handles authentication business logic
type AuthUsecase struct {
	uow        repositories.UnitOfWork
	userRepo   repositories.UserRepository
	sellerRepo repositories.SellerRepository
	tokenRepo  repositories.VerificationTokenRepository
	jwtService *jwt.JWTService
	mailer     mail.Mailer
	publicURL  string

	sessions     SessionStore
	resetLimiter ratelimit.Limiter
	now          func() time.Time
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	sellerRepo repositories.SellerRepository,
	tokenRepo repositories.VerificationTokenRepository,
	jwtService *jwt.JWTService,
	mailer mail.Mailer,
	publicURL string,
) *AuthUsecase {
	if mailer == nil {
		mailer = mail.LogMailer{}
	}
	return &AuthUsecase{
		uow:        uow,
		userRepo:   userRepo,
		sellerRepo: sellerRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		mailer:     mailer,
		publicURL:  strings.TrimRight(publicURL, "/"),
		now:        time.Now,
	}
}

// SetSessionStore enables session based login
func (u *AuthUsecase) SetSessionStore(s SessionStore) {
	u.sessions = s
}

// SetResetLimiter throttles password reset requests
func (u *AuthUsecase) SetResetLimiter(l ratelimit.Limiter) {
	u.resetLimiter = l
}

// SetClock replaces the time source
func (u *AuthUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// Register creates a USER or SELLER account. Sellers get a profile in the
// same transaction. A verification link is mailed afterwards.
func (u *AuthUsecase) Register(ctx context.Context, input *entities.CreateUserInput) (*entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	role := input.Role
	if role == "" {
		role = entities.UserRoleUser
	}
	if role != entities.UserRoleUser && role != entities.UserRoleSeller {
		return nil, domainerrors.BadRequest("Role must be USER or SELLER")
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, domainerrors.Validation("Invalid password", map[string]string{"password": err.Error()})
	}

	now := u.now()
	user := &entities.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var token string
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		_, err := u.userRepo.GetByEmail(txCtx, email)
		if err == nil {
			return alreadyExists("Email already registered")
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		if err := u.userRepo.Create(txCtx, user); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				return alreadyExists("Email already registered")
			}
			return err
		}

		if role.CanSell() {
			storeName := strings.TrimSpace(input.StoreName)
			if storeName == "" {
				storeName = user.Name
			}
			if err := u.sellerRepo.Create(txCtx, &entities.SellerProfile{
				UserID:    user.ID,
				StoreName: storeName,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
		}

		token, err = u.issueToken(txCtx, email, entities.TokenPurposeEmailVerification, entities.EmailVerificationTTL)
		return err
	})
	if err != nil {
		return nil, err
	}

	u.send(ctx, mail.Message{
		Kind:    mail.KindEmailVerification,
		To:      email,
		Subject: "Verify your email",
		Link:    u.link("/api/v1/auth/verify-email", token),
	})
	return user, nil
}

// Login checks credentials and returns a token pair, or a session id when the
// caller asked for a server side session.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	invalid := domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeInvalidCredentials, "Invalid email or password", domainerrors.ErrInvalidCredentials)

	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, invalid
	}

	pair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	if input.UseSession && u.sessions != nil {
		sessionID, err := u.sessions.CreateSession(ctx, &redis.SessionData{
			UserID:       user.ID,
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}, u.jwtService.RefreshExpiry())
		if err != nil {
			return nil, err
		}
		return &entities.AuthResponse{SessionID: sessionID, User: user}, nil
	}

	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

// Logout drops a server side session. Unknown sessions are ignored.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if u.sessions == nil || sessionID == "" {
		return nil
	}
	return u.sessions.DeleteSession(ctx, sessionID)
}

// RefreshToken issues a new pair from a refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.Unauthorized("Invalid refresh token")
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}
	return u.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
}

// GetUserByID gets a user by ID
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID uuid.UUID, input *entities.ChangePasswordInput) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return notFoundAs(err, "User not found")
	}
	if !crypto.CheckPassword(input.CurrentPassword, user.PasswordHash) {
		return domainerrors.BadRequest("Current password is incorrect")
	}
	hash, err := crypto.HashPassword(input.NewPassword)
	if err != nil {
		return domainerrors.Validation("Invalid password", map[string]string{"newPassword": err.Error()})
	}
	return u.userRepo.UpdatePassword(ctx, userID, hash)
}

// VerifyEmail consumes an email verification token
func (u *AuthUsecase) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domainerrors.BadRequest("Verification token is required")
	}
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		identifier, err := u.consumeToken(txCtx, token, entities.TokenPurposeEmailVerification, errInvalidVerifyToken)
		if err != nil {
			return err
		}
		if err := u.userRepo.MarkEmailVerified(txCtx, identifier, u.now().UTC()); err != nil {
			return notFoundAs(err, "User not found")
		}
		return nil
	})
}

// RequestPasswordReset mails a one hour reset link when the email belongs to
// an account. The outcome is the same either way; only throttling is
// reported. clientKey identifies the caller for throttling.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email, clientKey string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if u.resetLimiter != nil && !u.resetLimiter.Allow(ctx, clientKey+"|"+crypto.Fingerprint(email)) {
		return domainerrors.TooManyRequests("Too many password reset requests, try again later")
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Info(ctx, "Password reset requested for unknown email", zap.String("email_fp", crypto.Fingerprint(email)))
			return nil
		}
		return err
	}

	var token string
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.tokenRepo.DeleteByIdentifier(txCtx, user.Email, entities.TokenPurposePasswordReset); err != nil {
			return err
		}
		var err error
		token, err = u.issueToken(txCtx, user.Email, entities.TokenPurposePasswordReset, entities.PasswordResetTTL)
		return err
	})
	if err != nil {
		return err
	}

	u.send(ctx, mail.Message{
		Kind:    mail.KindPasswordReset,
		To:      user.Email,
		Subject: "Reset your password",
		Link:    u.link("/reset-password", token),
	})
	return nil
}

// ResetPassword sets a new password using a reset token. The token is
// consumed in the same transaction as the password write.
func (u *AuthUsecase) ResetPassword(ctx context.Context, input *entities.ResetPasswordInput) error {
	if len(input.Password) < crypto.MinPasswordLength {
		return domainerrors.Validation("Invalid password", map[string]string{
			"password": fmt.Sprintf("must be at least %d characters", crypto.MinPasswordLength),
		})
	}
	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return err
	}

	return u.uow.Do(ctx, func(txCtx context.Context) error {
		identifier, err := u.consumeToken(txCtx, strings.TrimSpace(input.Token), entities.TokenPurposePasswordReset, errInvalidResetToken)
		if err != nil {
			return err
		}
		user, err := u.userRepo.GetByEmail(txCtx, identifier)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return errInvalidResetToken
			}
			return err
		}
		return u.userRepo.UpdatePassword(txCtx, user.ID, hash)
	})
}

// consumeToken validates and consumes a token, returning its identifier.
// Every failure is answered with invalid so callers cannot probe tokens.
func (u *AuthUsecase) consumeToken(ctx context.Context, token string, purpose entities.TokenPurpose, invalid error) (string, error) {
	if token == "" {
		return "", invalid
	}
	vt, err := u.tokenRepo.GetByToken(ctx, token, purpose)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", invalid
		}
		return "", err
	}
	now := u.now().UTC()
	if vt.IsConsumed() || vt.IsExpired(now) {
		return "", invalid
	}
	if err := u.tokenRepo.Consume(ctx, vt.ID, now); err != nil {
		if errors.Is(err, domainerrors.ErrTokenConsumed) {
			return "", invalid
		}
		return "", err
	}
	return vt.Identifier, nil
}

func (u *AuthUsecase) issueToken(ctx context.Context, identifier string, purpose entities.TokenPurpose, ttl time.Duration) (string, error) {
	secret, err := crypto.GenerateVerificationToken()
	if err != nil {
		return "", err
	}
	now := u.now().UTC()
	if err := u.tokenRepo.Create(ctx, &entities.VerificationToken{
		Identifier: identifier,
		Token:      secret,
		Purpose:    purpose,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}); err != nil {
		return "", err
	}
	return secret, nil
}

func (u *AuthUsecase) link(path, token string) string {
	return u.publicURL + path + "?token=" + url.QueryEscape(token)
}

// send delivers mail without failing the request
func (u *AuthUsecase) send(ctx context.Context, msg mail.Message) {
	if err := u.mailer.Send(ctx, msg); err != nil {
		metrics.MailSentTotal.WithLabelValues(msg.Kind, "failed").Inc()
		logger.Error(ctx, "Failed to send account mail", zap.String("kind", msg.Kind), zap.Error(err))
		return
	}
	metrics.MailSentTotal.WithLabelValues(msg.Kind, "ok").Inc()
}
