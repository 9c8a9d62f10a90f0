package usecases

import (
	"context"
	"errors"
	"net/http"
	"time"

	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/pkg/redis"
)

// SessionStore keeps server side login sessions
type SessionStore interface {
	CreateSession(ctx context.Context, data *redis.SessionData, expiration time.Duration) (string, error)
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// notFoundAs turns a repository ErrNotFound into a 404 with message and
// passes every other error through.
func notFoundAs(err error, message string) error {
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.NotFound(message)
	}
	return err
}

// alreadyExists reports a uniqueness clash as a conflict
func alreadyExists(message string) error {
	return domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeConflict, message, domainerrors.ErrAlreadyExists)
}
