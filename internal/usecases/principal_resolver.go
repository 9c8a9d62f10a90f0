package usecases

import (
	"context"
	"errors"

	"bookmarket.backend/internal/domain/authz"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/domain/repositories"
	"github.com/google/uuid"
)

// PrincipalResolver turns an authenticated user id into the principal the
// authorization gate evaluates. It reads the current role and seller profile
// so a token never outlives a deleted account.
type PrincipalResolver struct {
	userRepo   repositories.UserRepository
	sellerRepo repositories.SellerRepository
}

// NewPrincipalResolver creates a new resolver
func NewPrincipalResolver(userRepo repositories.UserRepository, sellerRepo repositories.SellerRepository) *PrincipalResolver {
	return &PrincipalResolver{userRepo: userRepo, sellerRepo: sellerRepo}
}

// Resolve loads the principal for userID
func (r *PrincipalResolver) Resolve(ctx context.Context, userID uuid.UUID) (authz.Principal, error) {
	user, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return authz.Principal{}, domainerrors.Unauthorized("Account no longer exists")
		}
		return authz.Principal{}, err
	}

	p := authz.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}
	if !user.Role.CanSell() {
		return p, nil
	}

	profile, err := r.sellerRepo.GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		p.SellerID = &profile.ID
	case !errors.Is(err, domainerrors.ErrNotFound):
		return authz.Principal{}, err
	}
	return p, nil
}
