package usecases

import (
	"context"
	"strings"
	"time"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/domain/repositories"
	"github.com/google/uuid"
)

// SellerUsecase handles seller profiles
type SellerUsecase struct {
	sellerRepo repositories.SellerRepository
	gate       *authz.Gate
}

// NewSellerUsecase creates a new seller usecase
func NewSellerUsecase(sellerRepo repositories.SellerRepository, gate *authz.Gate) *SellerUsecase {
	return &SellerUsecase{sellerRepo: sellerRepo, gate: gate}
}

// Get returns a public seller profile
func (u *SellerUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.SellerProfile, error) {
	profile, err := u.sellerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Seller not found")
	}
	return profile, nil
}

// UpdateMine edits the principal's own profile. Rating aggregates are not
// writable here.
func (u *SellerUsecase) UpdateMine(ctx context.Context, p authz.Principal, input *entities.UpdateSellerProfileInput) (*entities.SellerProfile, error) {
	if err := u.gate.RequireSeller(p); err != nil {
		return nil, err
	}
	if p.SellerID == nil {
		return nil, domainerrors.Forbidden("A seller profile is required")
	}

	profile, err := u.sellerRepo.GetByID(ctx, *p.SellerID)
	if err != nil {
		return nil, notFoundAs(err, "Seller not found")
	}
	if err := u.gate.AuthorizeOwner(p, profile.ID); err != nil {
		return nil, err
	}

	storeName := strings.TrimSpace(input.StoreName)
	if storeName == "" {
		return nil, domainerrors.Validation("Invalid profile", map[string]string{"storeName": "is required"})
	}
	profile.StoreName = storeName
	if input.Bio != nil {
		profile.Bio = optionalString(*input.Bio)
	}
	if input.Location != nil {
		profile.Location = optionalString(*input.Location)
	}
	profile.UpdatedAt = time.Now()

	if err := u.sellerRepo.Update(ctx, profile); err != nil {
		return nil, notFoundAs(err, "Seller not found")
	}
	return profile, nil
}
