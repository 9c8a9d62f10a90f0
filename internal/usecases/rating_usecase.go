package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/domain/repositories"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// RatingResult is a rating together with the seller aggregate it produced
type RatingResult struct {
	Rating        *entities.SellerRating `json:"rating,omitempty"`
	AverageRating null.Float64           `json:"averageRating"`
	TotalRatings  int                    `json:"totalRatings"`
	Created       bool                   `json:"-"`
}

// RatingUsecase handles seller ratings and keeps the seller aggregate in step
type RatingUsecase struct {
	uow        repositories.UnitOfWork
	ratingRepo repositories.RatingRepository
	sellerRepo repositories.SellerRepository
	gate       *authz.Gate
}

// NewRatingUsecase creates a new rating usecase
func NewRatingUsecase(
	uow repositories.UnitOfWork,
	ratingRepo repositories.RatingRepository,
	sellerRepo repositories.SellerRepository,
	gate *authz.Gate,
) *RatingUsecase {
	return &RatingUsecase{uow: uow, ratingRepo: ratingRepo, sellerRepo: sellerRepo, gate: gate}
}

// Rate records the principal's score for a seller, replacing any earlier
// score. The seller aggregate is recomputed in the same transaction.
func (u *RatingUsecase) Rate(ctx context.Context, p authz.Principal, sellerID uuid.UUID, input *entities.RateSellerInput) (*RatingResult, error) {
	if err := u.gate.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, domainerrors.Validation("Invalid rating", map[string]string{"rating": "must be between 1 and 5"})
	}
	if p.SellerID != nil && *p.SellerID == sellerID {
		return nil, domainerrors.BadRequest("You cannot rate your own store")
	}

	result := &RatingResult{}
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		if _, err := u.sellerRepo.GetByID(lockCtx, sellerID); err != nil {
			return notFoundAs(err, "Seller not found")
		}

		now := time.Now()
		rating, err := u.ratingRepo.GetByUserAndSeller(lockCtx, p.UserID, sellerID)
		switch {
		case err == nil:
			rating.Rating = input.Rating
			rating.Comment = strings.TrimSpace(input.Comment)
			rating.UpdatedAt = now
			if err := u.ratingRepo.Update(txCtx, rating); err != nil {
				return err
			}
		case errors.Is(err, domainerrors.ErrNotFound):
			rating = &entities.SellerRating{
				UserID:    p.UserID,
				SellerID:  sellerID,
				Rating:    input.Rating,
				Comment:   strings.TrimSpace(input.Comment),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := u.ratingRepo.Create(txCtx, rating); err != nil {
				if errors.Is(err, domainerrors.ErrAlreadyExists) {
					return alreadyExists("You have already rated this seller")
				}
				return err
			}
			result.Created = true
		default:
			return err
		}

		agg, err := u.sellerRepo.RecomputeAggregate(txCtx, sellerID)
		if err != nil {
			return notFoundAs(err, "Seller not found")
		}
		result.Rating = rating
		result.AverageRating = agg.Average
		result.TotalRatings = agg.Count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a rating and recomputes its seller's aggregate atomically
func (u *RatingUsecase) Delete(ctx context.Context, p authz.Principal, ratingID uuid.UUID) (*RatingResult, error) {
	if err := u.gate.RequireAdmin(p); err != nil {
		return nil, err
	}

	result := &RatingResult{}
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		rating, err := u.ratingRepo.GetByID(txCtx, ratingID)
		if err != nil {
			return notFoundAs(err, "Rating not found")
		}
		// profile before rating, the same order Rate locks in
		lockCtx := u.uow.WithLock(txCtx)
		if _, err := u.sellerRepo.GetByID(lockCtx, rating.SellerID); err != nil {
			return notFoundAs(err, "Seller not found")
		}
		if rating, err = u.ratingRepo.GetByID(lockCtx, ratingID); err != nil {
			return notFoundAs(err, "Rating not found")
		}
		if err := u.ratingRepo.Delete(txCtx, rating.ID); err != nil {
			return notFoundAs(err, "Rating not found")
		}
		agg, err := u.sellerRepo.RecomputeAggregate(txCtx, rating.SellerID)
		if err != nil {
			return notFoundAs(err, "Seller not found")
		}
		result.AverageRating = agg.Average
		result.TotalRatings = agg.Count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListForSeller lists a seller's ratings, newest first
func (u *RatingUsecase) ListForSeller(ctx context.Context, sellerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.SellerRating, int64, error) {
	if _, err := u.sellerRepo.GetByID(ctx, sellerID); err != nil {
		return nil, 0, notFoundAs(err, "Seller not found")
	}
	return u.ratingRepo.ListBySeller(ctx, sellerID, pagination)
}
