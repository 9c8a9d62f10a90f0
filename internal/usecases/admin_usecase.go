package usecases

import (
	"context"
	"errors"
	"sort"
	"strings"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/domain/repositories"
	"bookmarket.backend/pkg/logger"
	"bookmarket.backend/pkg/storage"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DashboardStats summarises marketplace activity for admins
type DashboardStats struct {
	Users        int64                                `json:"users"`
	Books        map[entities.BookStatus]int64        `json:"books"`
	Reservations map[entities.ReservationStatus]int64 `json:"reservations"`
}

// AdminUsecase handles user moderation and the admin dashboard
type AdminUsecase struct {
	uow             repositories.UnitOfWork
	userRepo        repositories.UserRepository
	sellerRepo      repositories.SellerRepository
	ratingRepo      repositories.RatingRepository
	bookRepo        repositories.BookRepository
	reservationRepo repositories.ReservationRepository
	gate            *authz.Gate
	cleaner         *AssetCleaner
}

// NewAdminUsecase creates a new admin usecase
func NewAdminUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	sellerRepo repositories.SellerRepository,
	ratingRepo repositories.RatingRepository,
	bookRepo repositories.BookRepository,
	reservationRepo repositories.ReservationRepository,
	gate *authz.Gate,
	store storage.ObjectStore,
) *AdminUsecase {
	return &AdminUsecase{
		uow:             uow,
		userRepo:        userRepo,
		sellerRepo:      sellerRepo,
		ratingRepo:      ratingRepo,
		bookRepo:        bookRepo,
		reservationRepo: reservationRepo,
		gate:            gate,
		cleaner:         NewAssetCleaner(store),
	}
}

// ListUsers lists accounts, optionally filtered by name or email
func (u *AdminUsecase) ListUsers(ctx context.Context, p authz.Principal, search string, pagination utils.PaginationParams) ([]*entities.User, int64, error) {
	if err := u.gate.RequireAdmin(p); err != nil {
		return nil, 0, err
	}
	return u.userRepo.List(ctx, strings.TrimSpace(search), pagination)
}

// DeleteUser removes an account and everything it owns. Sellers the user had
// rated get their aggregates recomputed in the same transaction; book images
// are removed after commit.
func (u *AdminUsecase) DeleteUser(ctx context.Context, p authz.Principal, userID uuid.UUID) error {
	if err := u.gate.RequireAdmin(p); err != nil {
		return err
	}
	if p.UserID == userID {
		return domainerrors.BadRequest("You cannot delete your own account")
	}

	var imageKeys []string
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		user, err := u.userRepo.GetByID(u.uow.WithLock(txCtx), userID)
		if err != nil {
			return notFoundAs(err, "User not found")
		}
		if u.gate.IsSupremeAdmin(authz.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}) {
			return domainerrors.Forbidden("The supreme admin account cannot be deleted")
		}

		rated, err := u.ratingRepo.ListSellerIDsRatedBy(txCtx, userID)
		if err != nil {
			return err
		}
		// lock in a stable order so two deletions cannot deadlock on profiles
		sort.Slice(rated, func(i, j int) bool { return rated[i].String() < rated[j].String() })
		lockCtx := u.uow.WithLock(txCtx)
		for _, sellerID := range rated {
			if _, err := u.sellerRepo.GetByID(lockCtx, sellerID); err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
				return err
			}
		}

		profile, err := u.sellerRepo.GetByUserID(txCtx, userID)
		switch {
		case err == nil:
			imageKeys, err = u.bookRepo.ListImageKeysBySeller(txCtx, profile.ID)
			if err != nil {
				return err
			}
		case !errors.Is(err, domainerrors.ErrNotFound):
			return err
		}

		if err := u.userRepo.Delete(txCtx, userID); err != nil {
			return notFoundAs(err, "User not found")
		}

		for _, sellerID := range rated {
			if _, err := u.sellerRepo.RecomputeAggregate(txCtx, sellerID); err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "User deleted",
		zap.String("user_id", userID.String()),
		zap.String("by", p.UserID.String()),
		zap.Int("images", len(imageKeys)),
	)
	u.cleaner.Cleanup(ctx, imageKeys)
	return nil
}

// Stats counts users, books and reservations by status
func (u *AdminUsecase) Stats(ctx context.Context, p authz.Principal) (*DashboardStats, error) {
	if err := u.gate.RequireAdmin(p); err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Books:        make(map[entities.BookStatus]int64),
		Reservations: make(map[entities.ReservationStatus]int64),
	}
	var err error
	if stats.Users, err = u.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	for _, status := range []entities.BookStatus{
		entities.BookStatusPublished,
		entities.BookStatusUnpublished,
		entities.BookStatusPendingApproval,
	} {
		if stats.Books[status], err = u.bookRepo.Count(ctx, status); err != nil {
			return nil, err
		}
	}
	for _, status := range []entities.ReservationStatus{
		entities.ReservationStatusPending,
		entities.ReservationStatusConfirmed,
		entities.ReservationStatusCompleted,
		entities.ReservationStatusCancelled,
	} {
		if stats.Reservations[status], err = u.reservationRepo.Count(ctx, status); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
