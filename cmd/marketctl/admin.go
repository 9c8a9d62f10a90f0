package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/infrastructure/repositories"
	"bookmarket.backend/pkg/crypto"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/volatiletech/null/v8"
)

type adminUserStore interface {
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
	Update(ctx context.Context, user *entities.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, email string, at time.Time) error
}

type adminInput struct {
	Email    string
	Name     string
	Password string
}

// ensureAdmin creates a verified ADMIN account, or promotes and re-keys the
// existing account with that email. It reports whether a user was created.
func ensureAdmin(ctx context.Context, users adminUserStore, in adminInput, now time.Time) (*entities.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, false, fmt.Errorf("a valid --email is required")
	}
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, false, err
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = "Administrator"
		}
		user := &entities.User{
			Email:           email,
			Name:            name,
			PasswordHash:    hash,
			Role:            entities.UserRoleAdmin,
			EmailVerifiedAt: null.TimeFrom(now),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := users.Create(ctx, user); err != nil {
			return nil, false, fmt.Errorf("create user: %w", err)
		}
		return user, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}

	existing.Role = entities.UserRoleAdmin
	if name := strings.TrimSpace(in.Name); name != "" {
		existing.Name = name
	}
	if err := users.Update(ctx, existing); err != nil {
		return nil, false, fmt.Errorf("promote user: %w", err)
	}
	if err := users.UpdatePassword(ctx, existing.ID, hash); err != nil {
		return nil, false, fmt.Errorf("set password: %w", err)
	}
	if !existing.EmailVerifiedAt.Valid {
		if err := users.MarkEmailVerified(ctx, email, now); err != nil {
			return nil, false, fmt.Errorf("verify email: %w", err)
		}
		existing.EmailVerifiedAt = null.TimeFrom(now)
	}
	return existing, false, nil
}

func newCreateAdminCmd(open dbOpener) *cobra.Command {
	var in adminInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create or promote an administrator account",
		Long: `Create a verified ADMIN account, or promote the account that already
uses the email. The password is always replaced.

Examples:
  marketctl create-admin --email ops@bookmarket.io --password 's3cret!'
  marketctl create-admin --email ops@bookmarket.io --name "Ops" --password 's3cret!'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := open()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer closeDB()

			user, created, err := ensureAdmin(cmd.Context(), repositories.NewUserRepository(db), in, time.Now().UTC())
			if err != nil {
				return err
			}
			verb := "Promoted"
			if created {
				verb = "Created"
			}
			cmd.Printf("%s admin %s (%s)\n", verb, user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "Administrator email (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password, at least 6 characters (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
