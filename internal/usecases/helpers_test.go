package usecases_test

import (
	"errors"
	"testing"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const supremeEmail = "root@bookmarket.test"

func testGate() *authz.Gate {
	return authz.NewGate(supremeEmail)
}

func buyer() authz.Principal {
	return authz.Principal{UserID: uuid.New(), Email: "buyer@mail.com", Role: entities.UserRoleUser}
}

func sellerPrincipal() authz.Principal {
	sellerID := uuid.New()
	return authz.Principal{UserID: uuid.New(), Email: "seller@mail.com", Role: entities.UserRoleSeller, SellerID: &sellerID}
}

func admin() authz.Principal {
	return authz.Principal{UserID: uuid.New(), Email: "admin@mail.com", Role: entities.UserRoleAdmin}
}

func requireAppError(t *testing.T, err error, status int, code string) *domainerrors.AppError {
	t.Helper()
	var appErr *domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, status, appErr.Status)
	require.Equal(t, code, appErr.Code)
	return appErr
}
