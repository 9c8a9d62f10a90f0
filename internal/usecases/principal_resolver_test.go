package usecases_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/usecases"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPrincipalResolver_Resolve(t *testing.T) {
	users := new(MockUserRepository)
	sellers := new(MockSellerRepository)
	r := usecases.NewPrincipalResolver(users, sellers)

	buyerUser := &entities.User{ID: uuid.New(), Email: "b@mail.com", Role: entities.UserRoleUser}
	users.On("GetByID", mock.Anything, buyerUser.ID).Return(buyerUser, nil)
	p, err := r.Resolve(context.Background(), buyerUser.ID)
	require.NoError(t, err)
	assert.Nil(t, p.SellerID)
	sellers.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)

	sellerUser := &entities.User{ID: uuid.New(), Email: "s@mail.com", Role: entities.UserRoleSeller}
	profileID := uuid.New()
	users.On("GetByID", mock.Anything, sellerUser.ID).Return(sellerUser, nil)
	sellers.On("GetByUserID", mock.Anything, sellerUser.ID).Return(&entities.SellerProfile{ID: profileID}, nil)
	p, err = r.Resolve(context.Background(), sellerUser.ID)
	require.NoError(t, err)
	require.NotNil(t, p.SellerID)
	assert.Equal(t, profileID, *p.SellerID)
	assert.Equal(t, entities.UserRoleSeller, p.Role)

	adminUser := &entities.User{ID: uuid.New(), Role: entities.UserRoleAdmin}
	users.On("GetByID", mock.Anything, adminUser.ID).Return(adminUser, nil)
	sellers.On("GetByUserID", mock.Anything, adminUser.ID).Return(nil, domainerrors.ErrNotFound)
	p, err = r.Resolve(context.Background(), adminUser.ID)
	require.NoError(t, err)
	assert.Nil(t, p.SellerID)
}

func TestPrincipalResolver_Resolve_Errors(t *testing.T) {
	users := new(MockUserRepository)
	r := usecases.NewPrincipalResolver(users, new(MockSellerRepository))

	gone := uuid.New()
	users.On("GetByID", mock.Anything, gone).Return(nil, domainerrors.ErrNotFound)
	_, err := r.Resolve(context.Background(), gone)
	requireAppError(t, err, http.StatusUnauthorized, domainerrors.CodeUnauthorized)

	broken := uuid.New()
	boom := errors.New("db down")
	users.On("GetByID", mock.Anything, broken).Return(nil, boom)
	_, err = r.Resolve(context.Background(), broken)
	assert.ErrorIs(t, err, boom)
}
