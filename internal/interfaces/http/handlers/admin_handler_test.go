package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/usecases"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminServiceStub struct {
	search  string
	deleted uuid.UUID
	err     error
}

func (s *adminServiceStub) ListUsers(_ context.Context, _ authz.Principal, search string, _ utils.PaginationParams) ([]*entities.User, int64, error) {
	s.search = search
	return []*entities.User{{ID: uuid.New(), Email: "a@b.test"}}, 1, s.err
}

func (s *adminServiceStub) DeleteUser(_ context.Context, _ authz.Principal, userID uuid.UUID) error {
	s.deleted = userID
	return s.err
}

func (s *adminServiceStub) Stats(_ context.Context, _ authz.Principal) (*usecases.DashboardStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &usecases.DashboardStats{
		Users: 3,
		Books: map[entities.BookStatus]int64{entities.BookStatusPublished: 2},
	}, nil
}

func TestAdminHandler(t *testing.T) {
	svc := &adminServiceStub{}
	h := NewAdminHandler(svc)
	r := newRouter()
	r.Use(as(authz.Principal{UserID: uuid.New(), Role: entities.UserRoleAdmin}))
	r.GET("/admin/users", h.ListUsers)
	r.DELETE("/admin/users/:id", h.DeleteUser)
	r.GET("/admin/stats", h.GetStats)

	w := doJSON(r, http.MethodGet, "/admin/users?search=%20ann%20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ann", svc.search)
	assert.Len(t, decode(t, w)["users"], 1)

	id := uuid.New()
	w = doJSON(r, http.MethodDelete, "/admin/users/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, svc.deleted)

	w = doJSON(r, http.MethodGet, "/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["books"].(map[string]interface{})["PUBLISHED"])
}

func TestAdminHandler_Errors(t *testing.T) {
	svc := &adminServiceStub{err: domainerrors.Forbidden("Cannot delete the supreme admin")}
	h := NewAdminHandler(svc)
	r := newRouter()
	r.DELETE("/admin/users/:id", h.DeleteUser)
	r.GET("/admin/stats", h.GetStats)

	w := doJSON(r, http.MethodDelete, "/admin/users/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	svc.err = errors.New("db gone")
	w = doJSON(r, http.MethodGet, "/admin/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db gone")
}
