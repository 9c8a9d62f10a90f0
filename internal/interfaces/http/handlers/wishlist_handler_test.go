package handlers

import (
	"context"
	"net/http"
	"testing"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wishlistServiceStub struct {
	items   map[uuid.UUID]*entities.WishlistItem
	removed []uuid.UUID
}

func (s *wishlistServiceStub) List(_ context.Context, _ authz.Principal) ([]*entities.WishlistItem, error) {
	out := make([]*entities.WishlistItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out, nil
}

func (s *wishlistServiceStub) Add(_ context.Context, p authz.Principal, bookID uuid.UUID) (*entities.WishlistItem, bool, error) {
	if item, ok := s.items[bookID]; ok {
		return item, false, nil
	}
	item := &entities.WishlistItem{ID: uuid.New(), UserID: p.UserID, BookID: bookID}
	s.items[bookID] = item
	return item, true, nil
}

func (s *wishlistServiceStub) Remove(_ context.Context, p authz.Principal, ownerID, bookID uuid.UUID) error {
	s.removed = append(s.removed, ownerID)
	if _, ok := s.items[bookID]; !ok {
		return domainerrors.NotFound("Wishlist item not found")
	}
	delete(s.items, bookID)
	return nil
}

func TestWishlistHandler_AddIsIdempotent(t *testing.T) {
	svc := &wishlistServiceStub{items: map[uuid.UUID]*entities.WishlistItem{}}
	h := NewWishlistHandler(svc)
	r := newRouter()
	r.Use(as(reader()))
	r.POST("/wishlist", h.Add)
	r.GET("/wishlist", h.List)

	bookID := uuid.New()
	w := doJSON(r, http.MethodPost, "/wishlist", gin.H{"bookId": bookID})
	require.Equal(t, http.StatusCreated, w.Code)
	first := decode(t, w)["item"].(map[string]interface{})["id"]

	w = doJSON(r, http.MethodPost, "/wishlist", gin.H{"bookId": bookID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, decode(t, w)["item"].(map[string]interface{})["id"])

	w = doJSON(r, http.MethodGet, "/wishlist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	w = doJSON(r, http.MethodPost, "/wishlist", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWishlistHandler_RemoveUsesCaller(t *testing.T) {
	svc := &wishlistServiceStub{items: map[uuid.UUID]*entities.WishlistItem{}}
	h := NewWishlistHandler(svc)
	caller := reader()
	r := newRouter()
	r.Use(as(caller))
	r.DELETE("/wishlist/:bookId", h.Remove)

	bookID := uuid.New()
	svc.items[bookID] = &entities.WishlistItem{ID: uuid.New(), UserID: caller.UserID, BookID: bookID}

	w := doJSON(r, http.MethodDelete, "/wishlist/"+bookID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{caller.UserID}, svc.removed)

	w = doJSON(r, http.MethodDelete, "/wishlist/"+bookID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
