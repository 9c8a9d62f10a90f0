package handlers

import (
	"context"
	"net/http"
	"testing"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reservationServiceStub struct {
	items  map[uuid.UUID]*entities.Reservation
	status entities.ReservationStatus
}

func (s *reservationServiceStub) Create(_ context.Context, p authz.Principal, input *entities.CreateReservationInput) (*entities.Reservation, error) {
	res := &entities.Reservation{ID: uuid.New(), BookID: input.BookID, UserID: p.UserID, Status: entities.ReservationStatusPending}
	s.items[res.ID] = res
	return res, nil
}

func (s *reservationServiceStub) move(id uuid.UUID, next entities.ReservationStatus) (*entities.Reservation, error) {
	res, ok := s.items[id]
	if !ok {
		return nil, domainerrors.NotFound("Reservation not found")
	}
	if !res.Status.CanTransitionTo(next) {
		return nil, domainerrors.Conflict("Cannot move a reservation that is " + string(res.Status))
	}
	res.Status = next
	return res, nil
}

func (s *reservationServiceStub) Cancel(_ context.Context, _ authz.Principal, id uuid.UUID) (*entities.Reservation, error) {
	return s.move(id, entities.ReservationStatusCancelled)
}

func (s *reservationServiceStub) Confirm(_ context.Context, _ authz.Principal, id uuid.UUID) (*entities.Reservation, error) {
	return s.move(id, entities.ReservationStatusConfirmed)
}

func (s *reservationServiceStub) Complete(_ context.Context, _ authz.Principal, id uuid.UUID) (*entities.Reservation, error) {
	return s.move(id, entities.ReservationStatusCompleted)
}

func (s *reservationServiceStub) ListMine(_ context.Context, _ authz.Principal, _ utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	return []*entities.Reservation{}, 0, nil
}

func (s *reservationServiceStub) ListForSeller(_ context.Context, _ authz.Principal, status entities.ReservationStatus, _ utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	s.status = status
	return []*entities.Reservation{}, 0, nil
}

func (s *reservationServiceStub) ListAll(_ context.Context, _ authz.Principal, status entities.ReservationStatus, _ utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	s.status = status
	return []*entities.Reservation{}, 0, nil
}

func reservationRouter(svc *reservationServiceStub) *gin.Engine {
	h := NewReservationHandler(svc)
	r := newRouter()
	r.Use(as(reader()))
	r.POST("/reservations", h.Create)
	r.GET("/reservations", h.ListMine)
	r.GET("/reservations/seller", h.ListForSeller)
	r.GET("/admin/reservations", h.ListAll)
	r.PATCH("/reservations/:id/cancel", h.Cancel)
	r.PATCH("/reservations/:id/confirm", h.Confirm)
	r.PATCH("/reservations/:id/complete", h.Complete)
	return r
}

func TestReservationHandler_Lifecycle(t *testing.T) {
	svc := &reservationServiceStub{items: map[uuid.UUID]*entities.Reservation{}}
	r := reservationRouter(svc)

	w := doJSON(r, http.MethodPost, "/reservations", gin.H{"bookId": uuid.New()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["reservation"].(map[string]interface{})["id"].(string)

	w = doJSON(r, http.MethodPatch, "/reservations/"+id+"/confirm", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPatch, "/reservations/"+id+"/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domainerrors.CodeConflict, decode(t, w)["code"])

	w = doJSON(r, http.MethodPatch, "/reservations/"+id+"/complete", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPatch, "/reservations/"+uuid.NewString()+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPatch, "/reservations/bad/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationHandler_CreateValidation(t *testing.T) {
	svc := &reservationServiceStub{items: map[uuid.UUID]*entities.Reservation{}}
	w := doJSON(reservationRouter(svc), http.MethodPost, "/reservations", `{"bookId":"x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.items)
}

func TestReservationHandler_Lists(t *testing.T) {
	svc := &reservationServiceStub{items: map[uuid.UUID]*entities.Reservation{}}
	r := reservationRouter(svc)

	w := doJSON(r, http.MethodGet, "/reservations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "reservations")

	w = doJSON(r, http.MethodGet, "/reservations/seller?status=pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.ReservationStatusPending, svc.status)

	w = doJSON(r, http.MethodGet, "/admin/reservations?status=COMPLETED", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.ReservationStatusCompleted, svc.status)
}
