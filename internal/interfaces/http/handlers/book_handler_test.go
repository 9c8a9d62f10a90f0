package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/usecases"
	"bookmarket.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookServiceStub struct {
	books      map[uuid.UUID]*entities.Book
	filter     entities.BookFilter
	pagination utils.PaginationParams
	batchIDs   []uuid.UUID
	upload     []byte
	uploadType string
	maxSize    int64
	err        error
}

func newBookServiceStub() *bookServiceStub {
	return &bookServiceStub{books: map[uuid.UUID]*entities.Book{}, maxSize: 1 << 10}
}

func (s *bookServiceStub) Create(_ context.Context, p authz.Principal, input *entities.CreateBookInput) (*entities.Book, error) {
	if s.err != nil {
		return nil, s.err
	}
	b := &entities.Book{ID: uuid.New(), SellerID: *p.SellerID, Title: input.Title, Status: entities.BookStatusPendingApproval}
	s.books[b.ID] = b
	return b, nil
}

func (s *bookServiceStub) Update(_ context.Context, _ authz.Principal, id uuid.UUID, input *entities.UpdateBookInput) (*entities.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, domainerrors.NotFound("Book not found")
	}
	if input.Title != nil {
		b.Title = *input.Title
	}
	return b, nil
}

func (s *bookServiceStub) Get(_ context.Context, _ authz.Principal, id uuid.UUID) (*entities.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, domainerrors.NotFound("Book not found")
	}
	return b, nil
}

func (s *bookServiceStub) Search(_ context.Context, filter entities.BookFilter, pagination utils.PaginationParams) ([]*entities.Book, int64, error) {
	s.filter, s.pagination = filter, pagination
	return []*entities.Book{}, 0, s.err
}

func (s *bookServiceStub) ListMine(_ context.Context, _ authz.Principal, pagination utils.PaginationParams) ([]*entities.Book, int64, error) {
	s.pagination = pagination
	return []*entities.Book{}, 0, s.err
}

func (s *bookServiceStub) ListAll(_ context.Context, _ authz.Principal, status entities.BookStatus, _ utils.PaginationParams) ([]*entities.Book, int64, error) {
	s.filter.Status = status
	return []*entities.Book{}, 0, s.err
}

func (s *bookServiceStub) UpdateStatus(_ context.Context, _ authz.Principal, id uuid.UUID, status entities.BookStatus) (*entities.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, domainerrors.NotFound("Book not found")
	}
	b.Status = status
	return b, nil
}

func (s *bookServiceStub) UploadImage(_ context.Context, _ authz.Principal, id uuid.UUID, img usecases.BookImageUpload) (*entities.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, domainerrors.NotFound("Book not found")
	}
	s.upload, _ = io.ReadAll(img.Body)
	s.uploadType = img.ContentType
	b.ImageURL = "https://objects.test/" + img.Filename
	return b, nil
}

func (s *bookServiceStub) Delete(_ context.Context, _ authz.Principal, id uuid.UUID) error {
	if _, ok := s.books[id]; !ok {
		return domainerrors.NotFound("Book not found")
	}
	delete(s.books, id)
	return nil
}

func (s *bookServiceStub) BatchDelete(_ context.Context, _ authz.Principal, ids []uuid.UUID) (*usecases.BatchDeleteResult, error) {
	s.batchIDs = ids
	var n int64
	for _, id := range ids {
		if _, ok := s.books[id]; ok {
			delete(s.books, id)
			n++
		}
	}
	return &usecases.BatchDeleteResult{DeletedCount: n}, nil
}

func (s *bookServiceStub) MaxImageSize() int64 { return s.maxSize }

func (s *bookServiceStub) seed() *entities.Book {
	b := &entities.Book{ID: uuid.New(), Title: "Dune", Status: entities.BookStatusPublished}
	s.books[b.ID] = b
	return b
}

func bookRouter(svc *bookServiceStub) *gin.Engine {
	h := NewBookHandler(svc)
	r := newRouter()
	r.GET("/books", h.Search)
	r.GET("/books/mine", as(seller()), h.ListMine)
	r.POST("/books", as(seller()), h.Create)
	r.POST("/books/batch-delete", as(seller()), h.BatchDelete)
	r.GET("/books/:id", h.Get)
	r.PUT("/books/:id", as(seller()), h.Update)
	r.DELETE("/books/:id", as(seller()), h.Delete)
	r.PATCH("/books/:id/status", as(seller()), h.UpdateStatus)
	r.POST("/books/:id/image", as(seller()), h.UploadImage)
	r.GET("/admin/books", as(seller()), h.ListAll)
	return r
}

func TestBookHandler_Create(t *testing.T) {
	svc := newBookServiceStub()
	r := bookRouter(svc)

	w := doJSON(r, http.MethodPost, "/books", gin.H{"title": "Dune", "author": "Herbert", "condition": "USED", "price": 9.5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, svc.books, 1)

	w = doJSON(r, http.MethodPost, "/books", gin.H{"title": "Dune", "author": "Herbert", "condition": "MINT", "price": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].(map[string]interface{})
	assert.Contains(t, details, "condition")
	assert.Contains(t, details, "price")
}

func TestBookHandler_Search(t *testing.T) {
	svc := newBookServiceStub()
	r := bookRouter(svc)
	sellerID := uuid.New()

	w := doJSON(r, http.MethodGet, "/books?q=dune&condition=used&sellerId="+sellerID.String()+"&page=2&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dune", svc.filter.Query)
	assert.Equal(t, entities.BookConditionUsed, svc.filter.Condition)
	assert.Equal(t, sellerID, *svc.filter.SellerID)
	assert.Equal(t, utils.PaginationParams{Page: 2, Limit: 5}, svc.pagination)
	assert.Contains(t, decode(t, w), "pagination")

	w = doJSON(r, http.MethodGet, "/books?sellerId=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookHandler_GetUpdateDelete(t *testing.T) {
	svc := newBookServiceStub()
	r := bookRouter(svc)
	b := svc.seed()

	w := doJSON(r, http.MethodGet, "/books/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/books/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPut, "/books/"+b.ID.String(), gin.H{"title": "Dune Messiah"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dune Messiah", b.Title)

	w = doJSON(r, http.MethodPatch, "/books/"+b.ID.String()+"/status", gin.H{"status": "UNPUBLISHED"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.BookStatusUnpublished, b.Status)

	w = doJSON(r, http.MethodPatch, "/books/"+b.ID.String()+"/status", gin.H{"status": "GONE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodDelete, "/books/"+b.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, svc.books)
}

func TestBookHandler_BatchDelete(t *testing.T) {
	svc := newBookServiceStub()
	r := bookRouter(svc)
	owned := svc.seed()

	w := doJSON(r, http.MethodPost, "/books/batch-delete", gin.H{"bookIds": []uuid.UUID{owned.ID, uuid.New()}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["deletedCount"])

	w = doJSON(r, http.MethodPost, "/books/batch-delete", gin.H{"bookIds": []uuid.UUID{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookHandler_ListMineAndAll(t *testing.T) {
	svc := newBookServiceStub()
	r := bookRouter(svc)

	w := doJSON(r, http.MethodGet, "/books/mine", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, utils.DefaultPageSize, svc.pagination.Limit)

	w = doJSON(r, http.MethodGet, "/admin/books?status=pending_approval", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.BookStatusPendingApproval, svc.filter.Status)
}

func multipartImage(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestBookHandler_UploadImage(t *testing.T) {
	svc := newBookServiceStub()
	r := bookRouter(svc)
	b := svc.seed()

	body, ct := multipartImage(t, "image", "cover.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/books/"+b.ID.String()+"/image", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []byte("png-bytes"), svc.upload)
	assert.Equal(t, "image/png", svc.uploadType)
	assert.Contains(t, w.Body.String(), "https://objects.test/cover.png")
}

func TestBookHandler_UploadImageMissingField(t *testing.T) {
	svc := newBookServiceStub()
	r := bookRouter(svc)
	b := svc.seed()

	body, ct := multipartImage(t, "file", "cover.png", "image/png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/books/"+b.ID.String()+"/image", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"image"`)
}

func TestBookHandler_UploadImageTooLarge(t *testing.T) {
	svc := newBookServiceStub()
	svc.maxSize = 16
	r := bookRouter(svc)
	b := svc.seed()

	body, ct := multipartImage(t, "image", "cover.png", "image/png", bytes.Repeat([]byte("x"), 2<<20))
	req := httptest.NewRequest(http.MethodPost, "/books/"+b.ID.String()+"/image", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.upload)
}
