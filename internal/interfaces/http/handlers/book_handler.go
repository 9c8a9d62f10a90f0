package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/interfaces/http/middleware"
	"bookmarket.backend/internal/interfaces/http/response"
	"bookmarket.backend/internal/usecases"
	"bookmarket.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type bookService interface {
	Create(ctx context.Context, p authz.Principal, input *entities.CreateBookInput) (*entities.Book, error)
	Update(ctx context.Context, p authz.Principal, id uuid.UUID, input *entities.UpdateBookInput) (*entities.Book, error)
	Get(ctx context.Context, p authz.Principal, id uuid.UUID) (*entities.Book, error)
	Search(ctx context.Context, filter entities.BookFilter, pagination utils.PaginationParams) ([]*entities.Book, int64, error)
	ListMine(ctx context.Context, p authz.Principal, pagination utils.PaginationParams) ([]*entities.Book, int64, error)
	ListAll(ctx context.Context, p authz.Principal, status entities.BookStatus, pagination utils.PaginationParams) ([]*entities.Book, int64, error)
	UpdateStatus(ctx context.Context, p authz.Principal, id uuid.UUID, status entities.BookStatus) (*entities.Book, error)
	UploadImage(ctx context.Context, p authz.Principal, id uuid.UUID, img usecases.BookImageUpload) (*entities.Book, error)
	Delete(ctx context.Context, p authz.Principal, id uuid.UUID) error
	BatchDelete(ctx context.Context, p authz.Principal, ids []uuid.UUID) (*usecases.BatchDeleteResult, error)
	MaxImageSize() int64
}

// BookHandler handles book listings
type BookHandler struct {
	bookUsecase bookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookUsecase bookService) *BookHandler {
	return &BookHandler{bookUsecase: bookUsecase}
}

// Create lists a new book for the caller's store
// POST /api/v1/books
func (h *BookHandler) Create(c *gin.Context) {
	var input entities.CreateBookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	book, err := h.bookUsecase.Create(c.Request.Context(), middleware.GetPrincipal(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"book": book})
}

// Search lists published books
// GET /api/v1/books?q=&condition=&sellerId=&page=&limit=
func (h *BookHandler) Search(c *gin.Context) {
	filter := entities.BookFilter{
		Query:     c.Query("q"),
		Condition: entities.BookCondition(strings.ToUpper(c.Query("condition"))),
	}
	if raw := c.Query("sellerId"); raw != "" {
		sellerID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, domainerrors.Validation("Invalid query", map[string]string{"sellerId": "must be a uuid"}))
			return
		}
		filter.SellerID = &sellerID
	}

	pagination := paginationFromQuery(c)
	books, total, err := h.bookUsecase.Search(c.Request.Context(), filter, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "books", books, total, pagination)
}

// ListMine lists the caller's own books in every status
// GET /api/v1/books/mine
func (h *BookHandler) ListMine(c *gin.Context) {
	pagination := paginationFromQuery(c)
	books, total, err := h.bookUsecase.ListMine(c.Request.Context(), middleware.GetPrincipal(c), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "books", books, total, pagination)
}

// ListAll lists books for moderation, optionally by status
// GET /api/v1/admin/books?status=
func (h *BookHandler) ListAll(c *gin.Context) {
	pagination := paginationFromQuery(c)
	status := entities.BookStatus(strings.ToUpper(c.Query("status")))
	books, total, err := h.bookUsecase.ListAll(c.Request.Context(), middleware.GetPrincipal(c), status, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "books", books, total, pagination)
}

// Get returns one book
// GET /api/v1/books/:id
func (h *BookHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	book, err := h.bookUsecase.Get(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"book": book})
}

// Update edits a listing
// PUT /api/v1/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.UpdateBookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	book, err := h.bookUsecase.Update(c.Request.Context(), middleware.GetPrincipal(c), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"book": book})
}

// UpdateStatus moderates a listing
// PATCH /api/v1/books/:id/status
func (h *BookHandler) UpdateStatus(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.UpdateBookStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	book, err := h.bookUsecase.UpdateStatus(c.Request.Context(), middleware.GetPrincipal(c), id, input.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"book": book})
}

// UploadImage stores a cover image sent as multipart field "image"
// POST /api/v1/books/:id/image
func (h *BookHandler) UploadImage(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	// leave room for the multipart envelope
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.bookUsecase.MaxImageSize()+1<<20)
	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, domainerrors.Validation("Image is too large", map[string]string{"image": "is too large"}))
			return
		}
		response.Error(c, domainerrors.Validation("Image is required", map[string]string{"image": "is required"}))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	book, err := h.bookUsecase.UploadImage(c.Request.Context(), middleware.GetPrincipal(c), id, usecases.BookImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"book": book})
}

// Delete removes a listing
// DELETE /api/v1/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.bookUsecase.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Book deleted"})
}

// BatchDelete removes the listed books the caller owns. Ids the caller does
// not own are skipped silently.
// POST /api/v1/books/batch-delete
func (h *BookHandler) BatchDelete(c *gin.Context) {
	var input entities.BatchDeleteBooksInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.bookUsecase.BatchDelete(c.Request.Context(), middleware.GetPrincipal(c), input.BookIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
