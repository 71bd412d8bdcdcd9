package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookserver/bookserver/internal/handler/dto"
	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/service"
)

// BookCatalog is the catalog surface the book handlers need.
type BookCatalog interface {
	CreateBook(ctx context.Context, input service.CreateBookInput) (*model.Book, error)
	GetBook(ctx context.Context, id string) (*model.Book, error)
	ListBooks(ctx context.Context, input service.ListBooksInput) (*service.ListBooksResult, error)
	UpdateBook(ctx context.Context, input service.UpdateBookInput) (*model.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

// BookHandler handles book catalog endpoints.
type BookHandler struct {
	books  BookCatalog
	logger *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(books BookCatalog, logger *slog.Logger) *BookHandler {
	return &BookHandler{books: books, logger: logger}
}

// Create adds a book to the catalog.
// POST /api/v1/books
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	book, err := h.books.CreateBook(r.Context(), service.CreateBookInput{
		Title:         req.Title,
		Authors:       req.Authors,
		ISBN:          req.ISBN,
		Description:   req.Description,
		CourseName:    req.CourseName,
		PublishedYear: req.PublishedYear,
		PageCount:     req.PageCount,
		CoverURL:      req.CoverURL,
	})
	if err != nil {
		h.handleBookError(w, err)
		return
	}

	h.logger.Info("book created",
		slog.String("book_id", book.ID),
		slog.String("course_name", book.CourseName),
	)

	writeJSON(w, http.StatusCreated, dto.ToBookResponse(book))
}

// Get returns a single book.
// GET /api/v1/books/{id}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	book, err := h.books.GetBook(r.Context(), id)
	if err != nil {
		h.handleBookError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookResponse(book))
}

// List returns a page of books matching the query filters.
// GET /api/v1/books
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	result, err := h.books.ListBooks(r.Context(), service.ListBooksInput{
		CourseName: q.Get("course_name"),
		Author:     q.Get("author"),
		Status:     q.Get("status"),
		Cursor:     q.Get("cursor"),
		Limit:      limit,
	})
	if err != nil {
		h.handleBookError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookListResponse(result.Books, result.NextCursor, result.HasMore))
}

// Update applies a partial update to a book.
// PATCH /api/v1/books/{id}
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	book, err := h.books.UpdateBook(r.Context(), service.UpdateBookInput{
		ID:            id,
		Title:         req.Title,
		Authors:       req.Authors,
		ISBN:          req.ISBN,
		Description:   req.Description,
		PublishedYear: req.PublishedYear,
		PageCount:     req.PageCount,
		CoverURL:      req.CoverURL,
		Archived:      req.Archived,
	})
	if err != nil {
		h.handleBookError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookResponse(book))
}

// Delete soft-deletes a book.
// DELETE /api/v1/books/{id}
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.books.DeleteBook(r.Context(), id); err != nil {
		h.handleBookError(w, err)
		return
	}

	h.logger.Info("book deleted", slog.String("book_id", id))

	w.WriteHeader(http.StatusNoContent)
}

func (h *BookHandler) handleBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
	case errors.Is(err, service.ErrISBNExists):
		writeError(w, http.StatusConflict, "ISBN_EXISTS", "A book with this ISBN already exists")
	case errors.Is(err, service.ErrInvalidTitle):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_TITLE", "Title is required and must be at most 512 characters")
	case errors.Is(err, service.ErrInvalidAuthors):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_AUTHORS", "At least one author is required")
	case errors.Is(err, service.ErrInvalidISBN):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_ISBN", "Invalid ISBN format")
	case errors.Is(err, service.ErrInvalidYear):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_YEAR", "Published year is out of range")
	case errors.Is(err, service.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, "INVALID_CURSOR", "Invalid pagination cursor")
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be active or archived")
	case errors.Is(err, service.ErrCourseNotFound):
		writeError(w, http.StatusUnprocessableEntity, "COURSE_NOT_FOUND", "Course does not exist")
	default:
		h.logger.Error("book handler error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
