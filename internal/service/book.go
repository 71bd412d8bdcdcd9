// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/repository"
)

// Service errors.
var (
	ErrBookNotFound   = errors.New("book not found")
	ErrISBNExists     = errors.New("ISBN already exists")
	ErrInvalidTitle   = errors.New("title is required")
	ErrInvalidAuthors = errors.New("at least one author is required")
	ErrInvalidISBN    = errors.New("invalid ISBN format")
	ErrInvalidYear    = errors.New("published year is out of range")
	ErrInvalidCursor  = errors.New("invalid pagination cursor")
	ErrInvalidStatus  = errors.New("invalid status filter")
	ErrCourseNotFound = errors.New("course not found")
)

// isbnRegex accepts ISBN-10 and ISBN-13 forms, with or without hyphens.
var isbnRegex = regexp.MustCompile(`^(?:\d[- ]?){9}[\dXx]$|^(?:\d[- ]?){13}$`)

const (
	maxTitleLength = 512
	defaultLimit   = 20
	maxLimit       = 100
)

// BookService handles book business logic.
type BookService struct {
	repo *repository.Repository
}

// NewBookService creates a new BookService.
func NewBookService(repo *repository.Repository) *BookService {
	return &BookService{repo: repo}
}

// CreateBookInput defines input for creating a book.
type CreateBookInput struct {
	Title         string
	Authors       []string
	ISBN          string
	Description   string
	CourseName    string
	PublishedYear int
	PageCount     int
	CoverURL      string
}

// CreateBook validates the input and inserts a new book.
func (s *BookService) CreateBook(ctx context.Context, input CreateBookInput) (*model.Book, error) {
	if err := validateBookFields(input.Title, input.Authors, input.ISBN, input.PublishedYear); err != nil {
		return nil, err
	}

	// The course must exist before a book can be attached to it.
	if _, err := s.repo.GetCourseByName(ctx, input.CourseName); err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("check course: %w", err)
	}

	now := time.Now()
	book := &model.Book{
		ID:            ulid.Make().String(),
		Title:         strings.TrimSpace(input.Title),
		Authors:       normalizeAuthors(input.Authors),
		ISBN:          normalizeISBN(input.ISBN),
		Description:   input.Description,
		CourseName:    input.CourseName,
		PublishedYear: input.PublishedYear,
		PageCount:     input.PageCount,
		CoverURL:      input.CoverURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateBook(ctx, book); err != nil {
		if errors.Is(err, repository.ErrISBNExists) {
			return nil, ErrISBNExists
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	return book, nil
}

// GetBook retrieves a book by ID.
func (s *BookService) GetBook(ctx context.Context, id string) (*model.Book, error) {
	book, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooksInput defines input for listing books.
type ListBooksInput struct {
	CourseName    string
	Author        string
	Status        string
	Cursor        string
	Limit         int
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ListBooksResult is a page of books.
type ListBooksResult struct {
	Books      []*model.Book
	NextCursor string
	HasMore    bool
}

// ListBooks retrieves a paginated, filtered list of books.
func (s *BookService) ListBooks(ctx context.Context, input ListBooksInput) (*ListBooksResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	status, err := parseStatusFilter(input.Status)
	if err != nil {
		return nil, err
	}

	filter := repository.BookFilter{
		CourseName:    input.CourseName,
		Author:        input.Author,
		Status:        status,
		CreatedAfter:  input.CreatedAfter,
		CreatedBefore: input.CreatedBefore,
	}

	books, nextCursor, err := s.repo.ListBooks(ctx, filter, input.Cursor, limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, ErrInvalidCursor
		}
		return nil, fmt.Errorf("list books: %w", err)
	}

	return &ListBooksResult{
		Books:      books,
		NextCursor: nextCursor,
		HasMore:    nextCursor != "",
	}, nil
}

// UpdateBookInput defines input for a partial book update.
// Nil fields are left unchanged.
type UpdateBookInput struct {
	ID            string
	Title         *string
	Authors       []string
	ISBN          *string
	Description   *string
	PublishedYear *int
	PageCount     *int
	CoverURL      *string
	Archived      *bool
}

// UpdateBook applies a partial update to a book.
func (s *BookService) UpdateBook(ctx context.Context, input UpdateBookInput) (*model.Book, error) {
	book, err := s.repo.GetBookByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	if input.Title != nil {
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Authors != nil {
		book.Authors = normalizeAuthors(input.Authors)
	}
	if input.ISBN != nil {
		book.ISBN = normalizeISBN(*input.ISBN)
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.PublishedYear != nil {
		book.PublishedYear = *input.PublishedYear
	}
	if input.PageCount != nil {
		book.PageCount = *input.PageCount
	}
	if input.CoverURL != nil {
		book.CoverURL = *input.CoverURL
	}
	if input.Archived != nil {
		book.Archived = *input.Archived
	}

	if err := validateBookFields(book.Title, book.Authors, book.ISBN, book.PublishedYear); err != nil {
		return nil, err
	}

	book.UpdatedAt = time.Now()

	if err := s.repo.UpdateBook(ctx, book); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return nil, ErrBookNotFound
		case errors.Is(err, repository.ErrISBNExists):
			return nil, ErrISBNExists
		default:
			return nil, fmt.Errorf("update book: %w", err)
		}
	}

	return book, nil
}

// DeleteBook soft-deletes a book.
func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// parseStatusFilter maps the query value onto a repository status filter.
// Deleted books are never listable, so "deleted" is rejected rather than
// silently returning empty pages.
func parseStatusFilter(status string) (model.BookStatus, error) {
	switch status {
	case "":
		return "", nil
	case string(model.BookStatusActive):
		return model.BookStatusActive, nil
	case string(model.BookStatusArchived):
		return model.BookStatusArchived, nil
	default:
		return "", ErrInvalidStatus
	}
}

// validateBookFields checks the invariant fields shared by create and update.
func validateBookFields(title string, authors []string, isbn string, year int) error {
	if strings.TrimSpace(title) == "" || len(title) > maxTitleLength {
		return ErrInvalidTitle
	}
	if len(normalizeAuthors(authors)) == 0 {
		return ErrInvalidAuthors
	}
	if isbn != "" && !isbnRegex.MatchString(isbn) {
		return ErrInvalidISBN
	}
	if year != 0 && (year < 1450 || year > time.Now().Year()+1) {
		return ErrInvalidYear
	}
	return nil
}

// normalizeAuthors trims entries and drops empties.
func normalizeAuthors(authors []string) []string {
	result := make([]string, 0, len(authors))
	for _, a := range authors {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// normalizeISBN strips separators so lookups are canonical.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	return strings.ToUpper(isbn)
}
