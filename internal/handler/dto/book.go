package dto

import (
	"time"

	"github.com/bookserver/bookserver/internal/model"
)

// CreateBookRequest represents the request body for creating a book.
type CreateBookRequest struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	ISBN          string   `json:"isbn,omitempty"`
	Description   string   `json:"description,omitempty"`
	CourseName    string   `json:"course_name"`
	PublishedYear int      `json:"published_year,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
}

// UpdateBookRequest represents the request body for a partial book update.
type UpdateBookRequest struct {
	Title         *string  `json:"title,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	ISBN          *string  `json:"isbn,omitempty"`
	Description   *string  `json:"description,omitempty"`
	PublishedYear *int     `json:"published_year,omitempty"`
	PageCount     *int     `json:"page_count,omitempty"`
	CoverURL      *string  `json:"cover_url,omitempty"`
	Archived      *bool    `json:"archived,omitempty"`
}

// BookResponse represents a book in API responses.
type BookResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Authors       []string  `json:"authors"`
	ISBN          string    `json:"isbn,omitempty"`
	Description   string    `json:"description,omitempty"`
	CourseName    string    `json:"course_name"`
	PublishedYear int       `json:"published_year,omitempty"`
	PageCount     int       `json:"page_count,omitempty"`
	CoverURL      string    `json:"cover_url,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BookListResponse represents a paginated list of books.
type BookListResponse struct {
	Data       []BookResponse `json:"data"`
	Pagination *Pagination    `json:"pagination"`
}

// ToBookResponse converts a Book model to BookResponse DTO.
func ToBookResponse(book *model.Book) *BookResponse {
	return &BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Authors:       book.Authors,
		ISBN:          book.ISBN,
		Description:   book.Description,
		CourseName:    book.CourseName,
		PublishedYear: book.PublishedYear,
		PageCount:     book.PageCount,
		CoverURL:      book.CoverURL,
		Status:        string(book.Status()),
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
	}
}

// ToBookListResponse converts a slice of Book models to BookListResponse.
func ToBookListResponse(books []*model.Book, nextCursor string, hasMore bool) *BookListResponse {
	responses := make([]BookResponse, len(books))
	for i, book := range books {
		responses[i] = *ToBookResponse(book)
	}
	return &BookListResponse{
		Data: responses,
		Pagination: &Pagination{
			NextCursor: nextCursor,
			HasMore:    hasMore,
		},
	}
}
