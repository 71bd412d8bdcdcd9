package model

import "time"

// BookStatus represents the computed status of a book.
type BookStatus string

const (
	BookStatusActive   BookStatus = "active"
	BookStatusArchived BookStatus = "archived"
	BookStatusDeleted  BookStatus = "deleted"
)

// Book represents a served course text.
type Book struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	ISBN          string     `json:"isbn,omitempty"`
	Description   string     `json:"description,omitempty"`
	CourseName    string     `json:"course_name"`
	PublishedYear int        `json:"published_year,omitempty"`
	PageCount     int        `json:"page_count,omitempty"`
	CoverURL      string     `json:"cover_url,omitempty"`
	Archived      bool       `json:"archived"`
	DeletedAt     *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Status computes the current status of the book.
func (b *Book) Status() BookStatus {
	if b.DeletedAt != nil {
		return BookStatusDeleted
	}
	if b.Archived {
		return BookStatusArchived
	}
	return BookStatusActive
}

// IsAvailable returns true if the book can be served to readers.
func (b *Book) IsAvailable() bool {
	return b.Status() == BookStatusActive
}
