package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/bookserver/bookserver/internal/model"
)

// Common errors for book repository operations.
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrISBNExists    = errors.New("ISBN already exists")
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)

// BookFilter defines filters for listing books.
type BookFilter struct {
	CourseName    string
	Author        string
	Status        model.BookStatus
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// PaginationCursor represents decoded cursor for pagination.
type PaginationCursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBook inserts a new book into the database.
func (r *Repository) CreateBook(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (id, title, authors, isbn, description, course_name, published_year, page_count, cover_url, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		pq.Array(book.Authors),
		nullableString(book.ISBN),
		book.Description,
		book.CourseName,
		nullableInt(book.PublishedYear),
		nullableInt(book.PageCount),
		book.CoverURL,
		book.Archived,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrISBNExists
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(ctx context.Context, id string) (*model.Book, error) {
	query := `
		SELECT id, title, authors, isbn, description, course_name, published_year, page_count, cover_url, archived, deleted_at, created_at, updated_at
		FROM books
		WHERE id = $1 AND deleted_at IS NULL
	`

	book, err := r.scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	return book, nil
}

// ListBooks retrieves a paginated list of books.
func (r *Repository) ListBooks(ctx context.Context, filter BookFilter, cursor string, limit int) ([]*model.Book, string, error) {
	// Decode cursor if provided
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	// Build query with filters
	query := `
		SELECT id, title, authors, isbn, description, course_name, published_year, page_count, cover_url, archived, deleted_at, created_at, updated_at
		FROM books
		WHERE deleted_at IS NULL
	`
	args := []any{}
	argIndex := 1

	if filter.CourseName != "" {
		query += fmt.Sprintf(" AND course_name = $%d", argIndex)
		args = append(args, filter.CourseName)
		argIndex++
	}

	if filter.Author != "" {
		query += fmt.Sprintf(" AND $%d = ANY(authors)", argIndex)
		args = append(args, filter.Author)
		argIndex++
	}

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	if filter.CreatedAfter != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *filter.CreatedAfter)
		argIndex++
	}

	if filter.CreatedBefore != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *filter.CreatedBefore)
		argIndex++
	}

	// Status maps onto the archived column here. Filtering must happen
	// before LIMIT, or pages come back short with a dangling cursor.
	switch filter.Status {
	case model.BookStatusActive:
		query += " AND archived = FALSE"
	case model.BookStatusArchived:
		query += " AND archived = TRUE"
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1) // Fetch one extra to determine hasMore

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		book, err := r.scanBookFromRows(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating books: %w", err)
	}

	// Determine if there are more results
	var nextCursor string
	if len(books) > limit {
		books = books[:limit] // Remove extra row
		lastBook := books[len(books)-1]
		nextCursor = encodeCursor(&PaginationCursor{
			ID:        lastBook.ID,
			CreatedAt: lastBook.CreatedAt,
		})
	}

	return books, nextCursor, nil
}

// UpdateBook updates a book's mutable fields.
func (r *Repository) UpdateBook(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books
		SET title = $2, authors = $3, isbn = $4, description = $5, published_year = $6, page_count = $7, cover_url = $8, archived = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		pq.Array(book.Authors),
		nullableString(book.ISBN),
		book.Description,
		nullableInt(book.PublishedYear),
		nullableInt(book.PageCount),
		book.CoverURL,
		book.Archived,
		book.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrISBNExists
		}
		return fmt.Errorf("failed to update book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// DeleteBook performs a soft delete on a book.
func (r *Repository) DeleteBook(ctx context.Context, id string) error {
	query := `
		UPDATE books
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// ISBNExists checks if an ISBN is already registered.
func (r *Repository) ISBNExists(ctx context.Context, isbn string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM books WHERE isbn = $1 AND deleted_at IS NULL)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, isbn).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ISBN existence: %w", err)
	}

	return exists, nil
}

// scanBook scans a single row into a Book model.
func (r *Repository) scanBook(row pgx.Row) (*model.Book, error) {
	var book model.Book
	var isbn *string
	var publishedYear, pageCount *int
	err := row.Scan(
		&book.ID,
		&book.Title,
		pq.Array(&book.Authors),
		&isbn,
		&book.Description,
		&book.CourseName,
		&publishedYear,
		&pageCount,
		&book.CoverURL,
		&book.Archived,
		&book.DeletedAt,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	applyBookNullables(&book, isbn, publishedYear, pageCount)
	return &book, nil
}

// scanBookFromRows scans a row from pgx.Rows into a Book model.
func (r *Repository) scanBookFromRows(rows pgx.Rows) (*model.Book, error) {
	var book model.Book
	var isbn *string
	var publishedYear, pageCount *int
	err := rows.Scan(
		&book.ID,
		&book.Title,
		pq.Array(&book.Authors),
		&isbn,
		&book.Description,
		&book.CourseName,
		&publishedYear,
		&pageCount,
		&book.CoverURL,
		&book.Archived,
		&book.DeletedAt,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	applyBookNullables(&book, isbn, publishedYear, pageCount)
	return &book, nil
}

func applyBookNullables(book *model.Book, isbn *string, publishedYear, pageCount *int) {
	if isbn != nil {
		book.ISBN = *isbn
	}
	if publishedYear != nil {
		book.PublishedYear = *publishedYear
	}
	if pageCount != nil {
		book.PageCount = *pageCount
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

// encodeCursor encodes a pagination cursor as base64 JSON.
func encodeCursor(c *PaginationCursor) string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor decodes a base64 JSON pagination cursor.
func decodeCursor(cursor string) (*PaginationCursor, error) {
	data, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var c PaginationCursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, ErrInvalidCursor
	}

	return &c, nil
}
