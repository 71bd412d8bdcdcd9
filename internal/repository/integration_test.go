//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/testutil"
)

// newTestEnv connects to the test database, resets the schema, and
// serializes access across packages.
func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	ctx := context.Background()

	repo, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect to database: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("release db lock: %v", err)
		}
	})

	if err := testutil.ResetSchema(ctx, databaseURL); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

func seedCourse(t *testing.T, ctx context.Context, repo *Repository) *model.Course {
	t.Helper()

	course := &model.Course{
		ID:            ulid.Make().String(),
		CourseName:    testutil.UniqueID("course"),
		TermStartDate: time.Now().UTC(),
		LoginRequired: true,
		CreatedAt:     time.Now().UTC(),
	}
	course.BaseCourse = course.CourseName

	if err := repo.CreateCourse(ctx, course); err != nil {
		t.Fatalf("CreateCourse failed: %v", err)
	}
	return course
}

func seedUser(t *testing.T, ctx context.Context, repo *Repository, courseName string) *model.User {
	t.Helper()

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     testutil.UniqueID("user"),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		CourseName:   courseName,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestIntegrationUserRepository_RoundTrip(t *testing.T) {
	ctx, repo := newTestEnv(t)

	course := seedCourse(t, ctx, repo)
	user := seedUser(t, ctx, repo, course.CourseName)

	retrieved, err := repo.GetUserByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}

	if retrieved.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", retrieved.ID, user.ID)
	}
	if retrieved.CourseName != course.CourseName {
		t.Errorf("CourseName mismatch: got %q, want %q", retrieved.CourseName, course.CourseName)
	}
}

func TestIntegrationUserRepository_DuplicateUsername(t *testing.T) {
	ctx, repo := newTestEnv(t)

	course := seedCourse(t, ctx, repo)
	user := seedUser(t, ctx, repo, course.CourseName)

	dup := *user
	dup.ID = ulid.Make().String()

	if err := repo.CreateUser(ctx, &dup); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
}

func TestIntegrationUserRepository_SoftDeleteHidesUser(t *testing.T) {
	ctx, repo := newTestEnv(t)

	course := seedCourse(t, ctx, repo)
	user := seedUser(t, ctx, repo, course.CourseName)

	if err := repo.SoftDeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("SoftDeleteUser failed: %v", err)
	}

	if _, err := repo.GetUserByUsername(ctx, user.Username); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after soft delete, got %v", err)
	}
}

func TestIntegrationBookRepository_RoundTrip(t *testing.T) {
	ctx, repo := newTestEnv(t)

	course := seedCourse(t, ctx, repo)

	book := &model.Book{
		ID:            ulid.Make().String(),
		Title:         "How to Think Like a Computer Scientist",
		Authors:       []string{"Brad Miller", "David Ranum"},
		ISBN:          "9780136019701",
		CourseName:    course.CourseName,
		PublishedYear: 2011,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	retrieved, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBookByID failed: %v", err)
	}

	if retrieved.Title != book.Title {
		t.Errorf("Title mismatch: got %q, want %q", retrieved.Title, book.Title)
	}
	if len(retrieved.Authors) != 2 {
		t.Fatalf("expected 2 authors, got %d", len(retrieved.Authors))
	}
	if retrieved.Authors[0] != "Brad Miller" {
		t.Errorf("unexpected first author: %q", retrieved.Authors[0])
	}
}

func TestIntegrationBookRepository_ListPagination(t *testing.T) {
	ctx, repo := newTestEnv(t)

	course := seedCourse(t, ctx, repo)

	for i := 0; i < 5; i++ {
		book := &model.Book{
			ID:         ulid.Make().String(),
			Title:      testutil.UniqueID("title"),
			Authors:    []string{"Author"},
			CourseName: course.CourseName,
			CreatedAt:  time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
			UpdatedAt:  time.Now().UTC(),
		}
		if err := repo.CreateBook(ctx, book); err != nil {
			t.Fatalf("CreateBook failed: %v", err)
		}
	}

	filter := BookFilter{CourseName: course.CourseName}

	page1, cursor, err := repo.ListBooks(ctx, filter, "", 3)
	if err != nil {
		t.Fatalf("ListBooks page 1 failed: %v", err)
	}
	if len(page1) != 3 {
		t.Fatalf("expected 3 books on page 1, got %d", len(page1))
	}
	if cursor == "" {
		t.Fatal("expected a next cursor")
	}

	page2, cursor2, err := repo.ListBooks(ctx, filter, cursor, 3)
	if err != nil {
		t.Fatalf("ListBooks page 2 failed: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("expected 2 books on page 2, got %d", len(page2))
	}
	if cursor2 != "" {
		t.Errorf("expected no cursor on the last page, got %q", cursor2)
	}

	seen := make(map[string]bool)
	for _, b := range append(page1, page2...) {
		if seen[b.ID] {
			t.Errorf("book %s returned twice", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestIntegrationBookRepository_StatusFilterPaginates(t *testing.T) {
	ctx, repo := newTestEnv(t)

	course := seedCourse(t, ctx, repo)

	// Alternate archived and active so a post-fetch filter would leave
	// holes in every page.
	for i := 0; i < 6; i++ {
		book := &model.Book{
			ID:         ulid.Make().String(),
			Title:      testutil.UniqueID("title"),
			Authors:    []string{"Author"},
			CourseName: course.CourseName,
			Archived:   i%2 == 0,
			CreatedAt:  time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
			UpdatedAt:  time.Now().UTC(),
		}
		if err := repo.CreateBook(ctx, book); err != nil {
			t.Fatalf("CreateBook failed: %v", err)
		}
	}

	filter := BookFilter{CourseName: course.CourseName, Status: model.BookStatusActive}

	page1, cursor, err := repo.ListBooks(ctx, filter, "", 2)
	if err != nil {
		t.Fatalf("ListBooks page 1 failed: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("expected a full page of 2 active books, got %d", len(page1))
	}
	if cursor == "" {
		t.Fatal("expected a next cursor")
	}
	for _, b := range page1 {
		if b.Status() != model.BookStatusActive {
			t.Errorf("book %s has status %s, want active", b.ID, b.Status())
		}
	}

	page2, cursor2, err := repo.ListBooks(ctx, filter, cursor, 2)
	if err != nil {
		t.Fatalf("ListBooks page 2 failed: %v", err)
	}
	if len(page2) != 1 {
		t.Fatalf("expected 1 active book on page 2, got %d", len(page2))
	}
	if cursor2 != "" {
		t.Errorf("expected no cursor on the last page, got %q", cursor2)
	}

	archived, _, err := repo.ListBooks(ctx, BookFilter{CourseName: course.CourseName, Status: model.BookStatusArchived}, "", 10)
	if err != nil {
		t.Fatalf("ListBooks archived failed: %v", err)
	}
	if len(archived) != 3 {
		t.Errorf("expected 3 archived books, got %d", len(archived))
	}
}

func TestIntegrationBookRepository_SoftDelete(t *testing.T) {
	ctx, repo := newTestEnv(t)

	course := seedCourse(t, ctx, repo)

	book := &model.Book{
		ID:         ulid.Make().String(),
		Title:      "Soon Gone",
		Authors:    []string{"Author"},
		CourseName: course.CourseName,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	if err := repo.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook failed: %v", err)
	}

	retrieved, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBookByID after delete failed: %v", err)
	}
	if retrieved.Status() != model.BookStatusDeleted {
		t.Errorf("expected deleted status, got %s", retrieved.Status())
	}
}

func TestIntegrationSessionRepository_RoundTrip(t *testing.T) {
	ctx, repo := newTestEnv(t)

	course := seedCourse(t, ctx, repo)
	user := seedUser(t, ctx, repo, course.CourseName)

	sess := &model.Session{
		ID:        "bs_0000000000000000000000000000000000000000000000000000000000000001",
		UserID:    user.ID,
		IP:        "127.0.0.1",
		UserAgent: "test",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	retrieved, err := repo.GetSessionByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSessionByID failed: %v", err)
	}
	if retrieved.State() != model.SessionActive {
		t.Errorf("expected active session, got %s", retrieved.State())
	}

	if err := repo.RevokeSession(ctx, sess.ID); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}

	// Revoking again is a no-op.
	if err := repo.RevokeSession(ctx, sess.ID); err != nil {
		t.Fatalf("second RevokeSession failed: %v", err)
	}

	retrieved, err = repo.GetSessionByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSessionByID after revoke failed: %v", err)
	}
	if retrieved.State() != model.SessionRevoked {
		t.Errorf("expected revoked session, got %s", retrieved.State())
	}
}

func TestIntegrationSessionRepository_RevokeUnknownIsNoop(t *testing.T) {
	ctx, repo := newTestEnv(t)

	err := repo.RevokeSession(ctx, "bs_0000000000000000000000000000000000000000000000000000000000000002")
	if err != nil {
		t.Errorf("expected no error revoking unknown session, got %v", err)
	}
}

func TestIntegrationAnswerRepository_LastAnswerWins(t *testing.T) {
	ctx, repo := newTestEnv(t)

	course := seedCourse(t, ctx, repo)
	user := seedUser(t, ctx, repo, course.CourseName)

	base := time.Now().UTC()
	for i, ans := range []string{"a", "b", "c"} {
		answer := &model.Answer{
			Sid:        user.Username,
			DivID:      "q1",
			CourseName: course.CourseName,
			Event:      "mChoice",
			Answer:     ans,
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.RecordAnswer(ctx, answer); err != nil {
			t.Fatalf("RecordAnswer failed: %v", err)
		}
		if answer.ID == 0 {
			t.Fatal("expected RecordAnswer to populate the id")
		}
	}

	last, err := repo.GetLastAnswer(ctx, user.Username, "q1", course.CourseName)
	if err != nil {
		t.Fatalf("GetLastAnswer failed: %v", err)
	}
	if last.Answer != "c" {
		t.Errorf("expected most recent answer c, got %q", last.Answer)
	}
}

func TestIntegrationAnswerRepository_NotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	_, err := repo.GetLastAnswer(ctx, "nobody", "q1", "nocourse")
	if !errors.Is(err, ErrAnswerNotFound) {
		t.Errorf("expected ErrAnswerNotFound, got %v", err)
	}
}
