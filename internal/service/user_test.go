package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bookserver/bookserver/internal/auth"
	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/repository"
)

// fakeAccountStore is a fake AccountStore that records the order of the
// mutating calls.
type fakeAccountStore struct {
	created    *model.User
	user       *model.User
	sessionIDs []string
	calls      []string
}

func (f *fakeAccountStore) CreateUser(ctx context.Context, user *model.User) error {
	f.created = user
	return nil
}

func (f *fakeAccountStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if f.user == nil {
		return nil, repository.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeAccountStore) UpdateUserProfile(ctx context.Context, user *model.User) error {
	f.calls = append(f.calls, "update")
	return nil
}

func (f *fakeAccountStore) SoftDeleteUser(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	return nil
}

func (f *fakeAccountStore) ListActiveSessionIDs(ctx context.Context, userID string) ([]string, error) {
	return f.sessionIDs, nil
}

func (f *fakeAccountStore) RevokeUserSessions(ctx context.Context, userID string) error {
	f.calls = append(f.calls, "revoke")
	return nil
}

func (f *fakeAccountStore) GetCourseByName(ctx context.Context, name string) (*model.Course, error) {
	return &model.Course{CourseName: name}, nil
}

// fakeSessionEvictor records evicted cache keys on the shared call log.
type fakeSessionEvictor struct {
	store   *fakeAccountStore
	evicted []string
}

func (f *fakeSessionEvictor) DeleteSession(ctx context.Context, cacheKey string) error {
	f.evicted = append(f.evicted, cacheKey)
	f.store.calls = append(f.store.calls, "evict")
	return nil
}

func TestUserService_Register_AlwaysCreatesStudent(t *testing.T) {
	store := &fakeAccountStore{}
	svc := NewUserService(store, &fakeSessionEvictor{store: store})

	user, err := svc.Register(context.Background(), RegisterInput{
		Username:   "test_user_1",
		Password:   "hunter2hunter2",
		CourseName: "test_course_1",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.IsInstructor {
		t.Error("registration must never grant the instructor role")
	}
	if store.created == nil || store.created.IsInstructor {
		t.Error("persisted user must not carry the instructor role")
	}
	if store.created.PasswordHash == "hunter2hunter2" {
		t.Error("password was stored in the clear")
	}
	ok, err := auth.VerifyPassword("hunter2hunter2", store.created.PasswordHash)
	if err != nil {
		t.Fatalf("verify stored hash: %v", err)
	}
	if !ok {
		t.Error("stored hash does not verify against the password")
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	store := &fakeAccountStore{}
	svc := NewUserService(store, &fakeSessionEvictor{store: store})

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"short username", RegisterInput{Username: "ab", Password: "hunter2hunter2", CourseName: "c"}, ErrInvalidUsername},
		{"short password", RegisterInput{Username: "test_user_1", Password: "short", CourseName: "c"}, ErrInvalidPassword},
		{"bad email", RegisterInput{Username: "test_user_1", Password: "hunter2hunter2", Email: "not-an-email", CourseName: "c"}, ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserService_DeleteUser_EvictsCachedSessions(t *testing.T) {
	sessionIDs := []string{
		"bs_0000000000000000000000000000000000000000000000000000000000000001",
		"bs_0000000000000000000000000000000000000000000000000000000000000002",
	}
	store := &fakeAccountStore{
		user:       &model.User{ID: "user-1", Username: "test_user_1"},
		sessionIDs: sessionIDs,
	}
	evictor := &fakeSessionEvictor{store: store}
	svc := NewUserService(store, evictor)

	if err := svc.DeleteUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if len(evictor.evicted) != 2 {
		t.Fatalf("expected 2 cache evictions, got %d", len(evictor.evicted))
	}
	for i, sessionID := range sessionIDs {
		if evictor.evicted[i] != auth.QuickHash(sessionID) {
			t.Errorf("eviction %d used key %q, want QuickHash of %q", i, evictor.evicted[i], sessionID)
		}
	}

	// Rows are revoked before the snapshots go, so a concurrent validate
	// cannot repopulate the cache from a live row.
	want := []string{"delete", "revoke", "evict", "evict"}
	if len(store.calls) != len(want) {
		t.Fatalf("unexpected call sequence: %v", store.calls)
	}
	for i := range want {
		if store.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (full sequence %v)", i, store.calls[i], want[i], store.calls)
		}
	}
}

func TestUserService_DeleteUser_NoSessions(t *testing.T) {
	store := &fakeAccountStore{user: &model.User{ID: "user-1"}}
	evictor := &fakeSessionEvictor{store: store}
	svc := NewUserService(store, evictor)

	if err := svc.DeleteUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if len(evictor.evicted) != 0 {
		t.Errorf("expected no evictions, got %v", evictor.evicted)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	store := &fakeAccountStore{user: &model.User{ID: "user-1", FirstName: "Old", Email: "old@example.com"}}
	svc := NewUserService(store, &fakeSessionEvictor{store: store})

	first := "New"
	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{ID: "user-1", FirstName: &first})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if user.FirstName != "New" {
		t.Errorf("first name not updated: %q", user.FirstName)
	}
	if user.Email != "old@example.com" {
		t.Errorf("omitted email should be unchanged, got %q", user.Email)
	}

	bad := "not-an-email"
	if _, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{ID: "user-1", Email: &bad}); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}
