package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Email:        "cook@example.com",
		Username:     "cook",
		PasswordHash: "hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
}

func TestCreateUser_DuplicateFields(t *testing.T) {
	tests := []struct {
		name      string
		user      model.User
		wantField string
	}{
		{
			name:      "duplicate email",
			user:      model.User{Email: "taken@example.com", Username: "other"},
			wantField: "email",
		},
		{
			name:      "duplicate username",
			user:      model.User{Email: "other@example.com", Username: "taken"},
			wantField: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			if err := db.CreateUser(context.Background(), &model.User{
				Email: "taken@example.com", Username: "taken",
			}); err != nil {
				t.Fatalf("setup: %v", err)
			}

			user := tt.user
			err := db.CreateUser(context.Background(), &user)

			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("CreateUser() error = %v, want validation error", err)
			}
			if appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "getbyid")

	found, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Username != "getbyid" {
		t.Errorf("Username = %q, want %q", found.Username, "getbyid")
	}
	if found.GitHubID != nil {
		t.Errorf("GitHubID = %v, want nil for a password account", *found.GitHubID)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "mailer")

	found, err := db.GetUserByEmail(context.Background(), "mailer@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	_, err = db.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail(unknown) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// GITHUB UPSERT TESTS
// =========================================================================

func TestUpsertGitHubUser_InsertThenRefresh(t *testing.T) {
	db := newTestDB(t)
	ghID := int64(4242)

	first := &model.User{GitHubID: &ghID, Email: "old@example.com", Username: "octo"}
	if err := db.UpsertGitHubUser(context.Background(), first); err != nil {
		t.Fatalf("first UpsertGitHubUser() error = %v", err)
	}

	second := &model.User{GitHubID: &ghID, Email: "new@example.com", Username: "ignored"}
	if err := db.UpsertGitHubUser(context.Background(), second); err != nil {
		t.Fatalf("second UpsertGitHubUser() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("ID changed on refresh: %q → %q", first.ID, second.ID)
	}
	if second.Email != "new@example.com" {
		t.Errorf("Email = %q, want refreshed email", second.Email)
	}
	if second.Username != "octo" {
		t.Errorf("Username = %q, want it kept as %q", second.Username, "octo")
	}
}

func TestUpsertGitHubUser_MissingGitHubID(t *testing.T) {
	db := newTestDB(t)

	if err := db.UpsertGitHubUser(context.Background(), &model.User{Username: "x"}); err == nil {
		t.Fatal("UpsertGitHubUser() should fail without a GitHub id")
	}
}

// =========================================================================
// LIST / PASSWORD TESTS
// =========================================================================

func TestListUsers_Pagination(t *testing.T) {
	db := newTestDB(t)
	for _, name := range []string{"a", "b", "c"} {
		createTestUser(t, db, name)
	}

	users, total, err := db.ListUsers(context.Background(), repository.ListOptions{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	if users[0].Username != "b" || users[1].Username != "c" {
		t.Errorf("page = [%s %s], want [b c]", users[0].Username, users[1].Username)
	}
}

func TestUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "pw")

	if err := db.UpdatePassword(context.Background(), user.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	found, _ := db.GetUserByID(context.Background(), user.ID)
	if found.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, "new-hash")
	}

	if err := db.UpdatePassword(context.Background(), "missing", "h"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdatePassword(missing) error = %v, want ErrNotFound", err)
	}
}
