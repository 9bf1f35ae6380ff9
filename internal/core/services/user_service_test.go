package services

import (
	"context"
	"errors"
	"testing"

	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/pagination"
)

func TestUserService_CreateAndList(t *testing.T) {
	users := NewUserService(repositories.NewUserRepository(newTestDB(t)))
	ctx := context.Background()

	created, err := users.CreateUser(ctx, &CreateUserInput{Username: "mika", Email: "mika@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Role != string(domain.RoleUser) || !created.IsActive {
		t.Errorf("expected active USER, got %s active=%v", created.Role, created.IsActive)
	}

	if _, err := users.CreateUser(ctx, &CreateUserInput{Username: "mika", Email: "other@example.com", Password: "longenough"}); !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("expected duplicate username, got %v", err)
	}
	if _, err := users.CreateUser(ctx, &CreateUserInput{Username: "other", Email: "mika@example.com", Password: "longenough"}); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("expected duplicate email, got %v", err)
	}

	list, err := users.ListUsers(ctx, pagination.New(1, 25))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.TotalCount != 1 {
		t.Errorf("expected 1 user, got %d", list.TotalCount)
	}
}

func TestUserService_AdminCannotChangeOwnRole(t *testing.T) {
	users := NewUserService(repositories.NewUserRepository(newTestDB(t)))
	ctx := context.Background()

	admin, err := users.CreateUser(ctx, &CreateUserInput{Username: "root", Email: "root@example.com", Password: "longenough", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	role := "USER"
	if _, err := users.UpdateUserByAdmin(ctx, admin.ID, admin.ID, &UpdateUserByAdminInput{Role: &role}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	inactive := false
	updated, err := users.UpdateUserByAdmin(ctx, admin.ID, admin.ID, &UpdateUserByAdminInput{IsActive: &inactive})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.IsActive {
		t.Error("expected user to be inactive")
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	users := NewUserService(repositories.NewUserRepository(newTestDB(t)))
	ctx := context.Background()

	u, err := users.CreateUser(ctx, &CreateUserInput{Username: "mika", Email: "mika@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := users.ChangePassword(ctx, u.ID, &ChangePasswordInput{OldPassword: "wrong", NewPassword: "newpassword"}); !errors.Is(err, ErrOldPasswordWrong) {
		t.Errorf("expected wrong old password, got %v", err)
	}
	if err := users.ChangePassword(ctx, u.ID, &ChangePasswordInput{OldPassword: "longenough", NewPassword: "newpassword"}); err != nil {
		t.Errorf("expected password change to succeed, got %v", err)
	}
}
