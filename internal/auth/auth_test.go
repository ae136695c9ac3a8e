package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/townworks/townledger/internal/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	st := store.NewSQLiteStore(nil)
	if err := st.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewManager(st)
}

func TestManager_Authenticate(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if _, err := m.CreateAccount(ctx, "clerk", "hunter2", RoleUser); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	u, err := m.Authenticate(ctx, "clerk", "hunter2")
	if err != nil {
		t.Fatalf("expected successful login: %v", err)
	}
	if u.Role != RoleUser {
		t.Errorf("expected role %s, got %s", RoleUser, u.Role)
	}
	if u.PasswordHash == "hunter2" {
		t.Error("password stored in the clear")
	}

	if _, err := m.Authenticate(ctx, "clerk", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials for wrong password, got %v", err)
	}
	if _, err := m.Authenticate(ctx, "nobody", "hunter2"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials for unknown user, got %v", err)
	}
}

func TestManager_CreateAccount_Validation(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		role     string
	}{
		{"empty username", "", "secret", RoleUser},
		{"short password", "clerk", "abc", RoleUser},
		{"bad role", "clerk", "secret", "owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.CreateAccount(ctx, tt.username, tt.password, tt.role); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := m.CreateAccount(ctx, "clerk", "secret", RoleUser); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	if _, err := m.CreateAccount(ctx, "clerk", "secret", RoleUser); !errors.Is(err, store.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestManager_SetPasswordAndRole(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if _, err := m.CreateAccount(ctx, "clerk", "secret", RoleUser); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	if err := m.SetPassword(ctx, "clerk", "newsecret"); err != nil {
		t.Fatalf("failed to set password: %v", err)
	}
	if _, err := m.Authenticate(ctx, "clerk", "secret"); !errors.Is(err, ErrBadCredentials) {
		t.Error("old password still accepted")
	}
	if _, err := m.Authenticate(ctx, "clerk", "newsecret"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	if err := m.SetRole(ctx, "clerk", RoleAdmin); err != nil {
		t.Fatalf("failed to set role: %v", err)
	}
	u, err := m.Authenticate(ctx, "clerk", "newsecret")
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	if u.Role != RoleAdmin {
		t.Errorf("expected promoted role, got %s", u.Role)
	}

	if err := m.SetRole(ctx, "clerk", "owner"); err == nil {
		t.Error("expected error for unknown role")
	}
	if err := m.SetPassword(ctx, "ghost", "whatever"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
