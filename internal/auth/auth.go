// Package auth handles portal account credentials and roles.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/townworks/townledger/internal/store"
)

// Roles a portal account can hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ErrBadCredentials is returned when the username or password does not
// match. Callers must not reveal which of the two failed.
var ErrBadCredentials = errors.New("invalid username or password")

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Manager authenticates accounts against the store.
type Manager struct {
	store store.Store
}

// NewManager builds a Manager over the given store.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st}
}

// Authenticate checks a username and password and returns the account
// on success.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (*store.User, error) {
	u, err := m.store.GetUser(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so missing users are not
			// distinguishable from wrong passwords.
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
				[]byte(password))
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// CreateAccount hashes the password and stores a new account.
func (m *Manager) CreateAccount(ctx context.Context, username, password, role string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, fmt.Errorf("username is required")
	}
	if !ValidRole(role) {
		return 0, fmt.Errorf("role must be %q or %q", RoleAdmin, RoleUser)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}
	return m.store.CreateUser(ctx, &store.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
}

// SetPassword replaces an account's password.
func (m *Manager) SetPassword(ctx context.Context, username, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return m.store.SetUserPassword(ctx, username, hash)
}

// SetRole changes an account's role.
func (m *Manager) SetRole(ctx context.Context, username, role string) error {
	if !ValidRole(role) {
		return fmt.Errorf("role must be %q or %q", RoleAdmin, RoleUser)
	}
	return m.store.SetUserRole(ctx, username, role)
}

// Accounts lists every portal account.
func (m *Manager) Accounts(ctx context.Context) ([]store.User, error) {
	return m.store.ListUsers(ctx)
}

func hashPassword(password string) (string, error) {
	if len(password) < 4 {
		return "", fmt.Errorf("password must be at least 4 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
