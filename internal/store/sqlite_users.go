package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetUser retrieves a portal account by username.
func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*User, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var (
		u         User
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at
		   FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

// CreateUser inserts a new portal account and returns its id.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *User) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at) VALUES (?,?,?,?)`,
		u.Username, u.PasswordHash, u.Role, toMillis(time.Now()))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("user %s: %w", u.Username, ErrUserExists)
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get user id: %w", err)
	}
	return id, nil
}

// SetUserPassword replaces the stored password hash for an account.
func (s *SQLiteStore) SetUserPassword(ctx context.Context, username, passwordHash string) error {
	return s.updateUser(ctx, username, "password_hash", passwordHash)
}

// SetUserRole changes an account's role.
func (s *SQLiteStore) SetUserRole(ctx context.Context, username, role string) error {
	return s.updateUser(ctx, username, "role", role)
}

func (s *SQLiteStore) updateUser(ctx context.Context, username, column, value string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s = ? WHERE username = ?`, column),
		value, username)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return nil
}

// ListUsers returns all portal accounts ordered by username.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]User, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, password_hash, role, created_at
		   FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []User
	for rows.Next() {
		var (
			u         User
			createdAt int64
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.CreatedAt = fromMillis(createdAt)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return out, nil
}
