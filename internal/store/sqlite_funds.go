package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetOrCreateFund returns the id of the fund with the given title and
// month, creating it if absent.
func (s *SQLiteStore) GetOrCreateFund(ctx context.Context, title, month string) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM funds WHERE title = ? AND month = ?`, title, month).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up fund: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO funds (title, month, created_at) VALUES (?,?,?)`,
		title, month, toMillis(time.Now()))
	if err != nil {
		// Lost a race with a concurrent insert. Re-read the winner.
		if isUniqueViolation(err) {
			lookupErr := s.db.QueryRowContext(ctx,
				`SELECT id FROM funds WHERE title = ? AND month = ?`, title, month).Scan(&id)
			if lookupErr == nil {
				return id, nil
			}
		}
		return 0, fmt.Errorf("failed to create fund: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get fund id: %w", err)
	}
	return id, nil
}

// GetFund retrieves one fund with its contribution aggregates.
func (s *SQLiteStore) GetFund(ctx context.Context, id int64) (*Fund, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var (
		f         Fund
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT f.id, f.title, f.month, f.created_at,
			COALESCE(SUM(c.amount), 0), COUNT(c.id)
		   FROM funds f
		   LEFT JOIN contributions c ON c.fund_id = f.id
		  WHERE f.id = ?
		  GROUP BY f.id`, id).
		Scan(&f.ID, &f.Title, &f.Month, &createdAt, &f.TotalAmount, &f.Contributors)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fund %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}
	f.CreatedAt = fromMillis(createdAt)
	return &f, nil
}

// ListFunds returns all funds with contribution aggregates, newest first.
func (s *SQLiteStore) ListFunds(ctx context.Context) ([]Fund, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.title, f.month, f.created_at,
			COALESCE(SUM(c.amount), 0), COUNT(c.id)
		   FROM funds f
		   LEFT JOIN contributions c ON c.fund_id = f.id
		  GROUP BY f.id
		  ORDER BY f.month DESC, f.title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Fund
	for rows.Next() {
		var (
			f         Fund
			createdAt int64
		)
		if err := rows.Scan(&f.ID, &f.Title, &f.Month, &createdAt, &f.TotalAmount, &f.Contributors); err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		f.CreatedAt = fromMillis(createdAt)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read funds: %w", err)
	}
	return out, nil
}

// DeleteFund removes a fund and, by cascade, its contributions.
func (s *SQLiteStore) DeleteFund(ctx context.Context, id int64) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM funds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fund: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("fund %d: %w", id, ErrNotFound)
	}
	return nil
}

// Contributions returns the contributions recorded for one fund.
func (s *SQLiteStore) Contributions(ctx context.Context, fundID int64) ([]Contribution, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	return s.queryContributions(ctx,
		`SELECT fund_id, resident_id, amount FROM contributions
		  WHERE fund_id = ? ORDER BY resident_id`, fundID)
}

// ContributionsForResident returns every contribution one resident made,
// across all funds.
func (s *SQLiteStore) ContributionsForResident(ctx context.Context, residentID int64) ([]Contribution, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	return s.queryContributions(ctx,
		`SELECT fund_id, resident_id, amount FROM contributions
		  WHERE resident_id = ? ORDER BY fund_id`, residentID)
}

func (s *SQLiteStore) queryContributions(ctx context.Context, query string, args ...any) ([]Contribution, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Contribution
	for rows.Next() {
		var c Contribution
		if err := rows.Scan(&c.FundID, &c.ResidentID, &c.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contributions: %w", err)
	}
	return out, nil
}

// SaveContributions applies a contribution sheet for one fund in a single
// transaction: upserts entries with a positive amount and removes the
// listed residents.
func (s *SQLiteStore) SaveContributions(ctx context.Context, fundID int64, upserts []Contribution, removed []int64) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if len(upserts) == 0 && len(removed) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range upserts {
		if c.Amount <= 0 {
			return fmt.Errorf("contribution for resident %d must be positive, got %d", c.ResidentID, c.Amount)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contributions (fund_id, resident_id, amount) VALUES (?,?,?)
			 ON CONFLICT (fund_id, resident_id) DO UPDATE SET amount = excluded.amount`,
			fundID, c.ResidentID, c.Amount,
		); err != nil {
			return fmt.Errorf("failed to save contribution for resident %d: %w", c.ResidentID, err)
		}
	}

	for _, residentID := range removed {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM contributions WHERE fund_id = ? AND resident_id = ?`,
			fundID, residentID,
		); err != nil {
			return fmt.Errorf("failed to remove contribution for resident %d: %w", residentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contributions: %w", err)
	}
	return nil
}
