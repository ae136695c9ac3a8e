package store

import (
	"context"
	"fmt"
)

const billColumns = `resident_id, billing_month, water_paid, security_paid, sanitation_paid`

// BillsForMonth returns every bill recorded for one billing month.
func (s *SQLiteStore) BillsForMonth(ctx context.Context, month string) ([]Bill, error) {
	return s.BillsForMonths(ctx, []string{month})
}

// BillsForMonths returns the bills recorded for any of the given months,
// ordered by resident then month.
func (s *SQLiteStore) BillsForMonths(ctx context.Context, months []string) ([]Bill, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if len(months) == 0 {
		return nil, nil
	}

	args := make([]any, len(months))
	for i, m := range months {
		args[i] = m
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT `+billColumns+` FROM bills WHERE billing_month IN (%s)
		 ORDER BY resident_id, billing_month`, placeholders(len(months))),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	return collectBills(rows)
}

// ListBills returns every recorded bill, ordered by month then resident.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]Bill, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills ORDER BY billing_month, resident_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return collectBills(rows)
}

func collectBills(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close() error
}) ([]Bill, error) {
	defer func() { _ = rows.Close() }()

	var out []Bill
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ResidentID, &b.Month, &b.WaterPaid, &b.SecurityPaid, &b.SanitationPaid); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bills: %w", err)
	}
	return out, nil
}

// SaveBills upserts a batch of bills in one transaction. An existing
// (resident, month) row is overwritten with the new paid amounts.
func (s *SQLiteStore) SaveBills(ctx context.Context, bills []Bill) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if len(bills) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bills (resident_id, billing_month, water_paid, security_paid, sanitation_paid)
		 VALUES (?,?,?,?,?)
		 ON CONFLICT (resident_id, billing_month) DO UPDATE SET
			water_paid      = excluded.water_paid,
			security_paid   = excluded.security_paid,
			sanitation_paid = excluded.sanitation_paid`)
	if err != nil {
		return fmt.Errorf("failed to prepare bill upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, b := range bills {
		if _, err := stmt.ExecContext(ctx, b.ResidentID, b.Month, b.WaterPaid, b.SecurityPaid, b.SanitationPaid); err != nil {
			return fmt.Errorf("failed to save bill for resident %d month %s: %w", b.ResidentID, b.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bills: %w", err)
	}
	return nil
}
