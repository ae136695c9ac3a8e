package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// nullable maps empty strings to NULL so lessee columns stay NULL for
// owner-occupied houses.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateResident inserts a resident and its per-floor families in one
// transaction and returns the new resident id.
func (s *SQLiteStore) CreateResident(ctx context.Context, r *Resident, families []Family) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertResident(ctx, tx, r)
	if err != nil {
		return 0, err
	}
	if err := insertFamilies(ctx, tx, id, families); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit resident: %w", err)
	}
	return id, nil
}

// CreateResidents inserts a batch of residents with their families in a
// single transaction. Either every row lands or none do.
func (s *SQLiteStore) CreateResidents(ctx context.Context, residents []*Resident, families [][]Family) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if len(residents) != len(families) {
		return fmt.Errorf("got %d residents but %d family sets", len(residents), len(families))
	}
	if len(residents) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, r := range residents {
		id, err := insertResident(ctx, tx, r)
		if err != nil {
			return err
		}
		if err := insertFamilies(ctx, tx, id, families[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit residents: %w", err)
	}
	return nil
}

func insertResident(ctx context.Context, tx *sql.Tx, r *Resident) (int64, error) {
	now := toMillis(time.Now())
	res, err := tx.ExecContext(ctx,
		`INSERT INTO residents (
			house_no, street_name,
			owner_name, owner_cnic, owner_phone,
			is_rent, lessee_name, lessee_cnic, lessee_phone,
			floors, facility_water, facility_security, facility_sanitation,
			created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.HouseNo, r.StreetName,
		r.OwnerName, r.OwnerCNIC, r.OwnerPhone,
		r.IsRent, nullable(r.LesseeName), nullable(r.LesseeCNIC), nullable(r.LesseePhone),
		r.Floors, r.FacilityWater, r.FacilitySecurity, r.FacilitySanitation,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("house %s: %w", r.HouseNo, ErrHouseExists)
		}
		return 0, fmt.Errorf("failed to insert resident: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get resident id: %w", err)
	}
	return id, nil
}

// UpdateResident rewrites a resident record and replaces its families
// wholesale in one transaction.
func (s *SQLiteStore) UpdateResident(ctx context.Context, id int64, r *Resident, families []Family) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE residents SET
			house_no = ?, street_name = ?,
			owner_name = ?, owner_cnic = ?, owner_phone = ?,
			is_rent = ?, lessee_name = ?, lessee_cnic = ?, lessee_phone = ?,
			floors = ?, facility_water = ?, facility_security = ?, facility_sanitation = ?,
			updated_at = ?
		 WHERE id = ?`,
		r.HouseNo, r.StreetName,
		r.OwnerName, r.OwnerCNIC, r.OwnerPhone,
		r.IsRent, nullable(r.LesseeName), nullable(r.LesseeCNIC), nullable(r.LesseePhone),
		r.Floors, r.FacilityWater, r.FacilitySecurity, r.FacilitySanitation,
		toMillis(time.Now()), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("house %s: %w", r.HouseNo, ErrHouseExists)
		}
		return fmt.Errorf("failed to update resident: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resident %d: %w", id, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM families WHERE resident_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear families: %w", err)
	}
	if err := insertFamilies(ctx, tx, id, families); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit resident update: %w", err)
	}
	return nil
}

func insertFamilies(ctx context.Context, tx *sql.Tx, residentID int64, families []Family) error {
	for _, f := range families {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO families (resident_id, floor, head_name, head_cnic, head_phone)
			 VALUES (?,?,?,?,?)`,
			residentID, f.Floor, f.HeadName, f.HeadCNIC, f.HeadPhone,
		); err != nil {
			return fmt.Errorf("failed to insert family for floor %d: %w", f.Floor, err)
		}
	}
	return nil
}

// DeleteResidents removes residents by id. Families, bills and
// contributions cascade.
func (s *SQLiteStore) DeleteResidents(ctx context.Context, ids []int64) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM residents WHERE id IN (%s)`, placeholders(len(ids))),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to delete residents: %w", err)
	}
	return nil
}

const residentColumns = `id, house_no, street_name,
	owner_name, owner_cnic, owner_phone,
	is_rent, lessee_name, lessee_cnic, lessee_phone,
	floors, facility_water, facility_security, facility_sanitation,
	created_at, updated_at`

func scanResident(row interface{ Scan(...any) error }) (*Resident, error) {
	var (
		r                                    Resident
		lesseeName, lesseeCNIC, lesseePhone  sql.NullString
		createdAt, updatedAt                 int64
	)
	err := row.Scan(
		&r.ID, &r.HouseNo, &r.StreetName,
		&r.OwnerName, &r.OwnerCNIC, &r.OwnerPhone,
		&r.IsRent, &lesseeName, &lesseeCNIC, &lesseePhone,
		&r.Floors, &r.FacilityWater, &r.FacilitySecurity, &r.FacilitySanitation,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.LesseeName = lesseeName.String
	r.LesseeCNIC = lesseeCNIC.String
	r.LesseePhone = lesseePhone.String
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updatedAt)
	return &r, nil
}

// GetResident retrieves a resident with its families.
func (s *SQLiteStore) GetResident(ctx context.Context, id int64) (*Resident, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+residentColumns+` FROM residents WHERE id = ?`, id)
	r, err := scanResident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resident %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, resident_id, floor, head_name, head_cnic, head_phone
		   FROM families WHERE resident_id = ? ORDER BY floor`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load families: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var f Family
		if err := rows.Scan(&f.ID, &f.ResidentID, &f.Floor, &f.HeadName, &f.HeadCNIC, &f.HeadPhone); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		r.Families = append(r.Families, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read families: %w", err)
	}
	return r, nil
}

// ListResidents returns residents matching the filter, ordered by street
// then house number.
func (s *SQLiteStore) ListResidents(ctx context.Context, f ResidentFilter) ([]*Resident, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT ` + residentColumns + ` FROM residents`
	var (
		where []string
		args  []any
	)
	if len(f.Streets) > 0 {
		where = append(where, fmt.Sprintf("street_name IN (%s)", placeholders(len(f.Streets))))
		for _, st := range f.Streets {
			args = append(args, st)
		}
	}
	if f.Water {
		where = append(where, "facility_water = 1")
	}
	if f.Security {
		where = append(where, "facility_security = 1")
	}
	if f.Sanitation {
		where = append(where, "facility_sanitation = 1")
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY street_name, house_no"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Resident
	for rows.Next() {
		r, err := scanResident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resident: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read residents: %w", err)
	}
	return out, nil
}

// ListFamilies returns every registered family, ordered by resident and floor.
func (s *SQLiteStore) ListFamilies(ctx context.Context) ([]Family, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, resident_id, floor, head_name, head_cnic, head_phone
		   FROM families ORDER BY resident_id, floor`)
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Family
	for rows.Next() {
		var f Family
		if err := rows.Scan(&f.ID, &f.ResidentID, &f.Floor, &f.HeadName, &f.HeadCNIC, &f.HeadPhone); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read families: %w", err)
	}
	return out, nil
}
