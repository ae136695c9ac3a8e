// Package store provides persistent storage for the town ledger.
package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations. Callers match them
// with errors.Is to map storage failures onto HTTP or CLI diagnostics.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrHouseExists indicates a resident with the same house number
	// is already registered.
	ErrHouseExists = errors.New("house number already registered")

	// ErrUserExists indicates the username is already taken.
	ErrUserExists = errors.New("username already taken")
)

// Resident is one registered house in the town.
type Resident struct {
	ID         int64
	HouseNo    string
	StreetName string

	OwnerName  string
	OwnerCNIC  string
	OwnerPhone string

	// Lessee fields are populated only when IsRent is true.
	IsRent      bool
	LesseeName  string
	LesseeCNIC  string
	LesseePhone string

	Floors int

	FacilityWater      bool
	FacilitySecurity   bool
	FacilitySanitation bool

	CreatedAt time.Time
	UpdatedAt time.Time

	// Families holds the per-floor family heads. Populated by GetResident;
	// list operations leave it nil.
	Families []Family
}

// Family is the household head registered for one floor of a house.
type Family struct {
	ID         int64
	ResidentID int64
	Floor      int
	HeadName   string
	HeadCNIC   string
	HeadPhone  string
}

// Bill records the amounts a resident paid for one billing month.
// Months use the "YYYY-MM" form and order lexically.
type Bill struct {
	ResidentID     int64
	Month          string
	WaterPaid      int64
	SecurityPaid   int64
	SanitationPaid int64
}

// TotalPaid returns the sum paid across all services.
func (b Bill) TotalPaid() int64 {
	return b.WaterPaid + b.SecurityPaid + b.SanitationPaid
}

// Fund is one community fund drive, unique per (title, month).
type Fund struct {
	ID        int64
	Title     string
	Month     string
	CreatedAt time.Time

	// Aggregates populated by ListFunds.
	TotalAmount  int64
	Contributors int
}

// Contribution is one resident's payment into a fund.
type Contribution struct {
	FundID     int64
	ResidentID int64
	Amount     int64
}

// User is a portal account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string // "admin" or "user"
	CreatedAt    time.Time
}

// AuditEvent records one mutation made through the ledger.
type AuditEvent struct {
	ID        string // uuid
	Actor     string
	Action    string // "create", "update", "delete", "save"
	Entity    string // "resident", "bill", "fund", "contribution", "user"
	EntityID  int64
	Detail    string
	CreatedAt time.Time
}

// ResidentFilter narrows ListResidents results. Zero value lists everything.
type ResidentFilter struct {
	Streets []string

	// Facility filters keep only residents subscribed to the named service.
	Water      bool
	Security   bool
	Sanitation bool
}

// Store is the persistence interface for the town ledger.
type Store interface {
	// Residents
	CreateResident(ctx context.Context, r *Resident, families []Family) (int64, error)
	CreateResidents(ctx context.Context, residents []*Resident, families [][]Family) error
	UpdateResident(ctx context.Context, id int64, r *Resident, families []Family) error
	DeleteResidents(ctx context.Context, ids []int64) error
	GetResident(ctx context.Context, id int64) (*Resident, error)
	ListResidents(ctx context.Context, f ResidentFilter) ([]*Resident, error)
	ListFamilies(ctx context.Context) ([]Family, error)

	// Billing
	BillsForMonth(ctx context.Context, month string) ([]Bill, error)
	BillsForMonths(ctx context.Context, months []string) ([]Bill, error)
	ListBills(ctx context.Context) ([]Bill, error)
	SaveBills(ctx context.Context, bills []Bill) error

	// Funds
	GetOrCreateFund(ctx context.Context, title, month string) (int64, error)
	GetFund(ctx context.Context, id int64) (*Fund, error)
	ListFunds(ctx context.Context) ([]Fund, error)
	DeleteFund(ctx context.Context, id int64) error
	Contributions(ctx context.Context, fundID int64) ([]Contribution, error)
	ContributionsForResident(ctx context.Context, residentID int64) ([]Contribution, error)
	SaveContributions(ctx context.Context, fundID int64, upserts []Contribution, removed []int64) error

	// Accounts
	GetUser(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, u *User) (int64, error)
	SetUserPassword(ctx context.Context, username, passwordHash string) error
	SetUserRole(ctx context.Context, username, role string) error
	ListUsers(ctx context.Context) ([]User, error)

	// Audit trail
	AppendAudit(ctx context.Context, ev AuditEvent) error
	ListAudit(ctx context.Context, limit int) ([]AuditEvent, error)

	Close() error
}
