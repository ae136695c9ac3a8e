// Package ledger implements the town administration domain: dues,
// billing sheets, defaulters, fund drives and reporting on top of the
// store.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/townworks/townledger/internal/store"
)

// Dues holds the default monthly charge per service, in rupees.
type Dues struct {
	Water      int64
	Security   int64
	Sanitation int64
}

// DefaultDues are the charges the town office bills when nothing is
// configured.
func DefaultDues() Dues {
	return Dues{Water: 500, Security: 500, Sanitation: 1000}
}

// DefaultStreets returns the town's street catalogue.
func DefaultStreets() []string {
	streets := []string{
		"Al-Rehman Road",
		"Ali Road",
		"Habib Road",
		"Bilal Road",
		"Khadija Road",
	}
	for i := 1; i <= 22; i++ {
		streets = append(streets, fmt.Sprintf("Street %d", i))
	}
	return streets
}

// Config carries the tunables the service needs from configuration.
type Config struct {
	Dues    Dues
	Streets []string
}

// Service exposes the ledger operations. Mutations validate input and
// record an audit event with the acting username.
type Service struct {
	store   store.Store
	dues    Dues
	streets []string
	logger  *slog.Logger
}

// NewService builds a Service. Zero-valued config fields fall back to
// the town defaults.
func NewService(st store.Store, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dues := cfg.Dues
	if dues == (Dues{}) {
		dues = DefaultDues()
	}
	streets := cfg.Streets
	if len(streets) == 0 {
		streets = DefaultStreets()
	}
	return &Service{store: st, dues: dues, streets: streets, logger: logger}
}

// Dues returns the configured default monthly charges.
func (s *Service) Dues() Dues {
	return s.dues
}

// Streets returns the street catalogue.
func (s *Service) Streets() []string {
	return append([]string(nil), s.streets...)
}

// dueFor returns the per-service monthly due for one resident based on
// its facility subscriptions.
func (s *Service) dueFor(r *store.Resident) (water, security, sanitation int64) {
	if r.FacilityWater {
		water = s.dues.Water
	}
	if r.FacilitySecurity {
		security = s.dues.Security
	}
	if r.FacilitySanitation {
		sanitation = s.dues.Sanitation
	}
	return water, security, sanitation
}

func (s *Service) audit(ctx context.Context, actor, action, entity string, entityID int64, detail string) {
	err := s.store.AppendAudit(ctx, store.AuditEvent{
		Actor:    actor,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	})
	if err != nil {
		s.logger.Warn("failed to record audit event",
			"actor", actor, "action", action, "entity", entity, "error", err)
	}
}

// RegisterResident validates and stores a new resident with its
// families.
func (s *Service) RegisterResident(ctx context.Context, actor string, r *store.Resident, families []store.Family) (int64, error) {
	if err := s.ValidateResident(r, families); err != nil {
		return 0, err
	}
	id, err := s.store.CreateResident(ctx, r, families)
	if err != nil {
		return 0, err
	}
	s.audit(ctx, actor, "create", "resident", id, r.HouseNo)
	return id, nil
}

// AmendResident validates and rewrites an existing resident, replacing
// its families.
func (s *Service) AmendResident(ctx context.Context, actor string, id int64, r *store.Resident, families []store.Family) error {
	if err := s.ValidateResident(r, families); err != nil {
		return err
	}
	if err := s.store.UpdateResident(ctx, id, r, families); err != nil {
		return err
	}
	s.audit(ctx, actor, "update", "resident", id, r.HouseNo)
	return nil
}

// RemoveResidents deletes residents and their dependent records.
func (s *Service) RemoveResidents(ctx context.Context, actor string, ids []int64) error {
	if err := s.store.DeleteResidents(ctx, ids); err != nil {
		return err
	}
	for _, id := range ids {
		s.audit(ctx, actor, "delete", "resident", id, "")
	}
	return nil
}

// Resident loads one resident with families.
func (s *Service) Resident(ctx context.Context, id int64) (*store.Resident, error) {
	return s.store.GetResident(ctx, id)
}

// Residents lists residents matching the filter.
func (s *Service) Residents(ctx context.Context, f store.ResidentFilter) ([]*store.Resident, error) {
	return s.store.ListResidents(ctx, f)
}
