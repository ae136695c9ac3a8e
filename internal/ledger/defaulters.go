package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/townworks/townledger/internal/store"
)

// Service names accepted by defaulter filters.
const (
	ServiceWater      = "water"
	ServiceSecurity   = "security"
	ServiceSanitation = "sanitation"
)

// AllServices lists every billable service.
func AllServices() []string {
	return []string{ServiceWater, ServiceSecurity, ServiceSanitation}
}

// DefaulterScope selects the period a defaulters report covers: one
// billing month or one calendar year.
type DefaulterScope struct {
	Month string // "YYYY-MM"; exclusive with Year
	Year  int
}

// ParseScope builds a scope from query-style inputs. Exactly one of
// month and year must be given.
func ParseScope(month, year string) (DefaulterScope, error) {
	switch {
	case month != "" && year != "":
		return DefaulterScope{}, fmt.Errorf("give either a month or a year, not both")
	case month != "":
		if !ValidMonth(month) {
			return DefaulterScope{}, fmt.Errorf("invalid month %q", month)
		}
		return DefaulterScope{Month: month}, nil
	case year != "":
		y, err := strconv.Atoi(year)
		if err != nil || y < 2000 || y > 2200 {
			return DefaulterScope{}, fmt.Errorf("invalid year %q", year)
		}
		return DefaulterScope{Year: y}, nil
	default:
		return DefaulterScope{}, fmt.Errorf("a month or a year is required")
	}
}

// Months returns the billing months the scope covers as of now.
func (sc DefaulterScope) Months(now time.Time) []string {
	if sc.Month != "" {
		return []string{sc.Month}
	}
	return MonthsOfYear(sc.Year, now)
}

// Label describes the scope for report headings.
func (sc DefaulterScope) Label() string {
	if sc.Month != "" {
		return sc.Month
	}
	return strconv.Itoa(sc.Year)
}

// Defaulter is one resident with unpaid dues in the reporting period.
type Defaulter struct {
	Resident *store.Resident

	WaterPending      int64
	SecurityPending   int64
	SanitationPending int64
	TotalPending      int64

	Months int // billing months the period covered
}

// Defaulters reports residents whose pending dues are positive for any
// of the selected services over the scope. An empty service list means
// all services. Results keep the resident list order: street then
// house number.
func (s *Service) Defaulters(ctx context.Context, scope DefaulterScope, services []string) ([]Defaulter, error) {
	if len(services) == 0 {
		services = AllServices()
	}
	selected := make(map[string]bool, len(services))
	for _, svc := range services {
		switch svc {
		case ServiceWater, ServiceSecurity, ServiceSanitation:
			selected[svc] = true
		default:
			return nil, &ValidationError{Problems: []string{fmt.Sprintf("unknown service %q", svc)}}
		}
	}

	months := scope.Months(time.Now())
	if len(months) == 0 {
		return nil, nil
	}

	residents, err := s.store.ListResidents(ctx, store.ResidentFilter{})
	if err != nil {
		return nil, err
	}
	bills, err := s.store.BillsForMonths(ctx, months)
	if err != nil {
		return nil, err
	}

	type totals struct{ water, security, sanitation int64 }
	paid := make(map[int64]*totals, len(residents))
	for _, b := range bills {
		t := paid[b.ResidentID]
		if t == nil {
			t = &totals{}
			paid[b.ResidentID] = t
		}
		t.water += b.WaterPaid
		t.security += b.SecurityPaid
		t.sanitation += b.SanitationPaid
	}

	n := int64(len(months))
	var out []Defaulter
	for _, r := range residents {
		water, security, sanitation := s.dueFor(r)
		d := Defaulter{Resident: r, Months: len(months)}
		d.WaterPending = water * n
		d.SecurityPending = security * n
		d.SanitationPending = sanitation * n
		if t := paid[r.ID]; t != nil {
			d.WaterPending -= t.water
			d.SecurityPending -= t.security
			d.SanitationPending -= t.sanitation
		}
		d.TotalPending = d.WaterPending + d.SecurityPending + d.SanitationPending

		owes := selected[ServiceWater] && d.WaterPending > 0 ||
			selected[ServiceSecurity] && d.SecurityPending > 0 ||
			selected[ServiceSanitation] && d.SanitationPending > 0
		if owes {
			out = append(out, d)
		}
	}
	return out, nil
}
