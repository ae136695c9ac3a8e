package ledger

import (
	"context"
	"sort"

	"github.com/townworks/townledger/internal/store"
)

// StreetCount is the number of registered houses on one street.
type StreetCount struct {
	Street string `json:"street"`
	Houses int    `json:"houses"`
}

// MonthSummary aggregates one billing month: how many houses were
// billed, the rupees collected, and how many of those houses are fully
// settled for the month.
type MonthSummary struct {
	Month     string `json:"month"`
	Billed    int    `json:"billed"`
	Collected int64  `json:"collected"`
	Settled   int    `json:"settled"`
}

// StreetRecovery compares a street's dues against its collections for
// one month.
type StreetRecovery struct {
	Street    string `json:"street"`
	Due       int64  `json:"due"`
	Collected int64  `json:"collected"`
}

// Overview is the dashboard's headline view of the ledger.
type Overview struct {
	Streets  int `json:"streets"`
	Houses   int `json:"houses"`
	Rented   int `json:"rented"`
	Families int `json:"families"`

	HousesPerStreet []StreetCount  `json:"houses_per_street"`
	Billing         []MonthSummary `json:"billing"`
	Funds           []store.Fund   `json:"funds"`
}

// Overview computes the dashboard aggregates. HousesPerStreet covers
// the full street catalogue, zero-filled for empty streets.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	residents, err := s.store.ListResidents(ctx, store.ResidentFilter{})
	if err != nil {
		return nil, err
	}
	families, err := s.store.ListFamilies(ctx)
	if err != nil {
		return nil, err
	}
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, err
	}
	funds, err := s.store.ListFunds(ctx)
	if err != nil {
		return nil, err
	}

	ov := &Overview{
		Houses:   len(residents),
		Families: len(families),
		Funds:    funds,
	}

	perStreet := make(map[string]int)
	for _, r := range residents {
		perStreet[r.StreetName]++
		if r.IsRent {
			ov.Rented++
		}
	}
	for _, street := range s.streets {
		ov.HousesPerStreet = append(ov.HousesPerStreet, StreetCount{
			Street: street,
			Houses: perStreet[street],
		})
		if perStreet[street] > 0 {
			ov.Streets++
		}
		delete(perStreet, street)
	}
	// Streets outside the catalogue still count and show up last.
	extras := make([]string, 0, len(perStreet))
	for street := range perStreet {
		extras = append(extras, street)
	}
	sort.Strings(extras)
	for _, street := range extras {
		ov.HousesPerStreet = append(ov.HousesPerStreet, StreetCount{
			Street: street,
			Houses: perStreet[street],
		})
		ov.Streets++
	}

	dueByResident := make(map[int64]int64, len(residents))
	for _, r := range residents {
		water, security, sanitation := s.dueFor(r)
		dueByResident[r.ID] = water + security + sanitation
	}

	byMonth := make(map[string]*MonthSummary)
	var months []string
	for _, b := range bills {
		ms := byMonth[b.Month]
		if ms == nil {
			ms = &MonthSummary{Month: b.Month}
			byMonth[b.Month] = ms
			months = append(months, b.Month)
		}
		ms.Billed++
		ms.Collected += b.TotalPaid()
		if b.TotalPaid() >= dueByResident[b.ResidentID] {
			ms.Settled++
		}
	}
	sort.Strings(months)
	for _, m := range months {
		ov.Billing = append(ov.Billing, *byMonth[m])
	}

	return ov, nil
}

// StreetRecoveryForMonth breaks one month's dues and collections down
// by street, over the full catalogue.
func (s *Service) StreetRecoveryForMonth(ctx context.Context, month string) ([]StreetRecovery, error) {
	sheet, err := s.BillingSheet(ctx, month)
	if err != nil {
		return nil, err
	}

	byStreet := make(map[string]*StreetRecovery)
	order := append([]string(nil), s.streets...)
	for _, street := range order {
		byStreet[street] = &StreetRecovery{Street: street}
	}
	for _, row := range sheet {
		rec := byStreet[row.Resident.StreetName]
		if rec == nil {
			rec = &StreetRecovery{Street: row.Resident.StreetName}
			byStreet[row.Resident.StreetName] = rec
			order = append(order, row.Resident.StreetName)
		}
		rec.Due += row.TotalDue()
		rec.Collected += row.TotalPaid()
	}

	out := make([]StreetRecovery, 0, len(order))
	for _, street := range order {
		out = append(out, *byStreet[street])
	}
	return out, nil
}
