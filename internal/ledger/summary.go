package ledger

import (
	"context"

	"github.com/townworks/townledger/internal/store"
)

// BillLine is one month of a resident's billing history.
type BillLine struct {
	Month   string `json:"month"`
	Due     int64  `json:"due"`
	Paid    int64  `json:"paid"`
	Pending int64  `json:"pending"`
}

// FundContribution names a fund a resident paid into.
type FundContribution struct {
	Fund   store.Fund `json:"fund"`
	Amount int64      `json:"amount"`
}

// ResidentSummary is the full per-house report: profile, families,
// billing history and fund contributions.
type ResidentSummary struct {
	Resident *store.Resident `json:"resident"`

	Bills        []BillLine `json:"bills"`
	TotalDue     int64      `json:"total_due"`
	TotalPaid    int64      `json:"total_paid"`
	TotalPending int64      `json:"total_pending"`

	Contributions    []FundContribution `json:"contributions"`
	TotalContributed int64              `json:"total_contributed"`
}

// ResidentSummary assembles the report for one resident.
func (s *Service) ResidentSummary(ctx context.Context, id int64) (*ResidentSummary, error) {
	r, err := s.store.GetResident(ctx, id)
	if err != nil {
		return nil, err
	}

	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, err
	}
	water, security, sanitation := s.dueFor(r)
	monthlyDue := water + security + sanitation

	sum := &ResidentSummary{Resident: r}
	for _, b := range bills {
		if b.ResidentID != id {
			continue
		}
		line := BillLine{
			Month:   b.Month,
			Due:     monthlyDue,
			Paid:    b.TotalPaid(),
			Pending: monthlyDue - b.TotalPaid(),
		}
		sum.Bills = append(sum.Bills, line)
		sum.TotalDue += line.Due
		sum.TotalPaid += line.Paid
	}
	sum.TotalPending = sum.TotalDue - sum.TotalPaid

	contribs, err := s.store.ContributionsForResident(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range contribs {
		fund, err := s.store.GetFund(ctx, c.FundID)
		if err != nil {
			return nil, err
		}
		sum.Contributions = append(sum.Contributions, FundContribution{
			Fund:   *fund,
			Amount: c.Amount,
		})
		sum.TotalContributed += c.Amount
	}
	return sum, nil
}
