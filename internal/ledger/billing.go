package ledger

import (
	"context"
	"fmt"

	"github.com/townworks/townledger/internal/store"
)

// SheetRow is one resident's line on a monthly billing sheet. Due
// amounts reflect the resident's facility subscriptions; Pending is
// dues minus payments and goes negative on overpayment.
type SheetRow struct {
	Resident *store.Resident

	WaterDue      int64
	SecurityDue   int64
	SanitationDue int64

	WaterPaid      int64
	SecurityPaid   int64
	SanitationPaid int64

	Pending int64
}

// TotalDue returns the row's combined monthly charge.
func (r SheetRow) TotalDue() int64 {
	return r.WaterDue + r.SecurityDue + r.SanitationDue
}

// TotalPaid returns the row's combined recorded payment.
func (r SheetRow) TotalPaid() int64 {
	return r.WaterPaid + r.SecurityPaid + r.SanitationPaid
}

// BillingSheet builds the sheet for one month: every resident appears,
// with zero paid amounts when no bill row exists yet.
func (s *Service) BillingSheet(ctx context.Context, month string) ([]SheetRow, error) {
	if !ValidMonth(month) {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("invalid billing month %q", month)}}
	}

	residents, err := s.store.ListResidents(ctx, store.ResidentFilter{})
	if err != nil {
		return nil, err
	}
	bills, err := s.store.BillsForMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	paid := make(map[int64]store.Bill, len(bills))
	for _, b := range bills {
		paid[b.ResidentID] = b
	}

	rows := make([]SheetRow, 0, len(residents))
	for _, r := range residents {
		row := SheetRow{Resident: r}
		row.WaterDue, row.SecurityDue, row.SanitationDue = s.dueFor(r)
		if b, ok := paid[r.ID]; ok {
			row.WaterPaid = b.WaterPaid
			row.SecurityPaid = b.SecurityPaid
			row.SanitationPaid = b.SanitationPaid
		}
		row.Pending = row.TotalDue() - row.TotalPaid()
		rows = append(rows, row)
	}
	return rows, nil
}

// SaveSheet records payments for one month. Each entry upserts the
// resident's bill row for that month.
func (s *Service) SaveSheet(ctx context.Context, actor, month string, entries []store.Bill) error {
	if !ValidMonth(month) {
		return &ValidationError{Problems: []string{fmt.Sprintf("invalid billing month %q", month)}}
	}
	for i := range entries {
		entries[i].Month = month
		if entries[i].WaterPaid < 0 || entries[i].SecurityPaid < 0 || entries[i].SanitationPaid < 0 {
			return &ValidationError{Problems: []string{
				fmt.Sprintf("negative payment for resident %d", entries[i].ResidentID),
			}}
		}
	}
	if err := s.store.SaveBills(ctx, entries); err != nil {
		return err
	}
	s.audit(ctx, actor, "save", "bill", 0, fmt.Sprintf("%s (%d entries)", month, len(entries)))
	return nil
}
