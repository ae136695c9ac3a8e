package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/townworks/townledger/internal/store"
)

func flag(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ExportResidents writes the resident register as CSV.
func (s *Service) ExportResidents(ctx context.Context, w io.Writer) error {
	residents, err := s.store.ListResidents(ctx, store.ResidentFilter{})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(residentsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range residents {
		rec := []string{
			r.HouseNo, r.StreetName,
			r.OwnerName, r.OwnerCNIC, r.OwnerPhone,
			flag(r.IsRent), r.LesseeName, r.LesseeCNIC, r.LesseePhone,
			strconv.Itoa(r.Floors),
			flag(r.FacilityWater), flag(r.FacilitySecurity), flag(r.FacilitySanitation),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write resident %s: %w", r.HouseNo, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportBillingSheet writes one month's billing sheet as CSV, including
// dues and pending for every resident.
func (s *Service) ExportBillingSheet(ctx context.Context, w io.Writer, month string) error {
	sheet, err := s.BillingSheet(ctx, month)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"house_no", "street_name", "owner_name",
		"water_due", "water_paid", "security_due", "security_paid",
		"sanitation_due", "sanitation_paid", "pending",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range sheet {
		rec := []string{
			row.Resident.HouseNo, row.Resident.StreetName, row.Resident.OwnerName,
			strconv.FormatInt(row.WaterDue, 10), strconv.FormatInt(row.WaterPaid, 10),
			strconv.FormatInt(row.SecurityDue, 10), strconv.FormatInt(row.SecurityPaid, 10),
			strconv.FormatInt(row.SanitationDue, 10), strconv.FormatInt(row.SanitationPaid, 10),
			strconv.FormatInt(row.Pending, 10),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", row.Resident.HouseNo, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportDefaulters writes a defaulters report as CSV.
func (s *Service) ExportDefaulters(ctx context.Context, w io.Writer, scope DefaulterScope, services []string) error {
	defaulters, err := s.Defaulters(ctx, scope, services)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"house_no", "street_name", "owner_name", "owner_phone",
		"water_pending", "security_pending", "sanitation_pending", "total_pending",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, d := range defaulters {
		rec := []string{
			d.Resident.HouseNo, d.Resident.StreetName, d.Resident.OwnerName, d.Resident.OwnerPhone,
			strconv.FormatInt(d.WaterPending, 10),
			strconv.FormatInt(d.SecurityPending, 10),
			strconv.FormatInt(d.SanitationPending, 10),
			strconv.FormatInt(d.TotalPending, 10),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", d.Resident.HouseNo, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
