package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/townworks/townledger/internal/store"
)

var residentsHeader = []string{
	"house_no", "street_name",
	"owner_name", "owner_cnic", "owner_phone",
	"is_rent", "lessee_name", "lessee_cnic", "lessee_phone",
	"floors", "water", "security", "sanitation",
}

var billsHeader = []string{
	"house_no", "month", "water_paid", "security_paid", "sanitation_paid",
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("expected header %s, got %s",
			strings.Join(want, ","), strings.Join(got, ","))
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return fmt.Errorf("column %d: expected %q, got %q", i+1, want[i], got[i])
		}
	}
	return nil
}

func parseFlag(field string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "1", "yes", "true", "y":
		return true, nil
	case "0", "no", "false", "n", "":
		return false, nil
	}
	return false, fmt.Errorf("expected a yes/no value, got %q", field)
}

// ImportResidents loads residents from CSV. Each row seeds one family
// per floor headed by the occupant (lessee for rented houses, owner
// otherwise). The whole file imports or none of it does.
func (s *Service) ImportResidents(ctx context.Context, actor string, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	if err := checkHeader(header, residentsHeader); err != nil {
		return 0, err
	}

	var (
		residents []*store.Resident
		families  [][]store.Family
	)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}

		res := &store.Resident{
			HouseNo:     strings.TrimSpace(rec[0]),
			StreetName:  strings.TrimSpace(rec[1]),
			OwnerName:   strings.TrimSpace(rec[2]),
			OwnerCNIC:   strings.TrimSpace(rec[3]),
			OwnerPhone:  strings.TrimSpace(rec[4]),
			LesseeName:  strings.TrimSpace(rec[6]),
			LesseeCNIC:  strings.TrimSpace(rec[7]),
			LesseePhone: strings.TrimSpace(rec[8]),
		}
		if res.IsRent, err = parseFlag(rec[5]); err != nil {
			return 0, fmt.Errorf("line %d: is_rent: %w", line, err)
		}
		if res.Floors, err = strconv.Atoi(strings.TrimSpace(rec[9])); err != nil {
			return 0, fmt.Errorf("line %d: floors: %w", line, err)
		}
		if res.FacilityWater, err = parseFlag(rec[10]); err != nil {
			return 0, fmt.Errorf("line %d: water: %w", line, err)
		}
		if res.FacilitySecurity, err = parseFlag(rec[11]); err != nil {
			return 0, fmt.Errorf("line %d: security: %w", line, err)
		}
		if res.FacilitySanitation, err = parseFlag(rec[12]); err != nil {
			return 0, fmt.Errorf("line %d: sanitation: %w", line, err)
		}

		headName, headCNIC, headPhone := res.OwnerName, res.OwnerCNIC, res.OwnerPhone
		if res.IsRent {
			headName, headCNIC, headPhone = res.LesseeName, res.LesseeCNIC, res.LesseePhone
		}
		var fams []store.Family
		for floor := 1; floor <= res.Floors; floor++ {
			fams = append(fams, store.Family{
				Floor:     floor,
				HeadName:  headName,
				HeadCNIC:  headCNIC,
				HeadPhone: headPhone,
			})
		}

		if err := s.ValidateResident(res, fams); err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		residents = append(residents, res)
		families = append(families, fams)
	}

	if err := s.store.CreateResidents(ctx, residents, families); err != nil {
		return 0, err
	}
	s.audit(ctx, actor, "create", "resident", 0, fmt.Sprintf("seeded %d residents", len(residents)))
	return len(residents), nil
}

// ImportBills loads bill payments from CSV, resolving house numbers to
// residents. The batch saves in one transaction.
func (s *Service) ImportBills(ctx context.Context, actor string, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	if err := checkHeader(header, billsHeader); err != nil {
		return 0, err
	}

	residents, err := s.store.ListResidents(ctx, store.ResidentFilter{})
	if err != nil {
		return 0, err
	}
	byHouse := make(map[string]int64, len(residents))
	for _, res := range residents {
		byHouse[res.HouseNo] = res.ID
	}

	var bills []store.Bill
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}

		houseNo := strings.TrimSpace(rec[0])
		id, ok := byHouse[houseNo]
		if !ok {
			return 0, fmt.Errorf("line %d: unknown house %q", line, houseNo)
		}
		month := strings.TrimSpace(rec[1])
		if !ValidMonth(month) {
			return 0, fmt.Errorf("line %d: invalid month %q", line, month)
		}

		b := store.Bill{ResidentID: id, Month: month}
		if b.WaterPaid, err = parseAmount(rec[2]); err != nil {
			return 0, fmt.Errorf("line %d: water_paid: %w", line, err)
		}
		if b.SecurityPaid, err = parseAmount(rec[3]); err != nil {
			return 0, fmt.Errorf("line %d: security_paid: %w", line, err)
		}
		if b.SanitationPaid, err = parseAmount(rec[4]); err != nil {
			return 0, fmt.Errorf("line %d: sanitation_paid: %w", line, err)
		}
		bills = append(bills, b)
	}

	if err := s.store.SaveBills(ctx, bills); err != nil {
		return 0, err
	}
	s.audit(ctx, actor, "save", "bill", 0, fmt.Sprintf("seeded %d bills", len(bills)))
	return len(bills), nil
}

func parseAmount(field string) (int64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected a rupee amount, got %q", field)
	}
	if n < 0 {
		return 0, fmt.Errorf("amount must not be negative, got %d", n)
	}
	return n, nil
}
