package ledger

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townworks/townledger/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	st := store.NewSQLiteStore(nil)
	require.NoError(t, st.Open(":memory:"))
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate())
	return NewService(st, Config{}, nil), st
}

func sampleResident(houseNo, street string) (*store.Resident, []store.Family) {
	r := &store.Resident{
		HouseNo:            houseNo,
		StreetName:         street,
		OwnerName:          "Ahmed Khan",
		OwnerCNIC:          "35202-1234567-1",
		OwnerPhone:         "0300-1234567",
		Floors:             1,
		FacilityWater:      true,
		FacilitySecurity:   true,
		FacilitySanitation: true,
	}
	families := []store.Family{
		{Floor: 1, HeadName: "Ahmed Khan", HeadCNIC: "35202-1234567-1", HeadPhone: "0300-1234567"},
	}
	return r, families
}

func TestDefaultStreets(t *testing.T) {
	streets := DefaultStreets()
	assert.Len(t, streets, 27)
	assert.Equal(t, "Al-Rehman Road", streets[0])
	assert.Equal(t, "Street 1", streets[5])
	assert.Equal(t, "Street 22", streets[26])
}

func TestValidateResident(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		mutate  func(r *store.Resident, families []store.Family) []store.Family
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(r *store.Resident, f []store.Family) []store.Family { return f },
		},
		{
			name: "missing house number",
			mutate: func(r *store.Resident, f []store.Family) []store.Family {
				r.HouseNo = " "
				return f
			},
			wantErr: "house number is required",
		},
		{
			name: "unknown street",
			mutate: func(r *store.Resident, f []store.Family) []store.Family {
				r.StreetName = "Nowhere Lane"
				return f
			},
			wantErr: "unknown street",
		},
		{
			name: "rented without lessee",
			mutate: func(r *store.Resident, f []store.Family) []store.Family {
				r.IsRent = true
				return f
			},
			wantErr: "lessee",
		},
		{
			name: "lessee on owner-occupied house",
			mutate: func(r *store.Resident, f []store.Family) []store.Family {
				r.LesseeName = "Someone"
				return f
			},
			wantErr: "owner-occupied",
		},
		{
			name: "missing floor family",
			mutate: func(r *store.Resident, f []store.Family) []store.Family {
				r.Floors = 2
				return f
			},
			wantErr: "no family registered for floor 2",
		},
		{
			name: "duplicate floor family",
			mutate: func(r *store.Resident, f []store.Family) []store.Family {
				return append(f, f[0])
			},
			wantErr: "duplicate family for floor 1",
		},
		{
			name: "incomplete family head",
			mutate: func(r *store.Resident, f []store.Family) []store.Family {
				f[0].HeadPhone = ""
				return f
			},
			wantErr: "missing head details",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, families := sampleResident("A-1", "Ali Road")
			families = tt.mutate(r, families)
			err := svc.ValidateResident(r, families)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestService_RegisterAndAudit(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	r, families := sampleResident("A-1", "Ali Road")
	id, err := svc.RegisterResident(ctx, "admin", r, families)
	require.NoError(t, err)
	assert.Positive(t, id)

	events, err := st.ListAudit(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "admin", events[0].Actor)
	assert.Equal(t, "create", events[0].Action)
	assert.Equal(t, "resident", events[0].Entity)
	assert.Equal(t, id, events[0].EntityID)
}

func TestService_BillingSheet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r1, f1 := sampleResident("A-1", "Ali Road")
	id1, err := svc.RegisterResident(ctx, "admin", r1, f1)
	require.NoError(t, err)

	// Second house subscribes to water only.
	r2, f2 := sampleResident("A-2", "Ali Road")
	r2.FacilitySecurity = false
	r2.FacilitySanitation = false
	_, err = svc.RegisterResident(ctx, "admin", r2, f2)
	require.NoError(t, err)

	require.NoError(t, svc.SaveSheet(ctx, "admin", "2026-04", []store.Bill{
		{ResidentID: id1, WaterPaid: 500, SecurityPaid: 500, SanitationPaid: 600},
	}))

	sheet, err := svc.BillingSheet(ctx, "2026-04")
	require.NoError(t, err)
	require.Len(t, sheet, 2)

	// Sheet rows follow resident list order.
	paid := sheet[0]
	assert.Equal(t, "A-1", paid.Resident.HouseNo)
	assert.Equal(t, int64(2000), paid.TotalDue())
	assert.Equal(t, int64(1600), paid.TotalPaid())
	assert.Equal(t, int64(400), paid.Pending)

	unbilled := sheet[1]
	assert.Equal(t, "A-2", unbilled.Resident.HouseNo)
	assert.Equal(t, int64(500), unbilled.TotalDue())
	assert.Zero(t, unbilled.TotalPaid())
	assert.Equal(t, int64(500), unbilled.Pending)
}

func TestService_SaveSheet_RejectsNegative(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, f := sampleResident("A-1", "Ali Road")
	id, err := svc.RegisterResident(ctx, "admin", r, f)
	require.NoError(t, err)

	err = svc.SaveSheet(ctx, "admin", "2026-04", []store.Bill{
		{ResidentID: id, WaterPaid: -1},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestService_Defaulters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r1, f1 := sampleResident("A-1", "Ali Road")
	id1, err := svc.RegisterResident(ctx, "admin", r1, f1)
	require.NoError(t, err)

	r2, f2 := sampleResident("A-2", "Ali Road")
	id2, err := svc.RegisterResident(ctx, "admin", r2, f2)
	require.NoError(t, err)

	// A-1 settles the month in full, A-2 pays water only.
	require.NoError(t, svc.SaveSheet(ctx, "admin", "2026-02", []store.Bill{
		{ResidentID: id1, WaterPaid: 500, SecurityPaid: 500, SanitationPaid: 1000},
		{ResidentID: id2, WaterPaid: 500},
	}))

	defaulters, err := svc.Defaulters(ctx, DefaulterScope{Month: "2026-02"}, nil)
	require.NoError(t, err)
	require.Len(t, defaulters, 1)
	d := defaulters[0]
	assert.Equal(t, "A-2", d.Resident.HouseNo)
	assert.Zero(t, d.WaterPending)
	assert.Equal(t, int64(500), d.SecurityPending)
	assert.Equal(t, int64(1000), d.SanitationPending)
	assert.Equal(t, int64(1500), d.TotalPending)

	// Filtering to water hides the resident who settled water.
	defaulters, err = svc.Defaulters(ctx, DefaulterScope{Month: "2026-02"}, []string{ServiceWater})
	require.NoError(t, err)
	assert.Empty(t, defaulters)

	// Unknown services surface as a validation error.
	_, err = svc.Defaulters(ctx, DefaulterScope{Month: "2026-02"}, []string{"gas"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestService_Defaulters_YearScope(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, f := sampleResident("A-1", "Ali Road")
	id, err := svc.RegisterResident(ctx, "admin", r, f)
	require.NoError(t, err)

	// One fully paid month in a past year leaves eleven months pending.
	require.NoError(t, svc.SaveSheet(ctx, "admin", "2020-01", []store.Bill{
		{ResidentID: id, WaterPaid: 500, SecurityPaid: 500, SanitationPaid: 1000},
	}))

	defaulters, err := svc.Defaulters(ctx, DefaulterScope{Year: 2020}, nil)
	require.NoError(t, err)
	require.Len(t, defaulters, 1)
	assert.Equal(t, 12, defaulters[0].Months)
	assert.Equal(t, int64(2000*12-2000), defaulters[0].TotalPending)
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		name    string
		month   string
		year    string
		want    DefaulterScope
		wantErr bool
	}{
		{name: "month", month: "2026-03", want: DefaulterScope{Month: "2026-03"}},
		{name: "year", year: "2026", want: DefaulterScope{Year: 2026}},
		{name: "both", month: "2026-03", year: "2026", wantErr: true},
		{name: "neither", wantErr: true},
		{name: "bad month", month: "March", wantErr: true},
		{name: "bad year", year: "26", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScope(tt.month, tt.year)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthsOfYear(t *testing.T) {
	now := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)

	assert.Len(t, MonthsOfYear(2025, now), 12)
	assert.Empty(t, MonthsOfYear(2027, now))

	current := MonthsOfYear(2026, now)
	require.Len(t, current, 8)
	assert.Equal(t, "2026-01", current[0])
	assert.Equal(t, "2026-08", current[7])
}

func TestService_Overview(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r1, f1 := sampleResident("A-1", "Ali Road")
	id1, err := svc.RegisterResident(ctx, "admin", r1, f1)
	require.NoError(t, err)

	r2, f2 := sampleResident("B-1", "Street 4")
	r2.IsRent = true
	r2.LesseeName = "Tariq Mehmood"
	r2.LesseeCNIC = "35201-1112223-5"
	r2.LesseePhone = "0333-5556677"
	_, err = svc.RegisterResident(ctx, "admin", r2, f2)
	require.NoError(t, err)

	require.NoError(t, svc.SaveSheet(ctx, "admin", "2026-01", []store.Bill{
		{ResidentID: id1, WaterPaid: 500, SecurityPaid: 500, SanitationPaid: 1000},
	}))
	_, err = svc.OpenFund(ctx, "admin", "Mosque Renovation", "2026-01")
	require.NoError(t, err)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.Houses)
	assert.Equal(t, 2, ov.Streets)
	assert.Equal(t, 1, ov.Rented)
	assert.Equal(t, 2, ov.Families)
	assert.Len(t, ov.HousesPerStreet, 27)
	assert.Len(t, ov.Funds, 1)

	require.Len(t, ov.Billing, 1)
	assert.Equal(t, "2026-01", ov.Billing[0].Month)
	assert.Equal(t, 1, ov.Billing[0].Billed)
	assert.Equal(t, int64(2000), ov.Billing[0].Collected)
	assert.Equal(t, 1, ov.Billing[0].Settled)

	// Street catalogue stays zero-filled for empty streets.
	var aliRoad StreetCount
	for _, sc := range ov.HousesPerStreet {
		if sc.Street == "Ali Road" {
			aliRoad = sc
		}
	}
	assert.Equal(t, 1, aliRoad.Houses)
}

func TestService_ResidentSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, f := sampleResident("A-1", "Ali Road")
	id, err := svc.RegisterResident(ctx, "admin", r, f)
	require.NoError(t, err)

	require.NoError(t, svc.SaveSheet(ctx, "admin", "2026-01", []store.Bill{
		{ResidentID: id, WaterPaid: 500, SecurityPaid: 500, SanitationPaid: 1000},
	}))
	require.NoError(t, svc.SaveSheet(ctx, "admin", "2026-02", []store.Bill{
		{ResidentID: id, WaterPaid: 500},
	}))

	fundID, err := svc.OpenFund(ctx, "admin", "Eid Drive", "2026-02")
	require.NoError(t, err)
	require.NoError(t, svc.SaveFundContributions(ctx, "admin", fundID,
		[]store.Contribution{{ResidentID: id, Amount: 1500}}, nil))

	sum, err := svc.ResidentSummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A-1", sum.Resident.HouseNo)
	require.Len(t, sum.Bills, 2)
	assert.Equal(t, int64(4000), sum.TotalDue)
	assert.Equal(t, int64(2500), sum.TotalPaid)
	assert.Equal(t, int64(1500), sum.TotalPending)
	require.Len(t, sum.Contributions, 1)
	assert.Equal(t, int64(1500), sum.TotalContributed)
}

func TestService_ImportResidents(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"house_no,street_name,owner_name,owner_cnic,owner_phone,is_rent,lessee_name,lessee_cnic,lessee_phone,floors,water,security,sanitation",
		"A-1,Ali Road,Ahmed Khan,35202-1234567-1,0300-1234567,no,,,,2,yes,yes,yes",
		"A-2,Street 4,Sara Bibi,35202-9998887-2,0301-2223344,yes,Tariq Mehmood,35201-1112223-5,0333-5556677,1,yes,no,no",
	}, "\n")

	n, err := svc.ImportResidents(ctx, "admin", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	residents, err := svc.Residents(ctx, store.ResidentFilter{})
	require.NoError(t, err)
	require.Len(t, residents, 2)

	// Rented house: families are headed by the lessee.
	var rented *store.Resident
	for _, res := range residents {
		if res.HouseNo == "A-2" {
			rented = res
		}
	}
	require.NotNil(t, rented)
	full, err := svc.Resident(ctx, rented.ID)
	require.NoError(t, err)
	require.Len(t, full.Families, 1)
	assert.Equal(t, "Tariq Mehmood", full.Families[0].HeadName)
}

func TestService_ImportResidents_BadFileLeavesLedgerUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"house_no,street_name,owner_name,owner_cnic,owner_phone,is_rent,lessee_name,lessee_cnic,lessee_phone,floors,water,security,sanitation",
		"A-1,Ali Road,Ahmed Khan,35202-1234567-1,0300-1234567,no,,,,1,yes,yes,yes",
		"A-2,Nowhere Lane,Sara Bibi,35202-9998887-2,0301-2223344,no,,,,1,yes,no,no",
	}, "\n")

	_, err := svc.ImportResidents(ctx, "admin", strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown street")

	residents, err := svc.Residents(ctx, store.ResidentFilter{})
	require.NoError(t, err)
	assert.Empty(t, residents)
}

func TestService_ImportResidents_DuplicateHouseRollsBack(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	r, f := sampleResident("A-1", "Ali Road")
	_, err := svc.RegisterResident(ctx, "admin", r, f)
	require.NoError(t, err)

	// A-2 parses and validates, but the trailing A-1 collides with the
	// registered house. Neither row may survive.
	csvData := strings.Join([]string{
		"house_no,street_name,owner_name,owner_cnic,owner_phone,is_rent,lessee_name,lessee_cnic,lessee_phone,floors,water,security,sanitation",
		"A-2,Ali Road,Sara Bibi,35202-9998887-2,0301-2223344,no,,,,1,yes,no,no",
		"A-1,Ali Road,Ahmed Khan,35202-1234567-1,0300-1234567,no,,,,1,yes,yes,yes",
	}, "\n")

	_, err = svc.ImportResidents(ctx, "admin", strings.NewReader(csvData))
	require.ErrorIs(t, err, store.ErrHouseExists)

	residents, err := svc.Residents(ctx, store.ResidentFilter{})
	require.NoError(t, err)
	require.Len(t, residents, 1)
	assert.Equal(t, "A-1", residents[0].HouseNo)

	// Only the original registration is audited.
	events, err := st.ListAudit(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestService_ImportResidents_RejectsBadHeader(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ImportResidents(context.Background(), "admin",
		strings.NewReader("house,street\nA-1,Ali Road"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestService_ImportBills(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, f := sampleResident("A-1", "Ali Road")
	_, err := svc.RegisterResident(ctx, "admin", r, f)
	require.NoError(t, err)

	csvData := strings.Join([]string{
		"house_no,month,water_paid,security_paid,sanitation_paid",
		"A-1,2026-01,500,500,1000",
		"A-1,2026-02,500,,",
	}, "\n")

	n, err := svc.ImportBills(ctx, "admin", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sheet, err := svc.BillingSheet(ctx, "2026-02")
	require.NoError(t, err)
	require.Len(t, sheet, 1)
	assert.Equal(t, int64(500), sheet[0].WaterPaid)
	assert.Zero(t, sheet[0].SecurityPaid)
}

func TestService_ExportRoundTrips(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, f := sampleResident("A-1", "Ali Road")
	id, err := svc.RegisterResident(ctx, "admin", r, f)
	require.NoError(t, err)
	require.NoError(t, svc.SaveSheet(ctx, "admin", "2026-01", []store.Bill{
		{ResidentID: id, WaterPaid: 500},
	}))

	var residents bytes.Buffer
	require.NoError(t, svc.ExportResidents(ctx, &residents))
	assert.Contains(t, residents.String(), "A-1,Ali Road,Ahmed Khan")

	var sheet bytes.Buffer
	require.NoError(t, svc.ExportBillingSheet(ctx, &sheet, "2026-01"))
	assert.Contains(t, sheet.String(), "house_no,street_name,owner_name")
	assert.Contains(t, sheet.String(), "A-1,Ali Road,Ahmed Khan,500,500,500,0,1000,0,1500")

	var defaulters bytes.Buffer
	require.NoError(t, svc.ExportDefaulters(ctx, &defaulters, DefaulterScope{Month: "2026-01"}, nil))
	assert.Contains(t, defaulters.String(), "A-1")
	assert.Contains(t, defaulters.String(), "1500")
}

func TestService_FundLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, f := sampleResident("A-1", "Ali Road")
	id, err := svc.RegisterResident(ctx, "admin", r, f)
	require.NoError(t, err)

	fundID, err := svc.OpenFund(ctx, "admin", "Security Wall", "2026-03")
	require.NoError(t, err)

	again, err := svc.OpenFund(ctx, "admin", "Security Wall", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, fundID, again)

	_, err = svc.OpenFund(ctx, "admin", "  ", "2026-03")
	assert.Error(t, err)

	err = svc.SaveFundContributions(ctx, "admin", fundID,
		[]store.Contribution{{ResidentID: id, Amount: 0}}, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	require.NoError(t, svc.SaveFundContributions(ctx, "admin", fundID,
		[]store.Contribution{{ResidentID: id, Amount: 2500}}, nil))

	fund, err := svc.Fund(ctx, fundID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), fund.TotalAmount)

	require.NoError(t, svc.CloseFund(ctx, "admin", fundID))
	_, err = svc.Fund(ctx, fundID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestService_StreetRecoveryForMonth(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, f := sampleResident("A-1", "Ali Road")
	id, err := svc.RegisterResident(ctx, "admin", r, f)
	require.NoError(t, err)
	require.NoError(t, svc.SaveSheet(ctx, "admin", "2026-01", []store.Bill{
		{ResidentID: id, WaterPaid: 500, SecurityPaid: 500},
	}))

	recovery, err := svc.StreetRecoveryForMonth(ctx, "2026-01")
	require.NoError(t, err)
	require.Len(t, recovery, 27)

	var aliRoad StreetRecovery
	for _, rec := range recovery {
		if rec.Street == "Ali Road" {
			aliRoad = rec
		}
	}
	assert.Equal(t, int64(2000), aliRoad.Due)
	assert.Equal(t, int64(1000), aliRoad.Collected)
}
