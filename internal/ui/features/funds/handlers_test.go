package funds_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townworks/townledger/internal/store"
	"github.com/townworks/townledger/internal/ui/features"
	"github.com/townworks/townledger/internal/ui/features/funds"
)

func seedResident(t *testing.T, f *features.TestFixture) int64 {
	t.Helper()
	r := &store.Resident{
		HouseNo:    "A-1",
		StreetName: "Ali Road",
		OwnerName:  "Ahmed Khan",
		OwnerCNIC:  "35202-1234567-1",
		OwnerPhone: "0300-1234567",
		Floors:     1,
	}
	families := []store.Family{
		{Floor: 1, HeadName: "Ahmed Khan", HeadCNIC: "35202-1234567-1", HeadPhone: "0300-1234567"},
	}
	id, err := f.Ledger.RegisterResident(context.Background(), "admin", r, families)
	require.NoError(t, err)
	return id
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func createFund(t *testing.T, f *features.TestFixture) funds.FundResponse {
	t.Helper()
	rec := f.Do(jsonReq(http.MethodPost, "/api/funds/",
		`{"title": "Mosque Renovation", "month": "2026-05"}`), f.AdminCookie())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp funds.FundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestFunds_CreateIsIdempotent(t *testing.T) {
	f := features.SetupTestFixture(t)

	first := createFund(t, f)
	second := createFund(t, f)
	assert.Equal(t, first.ID, second.ID)
}

func TestFunds_ContributionSheet(t *testing.T) {
	f := features.SetupTestFixture(t)
	residentID := seedResident(t, f)
	fund := createFund(t, f)

	body := fmt.Sprintf(`{"entries": [{"resident_id": %d, "amount": 1500}]}`, residentID)
	rec := f.Do(jsonReq(http.MethodPut,
		fmt.Sprintf("/api/funds/%d/contributions", fund.ID), body), f.AdminCookie())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.Do(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/funds/%d/contributions", fund.ID), nil), f.ClerkCookie())
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []funds.ContributionPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1500), entries[0].Amount)

	// Removing the resident empties the sheet.
	body = fmt.Sprintf(`{"entries": [], "removed": [%d]}`, residentID)
	rec = f.Do(jsonReq(http.MethodPut,
		fmt.Sprintf("/api/funds/%d/contributions", fund.ID), body), f.AdminCookie())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.Do(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/funds/%d/contributions", fund.ID), nil), f.ClerkCookie())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Empty(t, entries)
}

func TestFunds_ZeroAmountRejected(t *testing.T) {
	f := features.SetupTestFixture(t)
	residentID := seedResident(t, f)
	fund := createFund(t, f)

	body := fmt.Sprintf(`{"entries": [{"resident_id": %d, "amount": 0}]}`, residentID)
	rec := f.Do(jsonReq(http.MethodPut,
		fmt.Sprintf("/api/funds/%d/contributions", fund.ID), body), f.AdminCookie())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFunds_DeleteIsAdminOnly(t *testing.T) {
	f := features.SetupTestFixture(t)
	fund := createFund(t, f)

	rec := f.Do(httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/api/funds/%d", fund.ID), nil), f.ClerkCookie())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.Do(httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/api/funds/%d", fund.ID), nil), f.AdminCookie())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.Do(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/funds/%d/contributions", fund.ID), nil), f.AdminCookie())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFunds_List(t *testing.T) {
	f := features.SetupTestFixture(t)
	createFund(t, f)

	rec := f.Do(httptest.NewRequest(http.MethodGet, "/api/funds/", nil), f.ClerkCookie())
	require.Equal(t, http.StatusOK, rec.Code)

	var list []funds.FundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Mosque Renovation", list[0].Title)
}
