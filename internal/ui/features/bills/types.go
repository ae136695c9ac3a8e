// Package bills exposes monthly billing sheets over JSON.
package bills

// SheetRowResponse is one resident's line on the sheet.
type SheetRowResponse struct {
	ResidentID int64  `json:"resident_id"`
	HouseNo    string `json:"house_no"`
	StreetName string `json:"street_name"`
	OwnerName  string `json:"owner_name"`

	WaterDue      int64 `json:"water_due"`
	SecurityDue   int64 `json:"security_due"`
	SanitationDue int64 `json:"sanitation_due"`

	WaterPaid      int64 `json:"water_paid"`
	SecurityPaid   int64 `json:"security_paid"`
	SanitationPaid int64 `json:"sanitation_paid"`

	Pending int64 `json:"pending"`
}

// SheetResponse is one month's full sheet.
type SheetResponse struct {
	Month string             `json:"month"`
	Rows  []SheetRowResponse `json:"rows"`
}

// SaveEntry is one payment line in a save request.
type SaveEntry struct {
	ResidentID     int64 `json:"resident_id"`
	WaterPaid      int64 `json:"water_paid"`
	SecurityPaid   int64 `json:"security_paid"`
	SanitationPaid int64 `json:"sanitation_paid"`
}

// SaveRequest is the batch payment submission for a month.
type SaveRequest struct {
	Entries []SaveEntry `json:"entries"`
}
