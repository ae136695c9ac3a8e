// Package funds exposes community fund drives over JSON.
package funds

import (
	"time"

	"github.com/townworks/townledger/internal/store"
)

// FundResponse is one fund with its aggregates.
type FundResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Month        string    `json:"month"`
	CreatedAt    time.Time `json:"created_at"`
	TotalAmount  int64     `json:"total_amount"`
	Contributors int       `json:"contributors"`
}

// CreateRequest opens a fund drive.
type CreateRequest struct {
	Title string `json:"title"`
	Month string `json:"month"`
}

// ContributionPayload is one resident's entry on a fund sheet.
type ContributionPayload struct {
	ResidentID int64 `json:"resident_id"`
	Amount     int64 `json:"amount"`
}

// SaveContributionsRequest applies a contribution sheet: entries upsert,
// removed residents are taken off the fund.
type SaveContributionsRequest struct {
	Entries []ContributionPayload `json:"entries"`
	Removed []int64               `json:"removed,omitempty"`
}

func fromStore(f store.Fund) FundResponse {
	return FundResponse{
		ID:           f.ID,
		Title:        f.Title,
		Month:        f.Month,
		CreatedAt:    f.CreatedAt,
		TotalAmount:  f.TotalAmount,
		Contributors: f.Contributors,
	}
}
