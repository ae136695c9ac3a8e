// Package residents exposes the resident register over JSON.
package residents

import (
	"time"

	"github.com/townworks/townledger/internal/store"
)

// FamilyPayload is one per-floor family in requests and responses.
type FamilyPayload struct {
	Floor     int    `json:"floor"`
	HeadName  string `json:"head_name"`
	HeadCNIC  string `json:"head_cnic"`
	HeadPhone string `json:"head_phone"`
}

// ResidentPayload is the write shape for create and update.
type ResidentPayload struct {
	HouseNo    string `json:"house_no"`
	StreetName string `json:"street_name"`

	OwnerName  string `json:"owner_name"`
	OwnerCNIC  string `json:"owner_cnic"`
	OwnerPhone string `json:"owner_phone"`

	IsRent      bool   `json:"is_rent"`
	LesseeName  string `json:"lessee_name,omitempty"`
	LesseeCNIC  string `json:"lessee_cnic,omitempty"`
	LesseePhone string `json:"lessee_phone,omitempty"`

	Floors int `json:"floors"`

	Water      bool `json:"water"`
	Security   bool `json:"security"`
	Sanitation bool `json:"sanitation"`

	Families []FamilyPayload `json:"families"`
}

// ResidentResponse is the read shape.
type ResidentResponse struct {
	ID int64 `json:"id"`
	ResidentPayload
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeleteRequest names the residents to remove.
type DeleteRequest struct {
	IDs []int64 `json:"ids"`
}

func (p ResidentPayload) toStore() (*store.Resident, []store.Family) {
	r := &store.Resident{
		HouseNo:            p.HouseNo,
		StreetName:         p.StreetName,
		OwnerName:          p.OwnerName,
		OwnerCNIC:          p.OwnerCNIC,
		OwnerPhone:         p.OwnerPhone,
		IsRent:             p.IsRent,
		LesseeName:         p.LesseeName,
		LesseeCNIC:         p.LesseeCNIC,
		LesseePhone:        p.LesseePhone,
		Floors:             p.Floors,
		FacilityWater:      p.Water,
		FacilitySecurity:   p.Security,
		FacilitySanitation: p.Sanitation,
	}
	families := make([]store.Family, 0, len(p.Families))
	for _, f := range p.Families {
		families = append(families, store.Family{
			Floor:     f.Floor,
			HeadName:  f.HeadName,
			HeadCNIC:  f.HeadCNIC,
			HeadPhone: f.HeadPhone,
		})
	}
	return r, families
}

func fromStore(r *store.Resident) ResidentResponse {
	resp := ResidentResponse{
		ID: r.ID,
		ResidentPayload: ResidentPayload{
			HouseNo:     r.HouseNo,
			StreetName:  r.StreetName,
			OwnerName:   r.OwnerName,
			OwnerCNIC:   r.OwnerCNIC,
			OwnerPhone:  r.OwnerPhone,
			IsRent:      r.IsRent,
			LesseeName:  r.LesseeName,
			LesseeCNIC:  r.LesseeCNIC,
			LesseePhone: r.LesseePhone,
			Floors:      r.Floors,
			Water:       r.FacilityWater,
			Security:    r.FacilitySecurity,
			Sanitation:  r.FacilitySanitation,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, f := range r.Families {
		resp.Families = append(resp.Families, FamilyPayload{
			Floor:     f.Floor,
			HeadName:  f.HeadName,
			HeadCNIC:  f.HeadCNIC,
			HeadPhone: f.HeadPhone,
		})
	}
	return resp
}
