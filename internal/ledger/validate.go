package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/townworks/townledger/internal/store"
)

// ValidationError collects every problem found in a submission so the
// office clerk can fix the form in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid record: " + strings.Join(e.Problems, "; ")
}

// ValidateResident checks a resident record and its families against
// the registration rules: mandatory owner details, a street from the
// catalogue, the lessee triple exactly when the house is rented, and
// one complete family per floor.
func (s *Service) ValidateResident(r *store.Resident, families []store.Family) error {
	var problems []string

	if strings.TrimSpace(r.HouseNo) == "" {
		problems = append(problems, "house number is required")
	}
	if strings.TrimSpace(r.StreetName) == "" {
		problems = append(problems, "street name is required")
	} else if !slices.Contains(s.streets, r.StreetName) {
		problems = append(problems, fmt.Sprintf("unknown street %q", r.StreetName))
	}
	if strings.TrimSpace(r.OwnerName) == "" {
		problems = append(problems, "owner name is required")
	}
	if strings.TrimSpace(r.OwnerCNIC) == "" {
		problems = append(problems, "owner CNIC is required")
	}
	if strings.TrimSpace(r.OwnerPhone) == "" {
		problems = append(problems, "owner phone is required")
	}

	if r.IsRent {
		if strings.TrimSpace(r.LesseeName) == "" ||
			strings.TrimSpace(r.LesseeCNIC) == "" ||
			strings.TrimSpace(r.LesseePhone) == "" {
			problems = append(problems, "rented house needs lessee name, CNIC and phone")
		}
	} else if r.LesseeName != "" || r.LesseeCNIC != "" || r.LesseePhone != "" {
		problems = append(problems, "lessee details given for an owner-occupied house")
	}

	if r.Floors < 1 {
		problems = append(problems, "floors must be at least 1")
	} else {
		seen := make(map[int]bool, len(families))
		for _, f := range families {
			if f.Floor < 1 || f.Floor > r.Floors {
				problems = append(problems, fmt.Sprintf("family floor %d outside 1..%d", f.Floor, r.Floors))
				continue
			}
			if seen[f.Floor] {
				problems = append(problems, fmt.Sprintf("duplicate family for floor %d", f.Floor))
			}
			seen[f.Floor] = true
			if strings.TrimSpace(f.HeadName) == "" ||
				strings.TrimSpace(f.HeadCNIC) == "" ||
				strings.TrimSpace(f.HeadPhone) == "" {
				problems = append(problems, fmt.Sprintf("family on floor %d is missing head details", f.Floor))
			}
		}
		for floor := 1; floor <= r.Floors; floor++ {
			if !seen[floor] {
				problems = append(problems, fmt.Sprintf("no family registered for floor %d", floor))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
