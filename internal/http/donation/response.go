package donation

import (
	"time"

	"github.com/google/uuid"

	"github.com/mwilde345/givehub/internal/donation"
)

type donorResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type campaignRefResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	GoalAmount int64     `json:"goal_amount"`
}

type donationResponse struct {
	ID          uuid.UUID            `json:"id"`
	Amount      int64                `json:"amount"`
	Campaign    *campaignRefResponse `json:"campaign,omitempty"`
	Donor       *donorResponse       `json:"donor,omitempty"`
	Message     string               `json:"message,omitempty"`
	IsAnonymous bool                 `json:"is_anonymous"`
	Status      donation.Status      `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

// toResponse renders a donation. With hideAnonymousDonor set, the donor ref
// is withheld for anonymous donations; the donor's own listings keep it.
func toResponse(d *donation.Donation, hideAnonymousDonor bool) donationResponse {
	resp := donationResponse{
		ID:          d.ID,
		Amount:      d.Amount,
		Message:     d.Message,
		IsAnonymous: d.IsAnonymous,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
	}

	if d.Campaign != nil {
		resp.Campaign = &campaignRefResponse{
			ID:         d.Campaign.ID,
			Title:      d.Campaign.Title,
			GoalAmount: d.Campaign.GoalAmount,
		}
	}

	if d.Donor != nil && !(hideAnonymousDonor && d.IsAnonymous) {
		resp.Donor = &donorResponse{ID: d.Donor.ID, Username: d.Donor.Username}
	}

	return resp
}

func toResponseList(ds []*donation.Donation, hideAnonymousDonor bool) []donationResponse {
	resp := make([]donationResponse, len(ds))
	for i, d := range ds {
		resp[i] = toResponse(d, hideAnonymousDonor)
	}

	return resp
}
