package campaign

import (
	"time"

	"github.com/google/uuid"

	"github.com/mwilde345/givehub/internal/campaign"
)

type creatorResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type campaignResponse struct {
	ID            uuid.UUID         `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Category      campaign.Category `json:"category"`
	GoalAmount    int64             `json:"goal_amount"`
	CurrentAmount int64             `json:"current_amount"`
	Remaining     int64             `json:"remaining"`
	PercentFunded int               `json:"percent_funded"`
	Status        campaign.Status   `json:"status"`
	ImageURL      string            `json:"image_url,omitempty"`
	EndDate       time.Time         `json:"end_date"`
	Creator       *creatorResponse  `json:"created_by,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     *time.Time        `json:"updated_at,omitempty"`
}

func toResponse(c *campaign.Campaign) campaignResponse {
	resp := campaignResponse{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		GoalAmount:    c.GoalAmount,
		CurrentAmount: c.CurrentAmount,
		Remaining:     c.Remaining(),
		PercentFunded: c.PercentFunded(),
		Status:        c.Status,
		ImageURL:      c.ImageURL,
		EndDate:       c.EndDate,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}

	if c.Creator != nil {
		resp.Creator = &creatorResponse{ID: c.Creator.ID, Username: c.Creator.Username}
	}

	return resp
}

func toResponseList(cs []*campaign.Campaign) []campaignResponse {
	resp := make([]campaignResponse, len(cs))
	for i, c := range cs {
		resp[i] = toResponse(c)
	}

	return resp
}
