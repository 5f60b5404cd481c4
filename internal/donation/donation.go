package donation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a donation record. A completed donation is
// one whose amount has been applied to its campaign's total; failed marks a
// record that was voided before the ledger accepted it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var (
	ErrNotFound      = errors.New("donation not found")
	ErrInvalidAmount = errors.New("invalid donation amount")
	ErrMissingDonor  = errors.New("donor is required")
	ErrForbidden     = errors.New("not authorized to view this donation")

	// ErrInconsistent reports that a donation record was written but its
	// application to the campaign could not be confirmed or voided. The
	// reconciliation sweep is the operational safety net for this state.
	ErrInconsistent = errors.New("donation recorded but may not have been applied")
)

// Donation is a single contribution applied to a campaign. Amount is in cents.
type Donation struct {
	ID          uuid.UUID
	Amount      int64
	CampaignID  uuid.UUID
	DonorID     uuid.UUID
	Message     string
	IsAnonymous bool
	Status      Status
	Donor       *DonorRef    // Loaded via JOIN
	Campaign    *CampaignRef // Loaded via JOIN
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// DonorRef is the display subset of the donating user.
type DonorRef struct {
	ID       uuid.UUID
	Username string
	Email    string
}

// CampaignRef is the display subset of the target campaign.
type CampaignRef struct {
	ID         uuid.UUID
	Title      string
	GoalAmount int64
}
