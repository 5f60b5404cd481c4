package campaign

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category is the fixed set of causes a campaign can belong to.
type Category string

const (
	CategoryEducation      Category = "Education"
	CategoryHealthcare     Category = "Healthcare"
	CategoryEnvironment    Category = "Environment"
	CategoryPoverty        Category = "Poverty"
	CategoryDisasterRelief Category = "Disaster Relief"
	CategoryOther          Category = "Other"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryEducation, CategoryHealthcare, CategoryEnvironment,
		CategoryPoverty, CategoryDisasterRelief, CategoryOther:
		return c, nil
	}

	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidField, s)
}

// Status is the campaign lifecycle state. Completed is reached only through
// the donation acceptance path when the goal is met; closed is administrative.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusClosed    Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusClosed:
		return true
	}

	return false
}

var (
	ErrNotFound     = errors.New("campaign not found")
	ErrNotActive    = errors.New("campaign is not active")
	ErrGoalReached  = errors.New("campaign goal already reached")
	ErrForbidden    = errors.New("not authorized to modify this campaign")
	ErrInvalidField = errors.New("invalid campaign field")
)

// ExceedsRemainingError reports a donation larger than the campaign's
// remaining headroom. It carries the exact headroom so the caller can retry
// with a valid amount.
type ExceedsRemainingError struct {
	Remaining int64
}

func (e *ExceedsRemainingError) Error() string {
	return fmt.Sprintf("amount exceeds remaining headroom: %d remaining", e.Remaining)
}

// Campaign is a funding goal with an accumulated total. Amounts are in cents.
type Campaign struct {
	ID            uuid.UUID
	Title         string
	Description   string
	Category      Category
	GoalAmount    int64
	CurrentAmount int64
	Status        Status
	ImageURL      string
	EndDate       time.Time
	CreatedBy     uuid.UUID
	Creator       *CreatorRef // Loaded via JOIN
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
}

// CreatorRef is the display subset of the owning user.
type CreatorRef struct {
	ID       uuid.UUID
	Username string
}

// Remaining is the headroom left before the goal is met.
func (c *Campaign) Remaining() int64 {
	if r := c.GoalAmount - c.CurrentAmount; r > 0 {
		return r
	}

	return 0
}

// PercentFunded is the funded share rounded to whole percent, capped at 100.
func (c *Campaign) PercentFunded() int {
	if c.GoalAmount <= 0 {
		return 0
	}

	pct := int((c.CurrentAmount*100 + c.GoalAmount/2) / c.GoalAmount)
	if pct > 100 {
		return 100
	}

	return pct
}
