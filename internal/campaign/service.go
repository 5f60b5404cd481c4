package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mwilde345/givehub/internal/user"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=campaign
type Repository interface {
	CreateCampaign(ctx context.Context, c *Campaign) error
	GetCampaign(ctx context.Context, id uuid.UUID) (*Campaign, error)
	ListCampaigns(ctx context.Context, filter ListFilter) ([]*Campaign, error)
	UpdateCampaign(ctx context.Context, c *Campaign) error
	DeleteCampaign(ctx context.Context, id uuid.UUID) error

	// ApplyDonation atomically adds amount to the campaign's total, flipping
	// status to completed when the goal is reached. The guard rejects rather
	// than overshoots; see the store for the classification of rejections.
	ApplyDonation(ctx context.Context, id uuid.UUID, amount int64) (*Campaign, error)

	// MarkCompleted flips an active campaign whose total already covers its
	// goal to completed. Idempotent and safe to race.
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Title       string
	Description string
	Category    Category
	GoalAmount  int64
	EndDate     time.Time
	ImageURL    string
	CreatedBy   uuid.UUID
}

type ListFilter struct {
	Status   *Status
	Category *Category
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Campaign, error) {
	if l := len(params.Title); l < 5 || l > 200 {
		return nil, fmt.Errorf("%w: title must be 5-200 characters", ErrInvalidField)
	}

	if len(params.Description) < 10 {
		return nil, fmt.Errorf("%w: description must be at least 10 characters", ErrInvalidField)
	}

	if params.GoalAmount <= 0 {
		return nil, fmt.Errorf("%w: goal amount must be positive", ErrInvalidField)
	}

	if _, err := ParseCategory(string(params.Category)); err != nil {
		return nil, err
	}

	if !params.EndDate.After(time.Now()) {
		return nil, fmt.Errorf("%w: end date must be in the future", ErrInvalidField)
	}

	c := &Campaign{
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		GoalAmount:  params.GoalAmount,
		Status:      StatusActive,
		ImageURL:    params.ImageURL,
		EndDate:     params.EndDate,
		CreatedBy:   params.CreatedBy,
	}

	if err := s.repo.CreateCampaign(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	return s.repo.GetCampaign(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Campaign, error) {
	return s.repo.ListCampaigns(ctx, filter)
}

type UpdateParams struct {
	Title       *string
	Description *string
	Category    *Category
	GoalAmount  *int64
	Status      *Status
	EndDate     *time.Time
	ImageURL    *string
}

// Update applies descriptive edits. Only the owner or an admin may edit; the
// goal can never drop below what has already been raised, which keeps the
// accumulated-within-goal invariant intact under edits as well as donations.
func (s *Service) Update(ctx context.Context, id, actorID uuid.UUID, actorRole user.Role, params UpdateParams) (*Campaign, error) {
	c, err := s.repo.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.CreatedBy != actorID && actorRole != user.RoleAdmin {
		return nil, ErrForbidden
	}

	if params.Title != nil {
		if l := len(*params.Title); l < 5 || l > 200 {
			return nil, fmt.Errorf("%w: title must be 5-200 characters", ErrInvalidField)
		}

		c.Title = *params.Title
	}

	if params.Description != nil {
		if len(*params.Description) < 10 {
			return nil, fmt.Errorf("%w: description must be at least 10 characters", ErrInvalidField)
		}

		c.Description = *params.Description
	}

	if params.Category != nil {
		cat, err := ParseCategory(string(*params.Category))
		if err != nil {
			return nil, err
		}

		c.Category = cat
	}

	if params.GoalAmount != nil {
		if *params.GoalAmount <= 0 {
			return nil, fmt.Errorf("%w: goal amount must be positive", ErrInvalidField)
		}

		if *params.GoalAmount < c.CurrentAmount {
			return nil, fmt.Errorf("%w: goal amount cannot be below the amount already raised", ErrInvalidField)
		}

		c.GoalAmount = *params.GoalAmount
	}

	if params.Status != nil {
		if !params.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidField, *params.Status)
		}

		// Completed is owned by the acceptance path; edits may only open or
		// administratively close a campaign.
		if *params.Status == StatusCompleted && c.CurrentAmount < c.GoalAmount {
			return nil, fmt.Errorf("%w: cannot mark completed before the goal is reached", ErrInvalidField)
		}

		c.Status = *params.Status
	}

	if params.EndDate != nil {
		if !params.EndDate.After(time.Now()) {
			return nil, fmt.Errorf("%w: end date must be in the future", ErrInvalidField)
		}

		c.EndDate = *params.EndDate
	}

	if params.ImageURL != nil {
		c.ImageURL = *params.ImageURL
	}

	if err := s.repo.UpdateCampaign(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetCampaign(ctx, id); err != nil {
		return err
	}

	return s.repo.DeleteCampaign(ctx, id)
}
