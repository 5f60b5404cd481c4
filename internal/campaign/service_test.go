package campaign_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mwilde345/givehub/internal/campaign"
	"github.com/mwilde345/givehub/internal/user"
)

func validCreateParams(owner uuid.UUID) campaign.CreateParams {
	return campaign.CreateParams{
		Title:       "Clean Water for Turkana",
		Description: "Drill and maintain boreholes across the county.",
		Category:    campaign.CategoryHealthcare,
		GoalAmount:  500000,
		EndDate:     time.Now().Add(30 * 24 * time.Hour),
		CreatedBy:   owner,
	}
}

func TestService_Create(t *testing.T) {
	owner := uuid.New()

	type testCase struct {
		name      string
		mutate    func(p *campaign.CreateParams)
		setupMock func(m *campaign.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *campaign.MockRepository) {
				m.EXPECT().
					CreateCampaign(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *campaign.Campaign) error {
						c.ID = uuid.New()
						c.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name:    "TitleTooShort",
			mutate:  func(p *campaign.CreateParams) { p.Title = "Hey" },
			wantErr: true,
		},
		{
			name:    "DescriptionTooShort",
			mutate:  func(p *campaign.CreateParams) { p.Description = "short" },
			wantErr: true,
		},
		{
			name:    "NonPositiveGoal",
			mutate:  func(p *campaign.CreateParams) { p.GoalAmount = 0 },
			wantErr: true,
		},
		{
			name:    "UnknownCategory",
			mutate:  func(p *campaign.CreateParams) { p.Category = "Sports" },
			wantErr: true,
		},
		{
			name:    "EndDateInPast",
			mutate:  func(p *campaign.CreateParams) { p.EndDate = time.Now().Add(-time.Hour) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := campaign.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			params := validCreateParams(owner)
			if tt.mutate != nil {
				tt.mutate(&params)
			}

			svc := campaign.NewService(repo)

			got, err := svc.Create(context.Background(), params)
			if tt.wantErr {
				assert.ErrorIs(t, err, campaign.ErrInvalidField)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, campaign.StatusActive, got.Status)
			assert.Zero(t, got.CurrentAmount)
		})
	}
}

func TestService_Update_Authorization(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	stranger := uuid.New()
	id := uuid.New()

	repo := campaign.NewMockRepository(ctrl)
	repo.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
		ID: id, Title: "Original title", Description: "A long enough description",
		Category: campaign.CategoryEducation, GoalAmount: 1000, Status: campaign.StatusActive,
		CreatedBy: owner,
	}, nil)

	svc := campaign.NewService(repo)

	newTitle := "A brand new title"

	_, err := svc.Update(context.Background(), id, stranger, user.RoleModerator, campaign.UpdateParams{
		Title: &newTitle,
	})
	assert.ErrorIs(t, err, campaign.ErrForbidden)
}

func TestService_Update_GoalFloor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	id := uuid.New()

	repo := campaign.NewMockRepository(ctrl)
	repo.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
		ID: id, Title: "Original title", Description: "A long enough description",
		Category: campaign.CategoryEducation, GoalAmount: 1000, CurrentAmount: 400,
		Status: campaign.StatusActive, CreatedBy: owner,
	}, nil)

	svc := campaign.NewService(repo)

	lowGoal := int64(300)

	_, err := svc.Update(context.Background(), id, owner, user.RoleUser, campaign.UpdateParams{
		GoalAmount: &lowGoal,
	})
	assert.ErrorIs(t, err, campaign.ErrInvalidField)
}

func TestService_Update_CannotForceCompleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	id := uuid.New()

	repo := campaign.NewMockRepository(ctrl)
	repo.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
		ID: id, Title: "Original title", Description: "A long enough description",
		Category: campaign.CategoryEducation, GoalAmount: 1000, CurrentAmount: 400,
		Status: campaign.StatusActive, CreatedBy: owner,
	}, nil)

	svc := campaign.NewService(repo)

	completed := campaign.StatusCompleted

	_, err := svc.Update(context.Background(), id, owner, user.RoleAdmin, campaign.UpdateParams{
		Status: &completed,
	})
	assert.ErrorIs(t, err, campaign.ErrInvalidField)
}

func TestParseCategory(t *testing.T) {
	for _, valid := range []string{"Education", "Healthcare", "Environment", "Poverty", "Disaster Relief", "Other"} {
		c, err := campaign.ParseCategory(valid)
		require.NoError(t, err)
		assert.Equal(t, campaign.Category(valid), c)
	}

	_, err := campaign.ParseCategory("education")
	assert.ErrorIs(t, err, campaign.ErrInvalidField)
}

func TestCampaign_PercentFunded(t *testing.T) {
	c := &campaign.Campaign{GoalAmount: 200, CurrentAmount: 50}
	assert.Equal(t, 25, c.PercentFunded())
	assert.Equal(t, int64(150), c.Remaining())

	c.CurrentAmount = 200
	assert.Equal(t, 100, c.PercentFunded())
	assert.Zero(t, c.Remaining())
}
