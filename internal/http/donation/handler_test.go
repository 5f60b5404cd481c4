package donation_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mwilde345/givehub/internal/campaign"
	"github.com/mwilde345/givehub/internal/donation"
	handler "github.com/mwilde345/givehub/internal/http/donation"
	"github.com/mwilde345/givehub/internal/http/middleware"
	"github.com/mwilde345/givehub/internal/user"
)

func postDonation(t *testing.T, h *handler.Handler, campaignID uuid.UUID, amount int64, actor *middleware.Actor) *httptest.ResponseRecorder {
	t.Helper()

	body := fmt.Sprintf(`{"campaign_id":%q,"amount":%d}`, campaignID, amount)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/donations", strings.NewReader(body))
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}

	rec := httptest.NewRecorder()
	h.Create(rec, req)

	return rec
}

func TestHandler_Create_ErrorMapping(t *testing.T) {
	actor := &middleware.Actor{ID: uuid.New(), Username: "alice", Email: "alice@example.com", Role: user.RoleUser}

	type testCase struct {
		name       string
		setupMock  func(ledger *donation.MockCampaignLedger, id uuid.UUID)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "CampaignNotFound",
			setupMock: func(ledger *donation.MockCampaignLedger, id uuid.UUID) {
				ledger.EXPECT().GetCampaign(gomock.Any(), id).Return(nil, campaign.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "CampaignClosed",
			setupMock: func(ledger *donation.MockCampaignLedger, id uuid.UUID) {
				ledger.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
					ID: id, GoalAmount: 100, Status: campaign.StatusClosed,
				}, nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "GoalReached",
			setupMock: func(ledger *donation.MockCampaignLedger, id uuid.UUID) {
				ledger.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
					ID: id, GoalAmount: 100, CurrentAmount: 100, Status: campaign.StatusActive,
				}, nil)
				ledger.EXPECT().MarkCompleted(gomock.Any(), id).Return(nil)
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := donation.NewMockRepository(ctrl)
			ledger := donation.NewMockCampaignLedger(ctrl)

			id := uuid.New()
			tt.setupMock(ledger, id)

			h := handler.NewHandler(donation.NewService(repo, ledger, nil))

			rec := postDonation(t, h, id, 10, actor)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Create_ExceedsRemainingCarriesHeadroom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	actor := &middleware.Actor{ID: uuid.New(), Role: user.RoleUser}

	repo := donation.NewMockRepository(ctrl)
	ledger := donation.NewMockCampaignLedger(ctrl)

	id := uuid.New()
	ledger.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
		ID: id, GoalAmount: 100, CurrentAmount: 90, Status: campaign.StatusActive,
	}, nil)

	h := handler.NewHandler(donation.NewService(repo, ledger, nil))

	rec := postDonation(t, h, id, 20, actor)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error     string `json:"error"`
		Remaining *int64 `json:"remaining"`
	}

	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Remaining)
	assert.Equal(t, int64(10), *resp.Remaining)
}

func TestHandler_Create_RequiresActor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := handler.NewHandler(donation.NewService(
		donation.NewMockRepository(ctrl),
		donation.NewMockCampaignLedger(ctrl),
		nil,
	))

	rec := postDonation(t, h, uuid.New(), 10, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Create_RejectsNonPositiveAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	actor := &middleware.Actor{ID: uuid.New(), Role: user.RoleUser}

	h := handler.NewHandler(donation.NewService(
		donation.NewMockRepository(ctrl),
		donation.NewMockCampaignLedger(ctrl),
		nil,
	))

	rec := postDonation(t, h, uuid.New(), 0, actor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
