package donation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mwilde345/givehub/internal/campaign"
	"github.com/mwilde345/givehub/internal/donation"
)

// fakeLedger is an in-memory campaign ledger whose ApplyDonation mirrors the
// store's conditional-update semantics: the guard and the increment are one
// critical section, so concurrent accepts exercise the same commit gate the
// database provides.
type fakeLedger struct {
	mu sync.Mutex
	c  *campaign.Campaign
}

func newFakeLedger(goal, current int64, status campaign.Status) *fakeLedger {
	return &fakeLedger{c: &campaign.Campaign{
		ID:            uuid.New(),
		Title:         "Test Campaign",
		GoalAmount:    goal,
		CurrentAmount: current,
		Status:        status,
	}}
}

func (f *fakeLedger) snapshot() campaign.Campaign {
	f.mu.Lock()
	defer f.mu.Unlock()

	return *f.c
}

func (f *fakeLedger) GetCampaign(_ context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id != f.c.ID {
		return nil, campaign.ErrNotFound
	}

	c := *f.c

	return &c, nil
}

func (f *fakeLedger) ApplyDonation(_ context.Context, id uuid.UUID, amount int64) (*campaign.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id != f.c.ID {
		return nil, campaign.ErrNotFound
	}

	switch {
	case f.c.Status == campaign.StatusCompleted:
		return nil, campaign.ErrGoalReached
	case f.c.Status != campaign.StatusActive:
		return nil, campaign.ErrNotActive
	case f.c.CurrentAmount >= f.c.GoalAmount:
		return nil, campaign.ErrGoalReached
	case f.c.CurrentAmount+amount > f.c.GoalAmount:
		return nil, &campaign.ExceedsRemainingError{Remaining: f.c.GoalAmount - f.c.CurrentAmount}
	}

	f.c.CurrentAmount += amount
	if f.c.CurrentAmount >= f.c.GoalAmount {
		f.c.Status = campaign.StatusCompleted
	}

	c := *f.c

	return &c, nil
}

func (f *fakeLedger) MarkCompleted(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id == f.c.ID && f.c.Status == campaign.StatusActive && f.c.CurrentAmount >= f.c.GoalAmount {
		f.c.Status = campaign.StatusCompleted
	}

	return nil
}

// fakeRepo is an in-memory donation ledger.
type fakeRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*donation.Donation
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[uuid.UUID]*donation.Donation)}
}

func (f *fakeRepo) CreateDonation(_ context.Context, d *donation.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	d.ID = uuid.New()
	d.CreatedAt = time.Now()

	stored := *d
	f.byID[d.ID] = &stored

	return nil
}

func (f *fakeRepo) GetDonation(_ context.Context, id uuid.UUID) (*donation.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.byID[id]
	if !ok {
		return nil, donation.ErrNotFound
	}

	cp := *d

	// Resolve the donor ref the way the store's JOIN would.
	if cp.Donor == nil {
		cp.Donor = &donation.DonorRef{ID: cp.DonorID, Username: "donor", Email: "donor@example.com"}
	}

	return &cp, nil
}

func (f *fakeRepo) ListByDonor(_ context.Context, donorID uuid.UUID) ([]*donation.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ds []*donation.Donation

	for _, d := range f.byID {
		if d.DonorID == donorID {
			cp := *d
			ds = append(ds, &cp)
		}
	}

	return ds, nil
}

func (f *fakeRepo) ListByCampaign(_ context.Context, campaignID uuid.UUID) ([]*donation.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ds []*donation.Donation

	for _, d := range f.byID {
		if d.CampaignID == campaignID {
			cp := *d
			ds = append(ds, &cp)
		}
	}

	return ds, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status donation.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.byID[id]
	if !ok {
		return donation.ErrNotFound
	}

	d.Status = status

	return nil
}

func (f *fakeRepo) DeleteDonation(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.byID, id)

	return nil
}

func (f *fakeRepo) completedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0

	for _, d := range f.byID {
		if d.Status == donation.StatusCompleted {
			n++
		}
	}

	return n
}

func TestService_Accept_Validation(t *testing.T) {
	donor := uuid.New()

	type testCase struct {
		name      string
		params    donation.AcceptParams
		setupMock func(ledger *donation.MockCampaignLedger, id uuid.UUID)
		wantErr   error
	}

	campaignID := uuid.New()

	tests := []testCase{
		{
			name:    "ZeroAmount",
			params:  donation.AcceptParams{DonorID: donor, CampaignID: campaignID, Amount: 0},
			wantErr: donation.ErrInvalidAmount,
		},
		{
			name:    "NegativeAmount",
			params:  donation.AcceptParams{DonorID: donor, CampaignID: campaignID, Amount: -5},
			wantErr: donation.ErrInvalidAmount,
		},
		{
			name:    "MissingDonor",
			params:  donation.AcceptParams{CampaignID: campaignID, Amount: 10},
			wantErr: donation.ErrMissingDonor,
		},
		{
			name:   "CampaignNotFound",
			params: donation.AcceptParams{DonorID: donor, CampaignID: campaignID, Amount: 10},
			setupMock: func(ledger *donation.MockCampaignLedger, id uuid.UUID) {
				ledger.EXPECT().GetCampaign(gomock.Any(), id).Return(nil, campaign.ErrNotFound)
			},
			wantErr: campaign.ErrNotFound,
		},
		{
			name:   "CampaignClosed",
			params: donation.AcceptParams{DonorID: donor, CampaignID: campaignID, Amount: 10},
			setupMock: func(ledger *donation.MockCampaignLedger, id uuid.UUID) {
				ledger.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
					ID: id, GoalAmount: 100, CurrentAmount: 50, Status: campaign.StatusClosed,
				}, nil)
			},
			wantErr: campaign.ErrNotActive,
		},
		{
			name:   "GoalAlreadyReachedHealsStatus",
			params: donation.AcceptParams{DonorID: donor, CampaignID: campaignID, Amount: 1},
			setupMock: func(ledger *donation.MockCampaignLedger, id uuid.UUID) {
				ledger.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
					ID: id, GoalAmount: 100, CurrentAmount: 100, Status: campaign.StatusActive,
				}, nil)
				ledger.EXPECT().MarkCompleted(gomock.Any(), id).Return(nil)
			},
			wantErr: campaign.ErrGoalReached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// The repo mock has no expectations: a rejected accept must never
			// touch the donation ledger.
			repo := donation.NewMockRepository(ctrl)
			ledger := donation.NewMockCampaignLedger(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(ledger, tt.params.CampaignID)
			}

			svc := donation.NewService(repo, ledger, nil)

			got, err := svc.Accept(context.Background(), tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func TestService_Accept_ExceedsRemaining(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	donor := uuid.New()

	repo := donation.NewMockRepository(ctrl)
	ledger := donation.NewMockCampaignLedger(ctrl)

	id := uuid.New()
	ledger.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
		ID: id, GoalAmount: 100, CurrentAmount: 90, Status: campaign.StatusActive,
	}, nil)

	svc := donation.NewService(repo, ledger, nil)

	_, err := svc.Accept(context.Background(), donation.AcceptParams{
		DonorID: donor, CampaignID: id, Amount: 20,
	})
	require.Error(t, err)

	var exceeds *campaign.ExceedsRemainingError
	require.ErrorAs(t, err, &exceeds)
	assert.Equal(t, int64(10), exceeds.Remaining)
	assert.Contains(t, err.Error(), "10")
}

func TestService_Accept_Scenarios(t *testing.T) {
	ledger := newFakeLedger(100, 0, campaign.StatusActive)
	repo := newFakeRepo()
	svc := donation.NewService(repo, ledger, nil)

	ctx := context.Background()
	campaignID := ledger.snapshot().ID

	// Scenario A: partial funding leaves the campaign active.
	d, err := svc.Accept(ctx, donation.AcceptParams{DonorID: uuid.New(), CampaignID: campaignID, Amount: 40})
	require.NoError(t, err)
	assert.Equal(t, int64(40), d.Amount)
	assert.Equal(t, donation.StatusCompleted, d.Status)

	c := ledger.snapshot()
	assert.Equal(t, int64(40), c.CurrentAmount)
	assert.Equal(t, campaign.StatusActive, c.Status)

	// Scenario B: reaching the goal exactly flips the campaign to completed.
	_, err = svc.Accept(ctx, donation.AcceptParams{DonorID: uuid.New(), CampaignID: campaignID, Amount: 60})
	require.NoError(t, err)

	c = ledger.snapshot()
	assert.Equal(t, int64(100), c.CurrentAmount)
	assert.Equal(t, campaign.StatusCompleted, c.Status)

	// Scenario C: a completed campaign accepts nothing further.
	_, err = svc.Accept(ctx, donation.AcceptParams{DonorID: uuid.New(), CampaignID: campaignID, Amount: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, campaign.ErrNotActive)

	c = ledger.snapshot()
	assert.Equal(t, int64(100), c.CurrentAmount)
	assert.Equal(t, 2, repo.completedCount())

	// Scenario E: unknown campaign.
	_, err = svc.Accept(ctx, donation.AcceptParams{DonorID: uuid.New(), CampaignID: uuid.New(), Amount: 10})
	assert.ErrorIs(t, err, campaign.ErrNotFound)
}

func TestService_Accept_Concurrent(t *testing.T) {
	const (
		goal       = int64(100)
		current    = int64(0)
		workers    = 16
		perRequest = goal/2 + 1 // any two together overshoot
	)

	ledger := newFakeLedger(goal, current, campaign.StatusActive)
	repo := newFakeRepo()
	svc := donation.NewService(repo, ledger, nil)

	campaignID := ledger.snapshot().ID

	var wg sync.WaitGroup

	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		i := i

		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = svc.Accept(context.Background(), donation.AcceptParams{
				DonorID:    uuid.New(),
				CampaignID: campaignID,
				Amount:     perRequest,
			})
		}()
	}

	wg.Wait()

	successes := 0

	for _, err := range errs {
		if err == nil {
			successes++
		}
	}

	assert.LessOrEqual(t, successes, 1, "at most one donation may land")

	c := ledger.snapshot()
	assert.LessOrEqual(t, c.CurrentAmount, c.GoalAmount, "total must never exceed the goal")
	assert.Equal(t, successes, repo.completedCount(), "completed records must match applied donations")
}

func TestService_Accept_RaceCompensation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := donation.NewMockRepository(ctrl)
	ledger := donation.NewMockCampaignLedger(ctrl)

	id := uuid.New()
	donor := uuid.New()

	ledger.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
		ID: id, GoalAmount: 100, CurrentAmount: 50, Status: campaign.StatusActive,
	}, nil)

	var createdID uuid.UUID

	repo.EXPECT().
		CreateDonation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *donation.Donation) error {
			d.ID = uuid.New()
			createdID = d.ID
			return nil
		})

	// Another donor consumed the headroom between validation and apply.
	ledger.EXPECT().
		ApplyDonation(gomock.Any(), id, int64(30)).
		Return(nil, &campaign.ExceedsRemainingError{Remaining: 20})

	repo.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any(), donation.StatusFailed).
		DoAndReturn(func(_ context.Context, voidID uuid.UUID, _ donation.Status) error {
			assert.Equal(t, createdID, voidID)
			return nil
		})

	svc := donation.NewService(repo, ledger, nil)

	_, err := svc.Accept(context.Background(), donation.AcceptParams{
		DonorID: donor, CampaignID: id, Amount: 30,
	})

	var exceeds *campaign.ExceedsRemainingError

	require.ErrorAs(t, err, &exceeds)
	assert.Equal(t, int64(20), exceeds.Remaining)
}

func TestService_Accept_VoidFailureReportsInconsistent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := donation.NewMockRepository(ctrl)
	ledger := donation.NewMockCampaignLedger(ctrl)

	id := uuid.New()

	ledger.EXPECT().GetCampaign(gomock.Any(), id).Return(&campaign.Campaign{
		ID: id, GoalAmount: 100, CurrentAmount: 50, Status: campaign.StatusActive,
	}, nil)
	repo.EXPECT().
		CreateDonation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *donation.Donation) error {
			d.ID = uuid.New()
			return nil
		})
	ledger.EXPECT().
		ApplyDonation(gomock.Any(), id, int64(30)).
		Return(nil, errors.New("connection reset"))
	repo.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any(), donation.StatusFailed).
		Return(errors.New("connection reset"))

	svc := donation.NewService(repo, ledger, nil)

	_, err := svc.Accept(context.Background(), donation.AcceptParams{
		DonorID: uuid.New(), CampaignID: id, Amount: 30,
	})
	assert.ErrorIs(t, err, donation.ErrInconsistent)
}

// chanNotifier records the first notification it receives.
type chanNotifier struct {
	called chan string
	err    error
}

func (n *chanNotifier) Notify(_ context.Context, to, _, _ string) error {
	select {
	case n.called <- to:
	default:
	}

	return n.err
}

func TestService_Accept_NotificationFailureIsSwallowed(t *testing.T) {
	ledger := newFakeLedger(100, 0, campaign.StatusActive)
	repo := newFakeRepo()
	notifier := &chanNotifier{called: make(chan string, 1), err: errors.New("smtp down")}
	svc := donation.NewService(repo, ledger, notifier)

	campaignID := ledger.snapshot().ID

	d, err := svc.Accept(context.Background(), donation.AcceptParams{
		DonorID: uuid.New(), CampaignID: campaignID, Amount: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, donation.StatusCompleted, d.Status)

	select {
	case to := <-notifier.called:
		assert.Equal(t, "donor@example.com", to)
	case <-time.After(2 * time.Second):
		t.Fatal("receipt was never attempted")
	}

	c := ledger.snapshot()
	assert.Equal(t, int64(25), c.CurrentAmount)
}

func TestService_Delete_DoesNotReverseCampaignTotal(t *testing.T) {
	ledger := newFakeLedger(100, 0, campaign.StatusActive)
	repo := newFakeRepo()
	svc := donation.NewService(repo, ledger, nil)

	campaignID := ledger.snapshot().ID

	d, err := svc.Accept(context.Background(), donation.AcceptParams{
		DonorID: uuid.New(), CampaignID: campaignID, Amount: 40,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), d.ID))

	c := ledger.snapshot()
	assert.Equal(t, int64(40), c.CurrentAmount, "deletion must not reverse the applied amount")
}
