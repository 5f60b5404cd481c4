package donation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mwilde345/givehub/internal/campaign"
	"github.com/mwilde345/givehub/internal/mail"
	"github.com/mwilde345/givehub/internal/user"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=donation
type Repository interface {
	CreateDonation(ctx context.Context, d *Donation) error
	GetDonation(ctx context.Context, id uuid.UUID) (*Donation, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*Donation, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*Donation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	DeleteDonation(ctx context.Context, id uuid.UUID) error
}

// CampaignLedger is the slice of the campaign store the acceptance service
// needs: read, atomic apply, and the idempotent status heal.
type CampaignLedger interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error)
	ApplyDonation(ctx context.Context, id uuid.UUID, amount int64) (*campaign.Campaign, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

// Notifier is the best-effort receipt sink. Failures never affect a committed
// donation.
type Notifier interface {
	Notify(ctx context.Context, to, subject, htmlBody string) error
}

type Service struct {
	repo     Repository
	ledger   CampaignLedger
	notifier Notifier
}

func NewService(repo Repository, ledger CampaignLedger, notifier Notifier) *Service {
	return &Service{repo: repo, ledger: ledger, notifier: notifier}
}

type AcceptParams struct {
	DonorID     uuid.UUID
	CampaignID  uuid.UUID
	Amount      int64
	Message     string
	IsAnonymous bool
}

// Accept validates and commits a donation against its campaign. Validation
// happens before any write, so every rejection up to the remaining-headroom
// check leaves both ledgers untouched. The campaign increment is the atomic
// committing step; if a concurrent donor consumes the headroom between
// validation and apply, the recorded donation is voided and the rejection
// returned as if validation had caught it.
func (s *Service) Accept(ctx context.Context, params AcceptParams) (*Donation, error) {
	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if params.DonorID == uuid.Nil {
		return nil, ErrMissingDonor
	}

	c, err := s.ledger.GetCampaign(ctx, params.CampaignID)
	if err != nil {
		return nil, err
	}

	if c.Status != campaign.StatusActive {
		return nil, campaign.ErrNotActive
	}

	// Status and the accumulated total can drift if a prior writer crashed
	// between the two updates; recomputing on entry keeps them convergent.
	if c.CurrentAmount >= c.GoalAmount {
		if err := s.ledger.MarkCompleted(ctx, c.ID); err != nil {
			slog.Warn("failed to heal campaign status", "campaign_id", c.ID, "error", err)
		}

		return nil, campaign.ErrGoalReached
	}

	if remaining := c.GoalAmount - c.CurrentAmount; params.Amount > remaining {
		return nil, &campaign.ExceedsRemainingError{Remaining: remaining}
	}

	d := &Donation{
		Amount:      params.Amount,
		CampaignID:  params.CampaignID,
		DonorID:     params.DonorID,
		Message:     params.Message,
		IsAnonymous: params.IsAnonymous,
		Status:      StatusCompleted,
	}

	if err := s.repo.CreateDonation(ctx, d); err != nil {
		return nil, fmt.Errorf("creating donation: %w", err)
	}

	applied, err := s.ledger.ApplyDonation(ctx, c.ID, params.Amount)
	if err != nil {
		// Lost a race after validation. Void the record so a completed
		// donation always corresponds to an applied amount.
		if verr := s.repo.UpdateStatus(ctx, d.ID, StatusFailed); verr != nil {
			slog.Error("donation recorded but not applied and could not be voided",
				"donation_id", d.ID, "campaign_id", c.ID, "apply_error", err, "void_error", verr)

			return nil, ErrInconsistent
		}

		return nil, err
	}

	resolved, err := s.repo.GetDonation(ctx, d.ID)
	if err != nil {
		// The donation is committed; return it without display refs rather
		// than failing the accepted transaction.
		slog.Warn("failed to resolve donation references", "donation_id", d.ID, "error", err)

		resolved = d
	}

	if resolved.Campaign == nil {
		resolved.Campaign = &CampaignRef{ID: applied.ID, Title: applied.Title, GoalAmount: applied.GoalAmount}
	}

	s.sendReceipt(ctx, resolved)

	return resolved, nil
}

func (s *Service) Get(ctx context.Context, id, actorID uuid.UUID, actorRole user.Role) (*Donation, error) {
	d, err := s.repo.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}

	if d.DonorID != actorID && actorRole != user.RoleAdmin {
		return nil, ErrForbidden
	}

	return d, nil
}

func (s *Service) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*Donation, error) {
	return s.repo.ListByDonor(ctx, donorID)
}

func (s *Service) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*Donation, error) {
	return s.repo.ListByCampaign(ctx, campaignID)
}

// Delete removes the donation record only. The campaign's accumulated total
// is never reversed: donations are permanent ledger entries.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetDonation(ctx, id); err != nil {
		return err
	}

	return s.repo.DeleteDonation(ctx, id)
}

// sendReceipt runs off the request path. A slow or failing mail server must
// never hold up the donation response.
func (s *Service) sendReceipt(ctx context.Context, d *Donation) {
	if s.notifier == nil || d.Donor == nil || d.Campaign == nil {
		return
	}

	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)

	to := d.Donor.Email
	body := mail.ReceiptBody(d.Donor.Username, d.Campaign.Title, d.Amount)

	go func() {
		defer cancel()

		if err := s.notifier.Notify(detached, to, "Thank You for Your Donation", body); err != nil {
			slog.Error("failed to send donation receipt", "donation_id", d.ID, "error", err)
		}
	}()
}
