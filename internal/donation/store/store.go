package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mwilde345/givehub/internal/donation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectDonationColumns = `
	d.id, d.amount, d.campaign_id, d.donor_id, d.message, d.is_anonymous, d.status,
	u.username, u.email, c.title, c.goal_amount,
	d.created_at, d.deleted_at
`

func scanDonation(s scanner) (*donation.Donation, error) {
	var d donation.Donation

	var statusStr string

	var donorName, donorEmail, campaignTitle sql.NullString

	var campaignGoal sql.NullInt64

	if err := s.Scan(
		&d.ID, &d.Amount, &d.CampaignID, &d.DonorID, &d.Message, &d.IsAnonymous, &statusStr,
		&donorName, &donorEmail, &campaignTitle, &campaignGoal,
		&d.CreatedAt, &d.DeletedAt,
	); err != nil {
		return nil, err
	}

	d.Status = donation.Status(statusStr)

	if donorName.Valid {
		d.Donor = &donation.DonorRef{
			ID:       d.DonorID,
			Username: donorName.String,
			Email:    donorEmail.String,
		}
	}

	if campaignTitle.Valid {
		d.Campaign = &donation.CampaignRef{
			ID:         d.CampaignID,
			Title:      campaignTitle.String,
			GoalAmount: campaignGoal.Int64,
		}
	}

	return &d, nil
}

const donationJoins = `
	FROM donations d
	LEFT JOIN users u ON d.donor_id = u.id
	LEFT JOIN campaigns c ON d.campaign_id = c.id
`

func (s *Store) CreateDonation(ctx context.Context, d *donation.Donation) error {
	query := `
		INSERT INTO donations (amount, campaign_id, donor_id, message, is_anonymous, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		d.Amount,
		d.CampaignID,
		d.DonorID,
		d.Message,
		d.IsAnonymous,
		d.Status,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating donation: %w", err)
	}

	return nil
}

func (s *Store) GetDonation(ctx context.Context, id uuid.UUID) (*donation.Donation, error) {
	query := `SELECT ` + selectDonationColumns + donationJoins + `
		WHERE d.id = $1 AND d.deleted_at IS NULL`

	d, err := scanDonation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, donation.ErrNotFound
		}

		return nil, fmt.Errorf("getting donation: %w", err)
	}

	return d, nil
}

func (s *Store) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*donation.Donation, error) {
	query := `SELECT ` + selectDonationColumns + donationJoins + `
		WHERE d.donor_id = $1 AND d.deleted_at IS NULL
		ORDER BY d.created_at DESC`

	return s.list(ctx, query, donorID)
}

func (s *Store) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*donation.Donation, error) {
	query := `SELECT ` + selectDonationColumns + donationJoins + `
		WHERE d.campaign_id = $1 AND d.deleted_at IS NULL
		ORDER BY d.created_at DESC`

	return s.list(ctx, query, campaignID)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*donation.Donation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}
	defer rows.Close()

	var ds []*donation.Donation

	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning donation: %w", err)
		}

		ds = append(ds, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating donation rows: %w", err)
	}

	return ds, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status donation.Status) error {
	query := `
		UPDATE donations
		SET status = $1
		WHERE id = $2
	`

	if _, err := s.db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("updating donation status: %w", err)
	}

	return nil
}

func (s *Store) DeleteDonation(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE donations
		SET deleted_at = NOW()
		WHERE id = $1
	`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting donation: %w", err)
	}

	return nil
}
