package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mwilde345/givehub/internal/campaign"
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

const selectCampaignColumns = `
	c.id, c.title, c.description, c.category, c.goal_amount, c.current_amount,
	c.status, c.image_url, c.end_date, c.created_by, u.username,
	c.created_at, c.updated_at, c.deleted_at
`

func scanCampaign(s scanner) (*campaign.Campaign, error) {
	var c campaign.Campaign

	var categoryStr, statusStr string

	var creatorName sql.NullString

	if err := s.Scan(
		&c.ID, &c.Title, &c.Description, &categoryStr, &c.GoalAmount, &c.CurrentAmount,
		&statusStr, &c.ImageURL, &c.EndDate, &c.CreatedBy, &creatorName,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	); err != nil {
		return nil, err
	}

	c.Category = campaign.Category(categoryStr)
	c.Status = campaign.Status(statusStr)

	if creatorName.Valid {
		c.Creator = &campaign.CreatorRef{ID: c.CreatedBy, Username: creatorName.String}
	}

	return &c, nil
}

func (s *Store) CreateCampaign(ctx context.Context, c *campaign.Campaign) error {
	query := `
		INSERT INTO campaigns (title, description, category, goal_amount, current_amount, status, image_url, end_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $8, NOW())
		RETURNING id, current_amount, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Title,
		c.Description,
		c.Category,
		c.GoalAmount,
		c.Status,
		c.ImageURL,
		c.EndDate,
		c.CreatedBy,
	).Scan(&c.ID, &c.CurrentAmount, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating campaign: %w", err)
	}

	return nil
}

func (s *Store) GetCampaign(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	query := `SELECT ` + selectCampaignColumns + `
		FROM campaigns c
		LEFT JOIN users u ON c.created_by = u.id
		WHERE c.id = $1 AND c.deleted_at IS NULL`

	c, err := scanCampaign(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, campaign.ErrNotFound
		}

		return nil, fmt.Errorf("getting campaign: %w", err)
	}

	return c, nil
}

func (s *Store) ListCampaigns(ctx context.Context, filter campaign.ListFilter) ([]*campaign.Campaign, error) {
	query := `SELECT ` + selectCampaignColumns + `
		FROM campaigns c
		LEFT JOIN users u ON c.created_by = u.id
		WHERE c.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND c.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Category != nil {
		query += fmt.Sprintf(" AND c.category = $%d", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	query += " ORDER BY c.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var cs []*campaign.Campaign

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}

		cs = append(cs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaign rows: %w", err)
	}

	return cs, nil
}

func (s *Store) UpdateCampaign(ctx context.Context, c *campaign.Campaign) error {
	query := `
		UPDATE campaigns
		SET title = $1, description = $2, category = $3, goal_amount = $4,
			status = $5, image_url = $6, end_date = $7, updated_at = NOW()
		WHERE id = $8 AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		c.Title,
		c.Description,
		c.Category,
		c.GoalAmount,
		c.Status,
		c.ImageURL,
		c.EndDate,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating campaign: %w", err)
	}

	return nil
}

func (s *Store) DeleteCampaign(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE campaigns
		SET deleted_at = NOW()
		WHERE id = $1
	`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting campaign: %w", err)
	}

	return nil
}

// ApplyDonation is the committing step of donation acceptance. The WHERE
// clause is the atomicity guard: the increment only lands on an active
// campaign with enough headroom, so two concurrent donors can never jointly
// push current_amount past the goal. A zero-row result is re-read and
// classified into the acceptance error taxonomy.
func (s *Store) ApplyDonation(ctx context.Context, id uuid.UUID, amount int64) (*campaign.Campaign, error) {
	query := `
		WITH updated AS (
			UPDATE campaigns
			SET current_amount = current_amount + $2,
				status = CASE WHEN current_amount + $2 >= goal_amount THEN 'completed' ELSE status END,
				updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL
				AND status = 'active'
				AND current_amount + $2 <= goal_amount
			RETURNING *
		)
		SELECT ` + selectCampaignColumns + `
		FROM updated c
		LEFT JOIN users u ON c.created_by = u.id
	`

	c, err := scanCampaign(s.db.QueryRowContext(ctx, query, id, amount))
	if err == nil {
		return c, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("applying donation: %w", err)
	}

	// The guard rejected; look at the row to say why.
	cur, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case cur.Status == campaign.StatusCompleted:
		return nil, campaign.ErrGoalReached
	case cur.Status != campaign.StatusActive:
		return nil, campaign.ErrNotActive
	case cur.CurrentAmount >= cur.GoalAmount:
		return nil, campaign.ErrGoalReached
	default:
		return nil, &campaign.ExceedsRemainingError{Remaining: cur.GoalAmount - cur.CurrentAmount}
	}
}

// MarkCompleted heals a campaign whose total already covers its goal but
// whose status still reads active. The condition makes it idempotent and safe
// for concurrent callers.
func (s *Store) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE campaigns
		SET status = 'completed', updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
			AND status = 'active'
			AND current_amount >= goal_amount
	`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("marking campaign completed: %w", err)
	}

	return nil
}
