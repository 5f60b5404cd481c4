// Package reconcile periodically compares each campaign's accumulated total
// against the sum of donations actually applied to it. The acceptance path
// has one window where the two can drift (a donation recorded whose apply was
// never confirmed); this sweep makes that state visible instead of silent.
package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Sweeper struct {
	db *sql.DB
}

func New(db *sql.DB) *Sweeper {
	return &Sweeper{db: db}
}

type Drift struct {
	CampaignID    uuid.UUID
	Title         string
	CurrentAmount int64
	AppliedSum    int64
}

// Sweep returns every campaign whose recorded total disagrees with the sum of
// its completed donations. Soft-deleted donations count: deletion never
// reverses an applied amount.
func (s *Sweeper) Sweep(ctx context.Context) ([]Drift, error) {
	query := `
		SELECT c.id, c.title, c.current_amount, COALESCE(SUM(d.amount), 0) AS applied
		FROM campaigns c
		LEFT JOIN donations d ON d.campaign_id = c.id AND d.status = 'completed'
		WHERE c.deleted_at IS NULL
		GROUP BY c.id, c.title, c.current_amount
		HAVING c.current_amount <> COALESCE(SUM(d.amount), 0)
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sweeping campaigns: %w", err)
	}
	defer rows.Close()

	var drifts []Drift

	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.CampaignID, &d.Title, &d.CurrentAmount, &d.AppliedSum); err != nil {
			return nil, fmt.Errorf("scanning drift row: %w", err)
		}

		drifts = append(drifts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drift rows: %w", err)
	}

	return drifts, nil
}

// Run sweeps on the given interval until ctx is cancelled. Findings are
// logged for operators; nothing is auto-repaired.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drifts, err := s.Sweep(ctx)
			if err != nil {
				slog.Error("reconciliation sweep failed", "error", err)
				continue
			}

			for _, d := range drifts {
				slog.Warn("campaign total disagrees with applied donations",
					"campaign_id", d.CampaignID,
					"title", d.Title,
					"current_amount", d.CurrentAmount,
					"applied_sum", d.AppliedSum,
				)
			}
		}
	}
}
