package database

import (
	"database/sql"
	"fmt"
)

// Migrate applies the schema. Every statement is idempotent so it is safe to
// run on every startup. The CHECK constraints back the ledger invariants at
// the schema level: a campaign can never record more than its goal, and
// amounts are always positive.
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

		`CREATE TABLE IF NOT EXISTS users (
			id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			username      text NOT NULL,
			email         text NOT NULL UNIQUE,
			password_hash text NOT NULL,
			role          text NOT NULL DEFAULT 'user',
			created_at    timestamptz NOT NULL DEFAULT now(),
			updated_at    timestamptz
		)`,

		`CREATE TABLE IF NOT EXISTS campaigns (
			id             uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			title          text NOT NULL,
			description    text NOT NULL,
			category       text NOT NULL,
			goal_amount    bigint NOT NULL CHECK (goal_amount > 0),
			current_amount bigint NOT NULL DEFAULT 0
				CHECK (current_amount >= 0 AND current_amount <= goal_amount),
			status         text NOT NULL DEFAULT 'active',
			image_url      text NOT NULL DEFAULT '',
			end_date       timestamptz NOT NULL,
			created_by     uuid NOT NULL REFERENCES users(id),
			created_at     timestamptz NOT NULL DEFAULT now(),
			updated_at     timestamptz,
			deleted_at     timestamptz
		)`,

		`CREATE TABLE IF NOT EXISTS donations (
			id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			amount       bigint NOT NULL CHECK (amount > 0),
			campaign_id  uuid NOT NULL REFERENCES campaigns(id),
			donor_id     uuid NOT NULL REFERENCES users(id),
			message      text NOT NULL DEFAULT '',
			is_anonymous boolean NOT NULL DEFAULT false,
			status       text NOT NULL DEFAULT 'completed',
			created_at   timestamptz NOT NULL DEFAULT now(),
			deleted_at   timestamptz
		)`,

		`CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_campaign ON donations(campaign_id)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_donor ON donations(donor_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}

	return nil
}
