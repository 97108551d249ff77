package db

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it does not exist. Embeddings use the
// pgvector extension with 768-dimension vectors (text-embedding-004 output).
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		`CREATE TABLE IF NOT EXISTS user_profiles (
			user_id UUID PRIMARY KEY,
			role_intent TEXT NOT NULL,
			seniority TEXT NOT NULL,
			timezone TEXT NOT NULL,
			weekly_hours INT NOT NULL,
			location_city TEXT NOT NULL DEFAULT '',
			remote_preference TEXT NOT NULL,
			equity_expectation DOUBLE PRECISION,
			salary_expectation DOUBLE PRECISION,
			visa_constraint BOOLEAN NOT NULL DEFAULT FALSE,
			skills TEXT[] NOT NULL DEFAULT '{}',
			industries TEXT[] NOT NULL DEFAULT '{}',
			tech_stack TEXT[] NOT NULL DEFAULT '{}',
			risk_tolerance INT,
			bio TEXT NOT NULL DEFAULT '',
			embedding vector(768),
			last_active_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS matching_preferences (
			user_id UUID PRIMARY KEY REFERENCES user_profiles(user_id) ON DELETE CASCADE,
			must_haves JSONB NOT NULL DEFAULT '{}',
			nice_to_haves JSONB NOT NULL DEFAULT '{}',
			deal_breakers JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS interaction_events (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			target_user_id UUID NOT NULL,
			action TEXT NOT NULL,
			latency_ms INT,
			quality_rating INT CHECK (quality_rating BETWEEN 1 AND 5),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interaction_events_target
			ON interaction_events (target_user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interaction_events_user
			ON interaction_events (user_id)`,

		`CREATE TABLE IF NOT EXISTS match_results (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			candidate_id UUID NOT NULL,
			total_score DOUBLE PRECISION NOT NULL,
			hard_score DOUBLE PRECISION NOT NULL,
			semantic_score DOUBLE PRECISION NOT NULL,
			behavior_score DOUBLE PRECISION NOT NULL,
			reasons TEXT[] NOT NULL DEFAULT '{}',
			risk_hints TEXT[] NOT NULL DEFAULT '{}',
			disqualified BOOLEAN NOT NULL DEFAULT FALSE,
			stage TEXT NOT NULL DEFAULT 'recommended',
			algorithm_version TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, candidate_id, algorithm_version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_results_user_score
			ON match_results (user_id, total_score DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
