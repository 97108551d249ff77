package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/latentspace/match-engine/internal/types"
)

// UpsertPreference creates or replaces a user's matching preference set.
func (db *DB) UpsertPreference(ctx context.Context, p *types.MatchingPreference) error {
	mustHaves, err := json.Marshal(p.MustHaves)
	if err != nil {
		return fmt.Errorf("failed to marshal must-haves: %w", err)
	}
	niceToHaves, err := json.Marshal(p.NiceToHaves)
	if err != nil {
		return fmt.Errorf("failed to marshal nice-to-haves: %w", err)
	}
	dealBreakers, err := json.Marshal(p.DealBreakers)
	if err != nil {
		return fmt.Errorf("failed to marshal deal-breakers: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO matching_preferences (user_id, must_haves, nice_to_haves, deal_breakers)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		   must_haves = $2, nice_to_haves = $3, deal_breakers = $4, updated_at = NOW()`,
		p.UserID, mustHaves, niceToHaves, dealBreakers,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}

// GetPreference retrieves a user's preference set, nil when none exists.
func (db *DB) GetPreference(ctx context.Context, userID uuid.UUID) (*types.MatchingPreference, error) {
	var p types.MatchingPreference
	var mustHaves, niceToHaves, dealBreakers []byte

	err := db.pool.QueryRow(ctx,
		`SELECT user_id, must_haves, nice_to_haves, deal_breakers, updated_at
		 FROM matching_preferences WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &mustHaves, &niceToHaves, &dealBreakers, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}

	if err := json.Unmarshal(mustHaves, &p.MustHaves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal must-haves: %w", err)
	}
	if err := json.Unmarshal(niceToHaves, &p.NiceToHaves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal nice-to-haves: %w", err)
	}
	if err := json.Unmarshal(dealBreakers, &p.DealBreakers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deal-breakers: %w", err)
	}

	return &p, nil
}
