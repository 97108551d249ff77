package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/latentspace/match-engine/internal/types"
)

const matchResultColumns = `id, user_id, candidate_id, total_score, hard_score,
	semantic_score, behavior_score, reasons, risk_hints, disqualified, stage,
	algorithm_version, expires_at, created_at, updated_at`

// UpsertMatchResult inserts or refreshes the active result for a
// (user, candidate, algorithm_version) triple. Re-scoring updates scores,
// reasons and expiry but preserves the lifecycle stage of an existing row.
func (db *DB) UpsertMatchResult(ctx context.Context, r *types.MatchResult) (*types.MatchResult, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO match_results (user_id, candidate_id, total_score, hard_score,
		   semantic_score, behavior_score, reasons, risk_hints, disqualified, stage,
		   algorithm_version, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (user_id, candidate_id, algorithm_version) DO UPDATE SET
		   total_score = EXCLUDED.total_score,
		   hard_score = EXCLUDED.hard_score,
		   semantic_score = EXCLUDED.semantic_score,
		   behavior_score = EXCLUDED.behavior_score,
		   reasons = EXCLUDED.reasons,
		   risk_hints = EXCLUDED.risk_hints,
		   disqualified = EXCLUDED.disqualified,
		   expires_at = EXCLUDED.expires_at,
		   updated_at = NOW()
		 RETURNING `+matchResultColumns,
		r.UserID, r.CandidateID, r.TotalScore, r.Breakdown.Hard,
		r.Breakdown.Semantic, r.Breakdown.Behavior, r.Reasons, r.RiskHints,
		r.Disqualified, types.StageRecommended, r.AlgorithmVersion, r.ExpiresAt,
	)

	result, err := scanMatchResult(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert match result: %w", err)
	}
	return result, nil
}

// GetMatchResult retrieves a match result by id. Returns nil if not found.
func (db *DB) GetMatchResult(ctx context.Context, id uuid.UUID) (*types.MatchResult, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+matchResultColumns+` FROM match_results WHERE id = $1`, id)

	result, err := scanMatchResult(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match result: %w", err)
	}
	return result, nil
}

// ListMatchResults returns a user's active recommendations: qualified,
// unexpired results ordered by score descending, with candidate recency and
// candidate id breaking ties deterministically.
func (db *DB) ListMatchResults(ctx context.Context, userID uuid.UUID, limit int) ([]*types.MatchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+prefixColumns("m", matchResultColumns)+`
		 FROM match_results m
		 JOIN user_profiles p ON p.user_id = m.candidate_id
		 WHERE m.user_id = $1 AND NOT m.disqualified AND m.expires_at > NOW()
		 ORDER BY m.total_score DESC, p.last_active_at DESC, m.candidate_id ASC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	defer rows.Close()

	var results []*types.MatchResult
	for rows.Next() {
		r, err := scanMatchResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// TransitionStage advances a match result from an expected stage to the next
// stage with compare-and-swap semantics: the update applies only when the
// stored stage still equals the expected stage, so concurrent transitions
// resolve to exactly one winner.
//
// Returns a *types.TransitionError for illegal transitions, ErrMatchNotFound
// when the match does not exist, and ErrStageConflict when the stored stage
// has moved on.
func (db *DB) TransitionStage(ctx context.Context, id uuid.UUID, from, to types.Stage) (*types.MatchResult, error) {
	if !from.CanTransitionTo(to) {
		return nil, &types.TransitionError{From: from, To: to}
	}

	row := db.pool.QueryRow(ctx,
		`UPDATE match_results SET stage = $1, updated_at = NOW()
		 WHERE id = $2 AND stage = $3
		 RETURNING `+matchResultColumns,
		to, id, from,
	)

	result, err := scanMatchResult(row)
	if err != nil {
		if err != pgx.ErrNoRows {
			return nil, fmt.Errorf("failed to transition match stage: %w", err)
		}
		// Distinguish a missing row from a lost race.
		var exists bool
		checkErr := db.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM match_results WHERE id = $1)`, id,
		).Scan(&exists)
		if checkErr != nil {
			return nil, fmt.Errorf("failed to check match result: %w", checkErr)
		}
		if !exists {
			return nil, ErrMatchNotFound
		}
		return nil, ErrStageConflict
	}
	return result, nil
}

// MatchStats returns the number of match results created since the given
// time and how many of those pairs reached a high-quality outcome (a rated
// interaction of 4 or above between the matched users).
func (db *DB) MatchStats(ctx context.Context, since time.Time) (total, successful int, err error) {
	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE EXISTS (
		          SELECT 1 FROM interaction_events e
		          WHERE e.user_id = m.user_id
		            AND e.target_user_id = m.candidate_id
		            AND e.quality_rating >= 4))
		 FROM match_results m WHERE m.created_at >= $1`,
		since,
	).Scan(&total, &successful)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get match stats: %w", err)
	}
	return total, successful, nil
}

// prefixColumns qualifies each column in a comma-separated list with a table
// alias, for queries that join other tables.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func scanMatchResult(row pgx.Row) (*types.MatchResult, error) {
	var r types.MatchResult
	err := row.Scan(
		&r.ID, &r.UserID, &r.CandidateID, &r.TotalScore, &r.Breakdown.Hard,
		&r.Breakdown.Semantic, &r.Breakdown.Behavior, &r.Reasons, &r.RiskHints,
		&r.Disqualified, &r.Stage, &r.AlgorithmVersion, &r.ExpiresAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
