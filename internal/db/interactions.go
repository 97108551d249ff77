package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/types"
)

// AppendInteraction records an interaction event and returns its id. Events
// are append-only.
func (db *DB) AppendInteraction(ctx context.Context, e *types.InteractionEvent) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO interaction_events (user_id, target_user_id, action, latency_ms, quality_rating)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		e.UserID, e.TargetUserID, e.Action, e.LatencyMS, e.QualityRating,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to append interaction: %w", err)
	}
	return id, nil
}

// BackfillQualityRating sets the post-interaction quality rating on an
// event. This is the only permitted mutation of a recorded event, and only
// while the rating is still unset.
func (db *DB) BackfillQualityRating(ctx context.Context, eventID uuid.UUID, rating int) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE interaction_events SET quality_rating = $1
		 WHERE id = $2 AND quality_rating IS NULL`,
		rating, eventID,
	)
	if err != nil {
		return fmt.Errorf("failed to backfill quality rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("interaction %s not found or already rated", eventID)
	}
	return nil
}

// BehaviorAggregate summarizes all recorded interactions toward a target
// user, for the scorer's behavior component.
func (db *DB) BehaviorAggregate(ctx context.Context, targetUserID uuid.UUID) (*types.BehaviorAggregate, error) {
	agg := types.BehaviorAggregate{TargetUserID: targetUserID}

	err := db.pool.QueryRow(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE action = 'view'),
		   COUNT(*) FILTER (WHERE action = 'like'),
		   COUNT(*) FILTER (WHERE action = 'skip'),
		   COUNT(*) FILTER (WHERE action = 'connect'),
		   COUNT(*) FILTER (WHERE action = 'meet'),
		   AVG(quality_rating)
		 FROM interaction_events WHERE target_user_id = $1`,
		targetUserID,
	).Scan(&agg.Views, &agg.Likes, &agg.Skips, &agg.Connects, &agg.Meets, &agg.AvgQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate behavior: %w", err)
	}

	return &agg, nil
}

// ActivityCounts returns how many interactions a user performed, by action.
func (db *DB) ActivityCounts(ctx context.Context, userID uuid.UUID) (map[types.InteractionAction]int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT action, COUNT(*) FROM interaction_events
		 WHERE user_id = $1 GROUP BY action`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count activity: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.InteractionAction]int)
	for rows.Next() {
		var action types.InteractionAction
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("failed to scan activity count: %w", err)
		}
		counts[action] = count
	}
	return counts, rows.Err()
}

// InteractionStats returns the total number of interactions since the given
// time and how many of them progressed to messaging (connect or meet).
func (db *DB) InteractionStats(ctx context.Context, since time.Time) (total, progressed int, err error) {
	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE action IN ('connect', 'meet'))
		 FROM interaction_events WHERE created_at >= $1`,
		since,
	).Scan(&total, &progressed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get interaction stats: %w", err)
	}
	return total, progressed, nil
}
