// Package analytics computes system-wide matching metrics and per-user
// insights from stored profiles and interaction history.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/types"
)

// Store is the persistence surface analytics reads from.
type Store interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	ActivityCounts(ctx context.Context, userID uuid.UUID) (map[types.InteractionAction]int, error)
	MatchStats(ctx context.Context, since time.Time) (total, successful int, err error)
	InteractionStats(ctx context.Context, since time.Time) (total, progressed int, err error)
}

// Analytics assembles reports over the match store.
type Analytics struct {
	store Store
}

// New creates an Analytics reader over the given store.
func New(store Store) *Analytics {
	return &Analytics{store: store}
}

// SystemMetrics reports matching outcomes over the given window. Rates are
// zero when the window holds no data. Response and conversion rates stay nil
// until the interaction log records message replies.
func (a *Analytics) SystemMetrics(ctx context.Context, window types.TimeRange) (*types.MatchingMetrics, error) {
	if !window.Valid() {
		return nil, fmt.Errorf("invalid time range %q", window)
	}
	since := time.Now().Add(-window.Duration())

	totalMatches, successful, err := a.store.MatchStats(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get match stats: %w", err)
	}
	totalInteractions, progressed, err := a.store.InteractionStats(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get interaction stats: %w", err)
	}

	metrics := types.MatchingMetrics{
		Range:             window,
		TotalMatches:      totalMatches,
		SuccessfulMatches: successful,
		GeneratedAt:       time.Now(),
	}
	if totalMatches > 0 {
		metrics.SuccessRate = float64(successful) / float64(totalMatches)
	}
	if totalInteractions > 0 {
		metrics.EngagementRate = float64(progressed) / float64(totalInteractions)
	}
	return &metrics, nil
}

// UserInsights reports a user's profile completeness, activity counts and
// generated recommendations.
func (a *Analytics) UserInsights(ctx context.Context, userID uuid.UUID) (*types.UserMatchingInsights, error) {
	profile, err := a.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	counts, err := a.store.ActivityCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity counts: %w", err)
	}

	return &types.UserMatchingInsights{
		UserID:              userID,
		ProfileCompleteness: Completeness(profile),
		ActivityCounts:      counts,
		Recommendations:     recommendations(profile, counts),
		GeneratedAt:         time.Now(),
	}, nil
}
