// Package ranking turns scored candidate pairs into ordered, persisted
// match recommendations.
package ranking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/scoring"
	"github.com/latentspace/match-engine/internal/types"
	"github.com/latentspace/match-engine/internal/weights"
)

// ErrProfileNotFound reports a scoring request for a user without a profile.
var ErrProfileNotFound = errors.New("user profile not found")

// Store is the persistence surface the ranker needs.
type Store interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	GetProfiles(ctx context.Context, userIDs []uuid.UUID) ([]types.UserProfile, error)
	ListCandidateProfiles(ctx context.Context, excludeUserID uuid.UUID, limit int) ([]types.UserProfile, error)
	GetPreference(ctx context.Context, userID uuid.UUID) (*types.MatchingPreference, error)
	BehaviorAggregate(ctx context.Context, targetUserID uuid.UUID) (*types.BehaviorAggregate, error)
	UpsertMatchResult(ctx context.Context, r *types.MatchResult) (*types.MatchResult, error)
}

// Ranker scores candidate pools and persists the resulting matches.
type Ranker struct {
	store    Store
	registry *weights.Registry
}

// New creates a Ranker backed by the given store and weight registry.
func New(store Store, registry *weights.Registry) *Ranker {
	return &Ranker{store: store, registry: registry}
}

// RankedCandidate pairs one candidate's profile with their score.
type RankedCandidate struct {
	Candidate types.UserProfile `json:"candidate"`
	Score     scoring.Result    `json:"score"`
}

// Rank filters and orders scored candidates. Disqualified pairs and pairs
// scoring below the threshold are removed; the rest sort by total score
// descending, with more recently active candidates first among equals and
// candidate id as the final tie-break so equal inputs always produce the
// same order.
func Rank(candidates []RankedCandidate, minScoreThreshold float64) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score.Disqualified || c.Score.Total < minScoreThreshold {
			continue
		}
		ranked = append(ranked, c)
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score.Total != b.Score.Total {
			return a.Score.Total > b.Score.Total
		}
		if !a.Candidate.LastActiveAt.Equal(b.Candidate.LastActiveAt) {
			return a.Candidate.LastActiveAt.After(b.Candidate.LastActiveAt)
		}
		return bytes.Compare(a.Candidate.UserID[:], b.Candidate.UserID[:]) < 0
	})
	return ranked
}

// ScoreUser scores a candidate pool against one user and persists every
// scored pair, including disqualified ones, so cached verdicts survive
// re-runs. When candidateIDs is empty the most recently active profiles are
// used as the pool. The returned slice contains only qualified matches in
// ranked order.
func (r *Ranker) ScoreUser(ctx context.Context, userID uuid.UUID, candidateIDs []uuid.UUID, version string, poolLimit int) ([]*types.MatchResult, error) {
	cfg, err := r.registry.Get(version)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve weight version: %w", err)
	}

	user, err := r.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	if user == nil {
		return nil, ErrProfileNotFound
	}

	prefs, err := r.store.GetPreference(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	var pool []types.UserProfile
	if len(candidateIDs) > 0 {
		pool, err = r.store.GetProfiles(ctx, candidateIDs)
	} else {
		pool, err = r.store.ListCandidateProfiles(ctx, userID, poolLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate pool: %w", err)
	}

	scored := make([]RankedCandidate, 0, len(pool))
	for i := range pool {
		candidate := pool[i]
		if candidate.UserID == userID {
			continue
		}

		behavior, err := r.store.BehaviorAggregate(ctx, candidate.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load behavior aggregate: %w", err)
		}

		result := scoring.Score(scoring.Input{
			User:        user,
			Preferences: prefs,
			Candidate:   &candidate,
			Behavior:    behavior,
		}, cfg)

		scored = append(scored, RankedCandidate{Candidate: candidate, Score: result})
	}

	expiresAt := time.Now().Add(cfg.ResultTTL())
	for _, c := range scored {
		if _, err := r.store.UpsertMatchResult(ctx, &types.MatchResult{
			UserID:           userID,
			CandidateID:      c.Candidate.UserID,
			TotalScore:       c.Score.Total,
			Breakdown:        c.Score.Breakdown,
			Reasons:          c.Score.Reasons,
			RiskHints:        c.Score.RiskHints,
			Disqualified:     c.Score.Disqualified,
			AlgorithmVersion: cfg.Version,
			ExpiresAt:        expiresAt,
		}); err != nil {
			return nil, fmt.Errorf("failed to persist match result: %w", err)
		}
	}

	ranked := Rank(scored, cfg.MinScoreThreshold)
	results := make([]*types.MatchResult, 0, len(ranked))
	for _, c := range ranked {
		results = append(results, &types.MatchResult{
			UserID:           userID,
			CandidateID:      c.Candidate.UserID,
			TotalScore:       c.Score.Total,
			Breakdown:        c.Score.Breakdown,
			Reasons:          c.Score.Reasons,
			RiskHints:        c.Score.RiskHints,
			Stage:            types.StageRecommended,
			AlgorithmVersion: cfg.Version,
			ExpiresAt:        expiresAt,
		})
	}
	return results, nil
}
