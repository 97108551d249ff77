package ranking

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds how many users are scored in parallel
// during a batch run.
const DefaultBatchConcurrency = 8

// BatchStats summarizes a batch scoring run.
type BatchStats struct {
	UsersScored      int    `json:"users_scored"`
	MatchesPersisted int    `json:"matches_persisted"`
	AlgorithmVersion string `json:"algorithm_version"`
}

// BatchRun recomputes matches for every user in the cohort. The weight
// version is resolved once at run start, so a registry update mid-run never
// splits a cohort across versions. Users are scored with bounded parallel
// fan-out; the first failure cancels the run.
func (r *Ranker) BatchRun(ctx context.Context, cohort []uuid.UUID, version string, poolLimit, concurrency int) (*BatchStats, error) {
	cfg, err := r.registry.Get(version)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve weight version: %w", err)
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	stats := BatchStats{AlgorithmVersion: cfg.Version}
	counts := make([]int, len(cohort))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, userID := range cohort {
		g.Go(func() error {
			matches, err := r.ScoreUser(ctx, userID, nil, cfg.Version, poolLimit)
			if err != nil {
				return fmt.Errorf("failed to score user %s: %w", userID, err)
			}
			counts[i] = len(matches)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.UsersScored = len(cohort)
	for _, n := range counts {
		stats.MatchesPersisted += n
	}
	log.Printf("Batch run complete: %d users scored, %d matches persisted (version %s)",
		stats.UsersScored, stats.MatchesPersisted, stats.AlgorithmVersion)
	return &stats, nil
}
