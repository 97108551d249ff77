package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/config"
	"github.com/latentspace/match-engine/internal/db"
	"github.com/latentspace/match-engine/internal/ranking"
	"github.com/latentspace/match-engine/internal/weights"
	"github.com/spf13/cobra"
)

var batchMatchCmd = &cobra.Command{
	Use:   "batch-match",
	Short: "Recompute matches for a cohort of users",
	Long:  "Scores every user in the cohort against the candidate pool and persists the results. Without --users the whole profile table is the cohort.",
	RunE:  runBatchMatch,
}

var (
	batchUsers       []string
	batchVersion     string
	batchWeights     string
	batchConfig      string
	batchPoolLimit   int
	batchConcurrency int
)

func init() {
	batchMatchCmd.Flags().StringSliceVar(&batchUsers, "users", nil, "User IDs to score (default: all users)")
	batchMatchCmd.Flags().StringVar(&batchVersion, "version", "", "Weight configuration version (default: registry default)")
	batchMatchCmd.Flags().StringVar(&batchWeights, "weights", "", "Path to a weight configuration JSON file (default: WEIGHTS_FILE env)")
	batchMatchCmd.Flags().StringVar(&batchConfig, "config", "", "Path to a JSON config file")
	batchMatchCmd.Flags().IntVar(&batchPoolLimit, "pool-limit", 0, "Maximum candidate pool size per user (default 200)")
	batchMatchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "How many users to score in parallel")
	rootCmd.AddCommand(batchMatchCmd)
}

func runBatchMatch(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(batchConfig, config.Config{
		WeightsFile: batchWeights,
		WeightsVer:  batchVersion,
		PoolLimit:   batchPoolLimit,
		Concurrency: batchConcurrency,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	registry := weights.NewRegistry()
	if cfg.WeightsFile != "" {
		if err := registry.LoadFile(cfg.WeightsFile); err != nil {
			return fmt.Errorf("failed to load weight config: %w", err)
		}
	}

	cohort, err := resolveCohort(ctx, database, cfg.PoolLimit)
	if err != nil {
		return err
	}
	if len(cohort) == 0 {
		return fmt.Errorf("cohort is empty")
	}

	ranker := ranking.New(database, registry)
	stats, err := ranker.BatchRun(ctx, cohort, cfg.WeightsVer, cfg.PoolLimit, cfg.Concurrency)
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch stats: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// resolveCohort parses --users, or loads every profile when it is unset.
func resolveCohort(ctx context.Context, database *db.DB, poolLimit int) ([]uuid.UUID, error) {
	if len(batchUsers) > 0 {
		cohort := make([]uuid.UUID, 0, len(batchUsers))
		for _, raw := range batchUsers {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q: %w", raw, err)
			}
			cohort = append(cohort, id)
		}
		return cohort, nil
	}

	profiles, err := database.ListCandidateProfiles(ctx, uuid.Nil, poolLimit*10)
	if err != nil {
		return nil, fmt.Errorf("failed to load cohort: %w", err)
	}
	cohort := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		cohort = append(cohort, p.UserID)
	}
	return cohort, nil
}
