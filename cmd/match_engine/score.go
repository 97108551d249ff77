package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/latentspace/match-engine/internal/observability"
	"github.com/latentspace/match-engine/internal/scoring"
	"github.com/latentspace/match-engine/internal/types"
	"github.com/latentspace/match-engine/internal/weights"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a candidate against a user offline",
	Long:  "Deterministically scores one candidate profile against a user profile from JSON files, without touching the database. Useful for inspecting weight configurations.",
	RunE:  runScore,
}

var (
	scoreUserPath        string
	scoreCandidatePath   string
	scorePreferencesPath string
	scoreWeightsPath     string
	scoreVersion         string
	scoreOutput          string
	scoreVerbose         bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreUserPath, "user", "u", "", "Path to the user profile JSON file (required)")
	scoreCmd.Flags().StringVarP(&scoreCandidatePath, "candidate", "c", "", "Path to the candidate profile JSON file (required)")
	scoreCmd.Flags().StringVarP(&scorePreferencesPath, "preferences", "p", "", "Path to the user's matching preferences JSON file")
	scoreCmd.Flags().StringVar(&scoreWeightsPath, "weights", "", "Path to a weight configuration JSON file")
	scoreCmd.Flags().StringVar(&scoreVersion, "version", "", "Weight configuration version (default: registry default)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to the output JSON file (default: stdout)")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print a formatted score breakdown")

	if err := scoreCmd.MarkFlagRequired("user"); err != nil {
		panic(fmt.Sprintf("failed to mark user flag as required: %v", err))
	}
	if err := scoreCmd.MarkFlagRequired("candidate"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, _ []string) error {
	var user, candidate types.UserProfile
	if err := loadJSON(scoreUserPath, &user); err != nil {
		return fmt.Errorf("failed to load user profile: %w", err)
	}
	if err := loadJSON(scoreCandidatePath, &candidate); err != nil {
		return fmt.Errorf("failed to load candidate profile: %w", err)
	}

	var prefs *types.MatchingPreference
	if scorePreferencesPath != "" {
		prefs = &types.MatchingPreference{}
		if err := loadJSON(scorePreferencesPath, prefs); err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
	}

	registry := weights.NewRegistry()
	if scoreWeightsPath != "" {
		if err := registry.LoadFile(scoreWeightsPath); err != nil {
			return fmt.Errorf("failed to load weight config: %w", err)
		}
	}
	cfg, err := registry.Get(scoreVersion)
	if err != nil {
		return fmt.Errorf("failed to resolve weight version: %w", err)
	}

	result := scoring.Score(scoring.Input{
		User:        &user,
		Preferences: prefs,
		Candidate:   &candidate,
	}, cfg)

	if scoreVerbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintProfileSummary(&user)
		printer.PrintScoreResult(&result)
		printer.PrintConstraints(&result)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal score result: %w", err)
	}

	if scoreOutput == "" {
		fmt.Println(string(out))
		return nil
	}
	if dir := filepath.Dir(scoreOutput); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(scoreOutput, out, 0644); err != nil {
		return fmt.Errorf("failed to write score result to %s: %w", scoreOutput, err)
	}
	return nil
}

// loadJSON reads and unmarshals a JSON file into v.
func loadJSON(path string, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}
