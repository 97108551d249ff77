package main

import (
	"fmt"

	"github.com/latentspace/match-engine/internal/config"
	"github.com/latentspace/match-engine/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveWeights string
	serveConfig  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes profile, matching, interaction and analytics endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().StringVar(&serveWeights, "weights", "", "Path to a weight configuration JSON file (default: WEIGHTS_FILE env)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to a JSON config file")
	rootCmd.AddCommand(serveCmd)
}

// resolveConfig layers CLI flags over the config file over the environment.
func resolveConfig(configPath string, flags config.Config) (config.Config, error) {
	cfg := flags
	if configPath != "" {
		fileCfg, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if cfg.DatabaseURL == "" {
		return config.Config{}, fmt.Errorf("database URL is required (DATABASE_URL env or config file)")
	}
	return cfg, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(serveConfig, config.Config{
		Port:        servePort,
		WeightsFile: serveWeights,
	})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		DatabaseURL: cfg.DatabaseURL,
		WeightsFile: cfg.WeightsFile,
		// Embeddings are optional; without an API key profiles score with a
		// neutral semantic component.
		GeminiAPIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
