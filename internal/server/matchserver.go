// Package server provides the HTTP REST API for the match engine.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/analytics"
	"github.com/latentspace/match-engine/internal/cache"
	"github.com/latentspace/match-engine/internal/db"
	"github.com/latentspace/match-engine/internal/embedding"
	"github.com/latentspace/match-engine/internal/ranking"
	"github.com/latentspace/match-engine/internal/server/ratelimit"
	"github.com/latentspace/match-engine/internal/types"
	"github.com/latentspace/match-engine/internal/weights"
)

// DefaultCacheTTL is how long read-side responses stay cached before a
// re-read hits the store again.
const DefaultCacheTTL = 5 * time.Minute

// Store is the persistence surface the API needs. *db.DB satisfies it;
// handler tests substitute an in-memory fake.
type Store interface {
	UpsertProfile(ctx context.Context, p *types.UserProfile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	GetProfiles(ctx context.Context, userIDs []uuid.UUID) ([]types.UserProfile, error)
	ListCandidateProfiles(ctx context.Context, excludeUserID uuid.UUID, limit int) ([]types.UserProfile, error)
	UpdateProfileEmbedding(ctx context.Context, userID uuid.UUID, embedding []float32) error
	TouchLastActive(ctx context.Context, userID uuid.UUID) error

	UpsertPreference(ctx context.Context, p *types.MatchingPreference) error
	GetPreference(ctx context.Context, userID uuid.UUID) (*types.MatchingPreference, error)

	AppendInteraction(ctx context.Context, e *types.InteractionEvent) (uuid.UUID, error)
	BackfillQualityRating(ctx context.Context, eventID uuid.UUID, rating int) error
	BehaviorAggregate(ctx context.Context, targetUserID uuid.UUID) (*types.BehaviorAggregate, error)
	ActivityCounts(ctx context.Context, userID uuid.UUID) (map[types.InteractionAction]int, error)
	InteractionStats(ctx context.Context, since time.Time) (total, progressed int, err error)

	UpsertMatchResult(ctx context.Context, r *types.MatchResult) (*types.MatchResult, error)
	GetMatchResult(ctx context.Context, id uuid.UUID) (*types.MatchResult, error)
	ListMatchResults(ctx context.Context, userID uuid.UUID, limit int) ([]*types.MatchResult, error)
	TransitionStage(ctx context.Context, id uuid.UUID, from, to types.Stage) (*types.MatchResult, error)
	MatchStats(ctx context.Context, since time.Time) (total, successful int, err error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	registry    *weights.Registry
	ranker      *ranking.Ranker
	analytics   *analytics.Analytics
	cache       *cache.Cache
	embedder    embedding.Client
	rateLimiter *ratelimit.Limiter
	closeDB     func()
}

// Config holds server configuration
type Config struct {
	Port         int
	DatabaseURL  string
	WeightsFile  string
	GeminiAPIKey string
	CacheTTL     time.Duration
}

// New creates a new server instance backed by PostgreSQL.
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry := weights.NewRegistry()
	if cfg.WeightsFile != "" {
		if err := registry.LoadFile(cfg.WeightsFile); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to load weight config: %w", err)
		}
	}

	var embedder embedding.Client
	if cfg.GeminiAPIKey != "" {
		embedder, err = embedding.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, embedding.DefaultModel)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create embedding client: %w", err)
		}
	}

	s := newServer(database, registry, embedder, cfg.CacheTTL)
	s.closeDB = database.Close
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // batch scoring calls can run long
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// newServer wires the service layer over a store. Split from New so handler
// tests can run against an in-memory store.
func newServer(store Store, registry *weights.Registry, embedder embedding.Client, cacheTTL time.Duration) *Server {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Server{
		store:     store,
		registry:  registry,
		ranker:    ranking.New(store, registry),
		analytics: analytics.New(store),
		cache:     cache.New(cacheTTL),
		embedder:  embedder,
	}
}

// routes builds the request router.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Profile store surface
	mux.HandleFunc("PUT /users/{id}/profile", s.handleUpsertProfile)
	mux.HandleFunc("GET /users/{id}/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /users/{id}/preferences", s.handleUpsertPreferences)
	mux.HandleFunc("GET /users/{id}/preferences", s.handleGetPreferences)

	// Matching
	mux.HandleFunc("POST /users/{id}/matches", s.handleScoreCandidates)
	mux.HandleFunc("GET /users/{id}/matches", s.handleListMatches)
	mux.HandleFunc("POST /matches/{id}/stage", s.handleTransitionStage)

	// Interactions
	mux.HandleFunc("POST /interactions", s.handleRecordInteraction)
	mux.HandleFunc("PUT /interactions/{id}/quality", s.handleQualityBackfill)

	// Analytics
	mux.HandleFunc("GET /metrics/matching", s.handleSystemMetrics)
	mux.HandleFunc("GET /users/{id}/insights", s.handleUserInsights)

	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.embedder != nil {
		if err := s.embedder.Close(); err != nil {
			log.Printf("Error closing embedding client: %v", err)
		}
	}
	if s.closeDB != nil {
		s.closeDB()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds per-client rate limiting
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
		}
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID identifies the client by IP address.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathUserID parses the {id} path segment as a user id.
func pathUserID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
