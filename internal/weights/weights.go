// Package weights provides named, versioned scoring weight configurations.
//
// Every MatchResult is attributed to the version that produced it, so
// configurations are immutable once registered: changing the formula means
// registering a new version, never editing an old one.
package weights

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultVersion is the built-in configuration every registry starts with.
const DefaultVersion = "v1"

// Config is one immutable weight configuration.
type Config struct {
	Version        string  `json:"version" validate:"required"`
	HardWeight     float64 `json:"hard_weight" validate:"min=0,max=1"`
	SemanticWeight float64 `json:"semantic_weight" validate:"min=0,max=1"`
	BehaviorWeight float64 `json:"behavior_weight" validate:"min=0,max=1"`
	// MinScoreThreshold is the floor below which a pair is never surfaced
	// as a positive match.
	MinScoreThreshold float64 `json:"min_score_threshold" validate:"min=0,max=1"`
	// ResultTTLHours controls the expiry timestamp stamped on results.
	ResultTTLHours int `json:"result_ttl_hours" validate:"min=1"`
	// Active gates whether the version may be used for new scoring calls.
	// Inactive versions remain registered so old results stay attributable.
	Active bool `json:"active"`
}

// ResultTTL returns the result expiry window as a duration.
func (c *Config) ResultTTL() time.Duration {
	return time.Duration(c.ResultTTLHours) * time.Hour
}

// Validate checks field bounds and that the component weights sum to 1.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	sum := c.HardWeight + c.SemanticWeight + c.BehaviorWeight
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("weight config %s: component weights sum to %.4f, want 1", c.Version, sum)
	}
	return nil
}

// UnknownVersionError reports a reference to a weight version that is not
// registered or not active. Scoring fails closed on it: there is no silent
// fallback to another version.
type UnknownVersionError struct {
	Version string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown or inactive weight version: %q", e.Version)
}

// Registry holds registered weight configurations. Construct one at process
// start and pass it to the components that score.
type Registry struct {
	mu             sync.RWMutex
	configs        map[string]*Config
	defaultVersion string
}

// NewRegistry returns a registry seeded with the built-in default version.
func NewRegistry() *Registry {
	r := &Registry{
		configs:        make(map[string]*Config),
		defaultVersion: DefaultVersion,
	}
	r.configs[DefaultVersion] = &Config{
		Version:           DefaultVersion,
		HardWeight:        0.5,
		SemanticWeight:    0.3,
		BehaviorWeight:    0.2,
		MinScoreThreshold: 0.35,
		ResultTTLHours:    72,
		Active:            true,
	}
	return r
}

// Register adds a configuration. Re-registering an existing version is an
// error; versions are immutable.
func (r *Registry) Register(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("failed to register weight config: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[cfg.Version]; exists {
		return fmt.Errorf("weight version %q is already registered", cfg.Version)
	}
	copied := *cfg
	r.configs[cfg.Version] = &copied
	return nil
}

// Get returns the configuration for a version. An empty version resolves to
// the default. Unknown or inactive versions return UnknownVersionError.
func (r *Registry) Get(version string) (*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if version == "" {
		version = r.defaultVersion
	}
	cfg, ok := r.configs[version]
	if !ok || !cfg.Active {
		return nil, &UnknownVersionError{Version: version}
	}
	copied := *cfg
	return &copied, nil
}

// SetDefault changes which version an empty reference resolves to. The
// version must already be registered and active.
func (r *Registry) SetDefault(version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[version]
	if !ok || !cfg.Active {
		return &UnknownVersionError{Version: version}
	}
	r.defaultVersion = version
	return nil
}

// Versions lists registered version names, active or not.
func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := make([]string, 0, len(r.configs))
	for version := range r.configs {
		versions = append(versions, version)
	}
	return versions
}
