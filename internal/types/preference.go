package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MustHaveSet holds hard constraints a candidate must satisfy to be
// considered. Zero values mean the constraint is not set.
type MustHaveSet struct {
	// Timezone requires candidates to share this timezone.
	Timezone string `json:"timezone,omitempty"`
	// MinWeeklyHours requires candidates to commit at least this many hours.
	MinWeeklyHours int `json:"min_weekly_hours,omitempty" validate:"omitempty,min=0,max=80"`
	// RemoteModes restricts candidates to these working modes.
	RemoteModes []RemotePreference `json:"remote_modes,omitempty" validate:"omitempty,dive,oneof=remote_first hybrid onsite_first"`
	// Roles restricts candidates to these role intents.
	Roles []RoleIntent `json:"roles,omitempty" validate:"omitempty,dive,oneof=CEO CTO CPO CMO COO CFO Technical Business"`
}

// NiceToHaveSet holds soft preferences that boost a candidate's score but
// never exclude.
type NiceToHaveSet struct {
	Industries []string `json:"industries,omitempty"`
	TechStack  []string `json:"tech_stack,omitempty"`
}

// DealBreakerSet holds hard exclusions. A single violated deal-breaker
// disqualifies the pair outright.
type DealBreakerSet struct {
	// RejectVisaConstraint excludes candidates who need visa sponsorship.
	RejectVisaConstraint bool `json:"reject_visa_constraint,omitempty"`
	// MaxEquityExpectation excludes candidates expecting more equity than this.
	MaxEquityExpectation *float64 `json:"max_equity_expectation,omitempty" validate:"omitempty,min=0,max=100"`
	// MaxSalaryExpectation excludes candidates expecting more salary than this.
	MaxSalaryExpectation *float64 `json:"max_salary_expectation,omitempty" validate:"omitempty,min=0"`
	// ExcludedRoles excludes candidates with these role intents.
	ExcludedRoles []RoleIntent `json:"excluded_roles,omitempty" validate:"omitempty,dive,oneof=CEO CTO CPO CMO COO CFO Technical Business"`
}

// MatchingPreference is a user's constraint set. One set exists per user and
// is created and updated only by its owner.
type MatchingPreference struct {
	UserID       uuid.UUID      `json:"user_id" validate:"required"`
	MustHaves    MustHaveSet    `json:"must_haves"`
	NiceToHaves  NiceToHaveSet  `json:"nice_to_haves"`
	DealBreakers DealBreakerSet `json:"deal_breakers"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Validate validates the MatchingPreference using the validator.
func (p *MatchingPreference) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}
