// Package types provides type definitions for structured data used throughout the match-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RoleIntent is the founding role a user wants to take.
type RoleIntent string

// Role intent values
const (
	RoleCEO       RoleIntent = "CEO"
	RoleCTO       RoleIntent = "CTO"
	RoleCPO       RoleIntent = "CPO"
	RoleCMO       RoleIntent = "CMO"
	RoleCOO       RoleIntent = "COO"
	RoleCFO       RoleIntent = "CFO"
	RoleTechnical RoleIntent = "Technical"
	RoleBusiness  RoleIntent = "Business"
)

// Seniority is a user's career stage.
type Seniority string

// Seniority values
const (
	SeniorityStudent Seniority = "student"
	SeniorityJunior  Seniority = "junior"
	SeniorityMid     Seniority = "mid"
	SenioritySenior  Seniority = "senior"
)

// RemotePreference is a user's preferred working mode.
type RemotePreference string

// Remote preference values
const (
	RemoteFirst RemotePreference = "remote_first"
	Hybrid      RemotePreference = "hybrid"
	OnsiteFirst RemotePreference = "onsite_first"
)

// Declared bounds for numeric profile fields. Feature extraction normalizes
// distances against these ranges, so they are part of the scoring contract.
const (
	WeeklyHoursMin = 5
	WeeklyHoursMax = 80

	EquityExpectationMin = 0.0
	EquityExpectationMax = 100.0

	RiskToleranceMin = 1
	RiskToleranceMax = 10
)

// UserProfile holds the structured attributes used for matching.
// One profile exists per user.
type UserProfile struct {
	UserID            uuid.UUID        `json:"user_id" validate:"required"`
	RoleIntent        RoleIntent       `json:"role_intent" validate:"required,oneof=CEO CTO CPO CMO COO CFO Technical Business"`
	Seniority         Seniority        `json:"seniority" validate:"required,oneof=student junior mid senior"`
	Timezone          string           `json:"timezone" validate:"required"`
	WeeklyHours       int              `json:"weekly_hours" validate:"min=5,max=80"`
	LocationCity      string           `json:"location_city,omitempty"`
	RemotePreference  RemotePreference `json:"remote_preference" validate:"required,oneof=remote_first hybrid onsite_first"`
	EquityExpectation *float64         `json:"equity_expectation,omitempty" validate:"omitempty,min=0,max=100"`
	SalaryExpectation *float64         `json:"salary_expectation,omitempty" validate:"omitempty,min=0"`
	VisaConstraint    bool             `json:"visa_constraint"`
	Skills            []string         `json:"skills,omitempty"`
	Industries        []string         `json:"industries,omitempty"`
	TechStack         []string         `json:"tech_stack,omitempty"`
	RiskTolerance     *int             `json:"risk_tolerance,omitempty" validate:"omitempty,min=1,max=10"`
	Bio               string           `json:"bio,omitempty"`
	// Embedding is derived from the free-text profile content and used for
	// semantic similarity. Empty when not yet computed.
	Embedding    []float32 `json:"embedding,omitempty"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate validates the UserProfile using the validator.
func (p *UserProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}
