package features

import (
	"fmt"

	"github.com/latentspace/match-engine/internal/types"
)

// ConstraintKind distinguishes hard filters from hard exclusions.
type ConstraintKind string

// Constraint kinds
const (
	KindMustHave    ConstraintKind = "must_have"
	KindDealBreaker ConstraintKind = "deal_breaker"
)

// ConstraintCheck is the outcome of a single must-have or deal-breaker
// predicate.
type ConstraintCheck struct {
	Name   string         `json:"name"`
	Kind   ConstraintKind `json:"kind"`
	Passed bool           `json:"passed"`
	Detail string         `json:"detail,omitempty"`
}

// ConstraintResult is the outcome of evaluating a full preference set
// against a candidate.
type ConstraintResult struct {
	Checks []ConstraintCheck `json:"checks"`
	// MustHaveSatisfaction is the fraction of must-have predicates the
	// candidate satisfies, 1 when none are configured.
	MustHaveSatisfaction float64 `json:"must_have_satisfaction"`
	// DealBreakerViolated is true when any deal-breaker predicate failed.
	// A single violation disqualifies the pair regardless of other features.
	DealBreakerViolated bool `json:"deal_breaker_violated"`
}

// Violations returns the failed checks of the given kind.
func (r *ConstraintResult) Violations(kind ConstraintKind) []ConstraintCheck {
	var failed []ConstraintCheck
	for _, check := range r.Checks {
		if check.Kind == kind && !check.Passed {
			failed = append(failed, check)
		}
	}
	return failed
}

// CheckConstraints evaluates the user's must-have and deal-breaker
// predicates against a candidate profile. Nil preferences evaluate to a
// fully satisfied result.
func CheckConstraints(prefs *types.MatchingPreference, candidate *types.UserProfile) ConstraintResult {
	result := ConstraintResult{MustHaveSatisfaction: 1}
	if prefs == nil {
		return result
	}

	mustHaves := evaluateMustHaves(&prefs.MustHaves, candidate)
	result.Checks = append(result.Checks, mustHaves...)

	if len(mustHaves) > 0 {
		passed := 0
		for _, check := range mustHaves {
			if check.Passed {
				passed++
			}
		}
		result.MustHaveSatisfaction = float64(passed) / float64(len(mustHaves))
	}

	for _, check := range evaluateDealBreakers(&prefs.DealBreakers, candidate) {
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.DealBreakerViolated = true
		}
	}

	return result
}

func evaluateMustHaves(m *types.MustHaveSet, candidate *types.UserProfile) []ConstraintCheck {
	var checks []ConstraintCheck

	if m.Timezone != "" {
		checks = append(checks, ConstraintCheck{
			Name:   "timezone",
			Kind:   KindMustHave,
			Passed: candidate.Timezone == m.Timezone,
			Detail: fmt.Sprintf("requires timezone %s, candidate is in %s", m.Timezone, candidate.Timezone),
		})
	}

	if m.MinWeeklyHours > 0 {
		checks = append(checks, ConstraintCheck{
			Name:   "min_weekly_hours",
			Kind:   KindMustHave,
			Passed: candidate.WeeklyHours >= m.MinWeeklyHours,
			Detail: fmt.Sprintf("requires at least %dh/week, candidate offers %dh", m.MinWeeklyHours, candidate.WeeklyHours),
		})
	}

	if len(m.RemoteModes) > 0 {
		checks = append(checks, ConstraintCheck{
			Name:   "remote_modes",
			Kind:   KindMustHave,
			Passed: containsRemoteMode(m.RemoteModes, candidate.RemotePreference),
			Detail: fmt.Sprintf("candidate prefers %s", candidate.RemotePreference),
		})
	}

	if len(m.Roles) > 0 {
		checks = append(checks, ConstraintCheck{
			Name:   "roles",
			Kind:   KindMustHave,
			Passed: containsRole(m.Roles, candidate.RoleIntent),
			Detail: fmt.Sprintf("candidate role is %s", candidate.RoleIntent),
		})
	}

	return checks
}

func evaluateDealBreakers(d *types.DealBreakerSet, candidate *types.UserProfile) []ConstraintCheck {
	var checks []ConstraintCheck

	if d.RejectVisaConstraint {
		checks = append(checks, ConstraintCheck{
			Name:   "no_visa_sponsorship",
			Kind:   KindDealBreaker,
			Passed: !candidate.VisaConstraint,
			Detail: "candidate requires visa sponsorship",
		})
	}

	if d.MaxEquityExpectation != nil && candidate.EquityExpectation != nil {
		checks = append(checks, ConstraintCheck{
			Name:   "max_equity_expectation",
			Kind:   KindDealBreaker,
			Passed: *candidate.EquityExpectation <= *d.MaxEquityExpectation,
			Detail: fmt.Sprintf("candidate expects %.1f%% equity, limit is %.1f%%", *candidate.EquityExpectation, *d.MaxEquityExpectation),
		})
	}

	if d.MaxSalaryExpectation != nil && candidate.SalaryExpectation != nil {
		checks = append(checks, ConstraintCheck{
			Name:   "max_salary_expectation",
			Kind:   KindDealBreaker,
			Passed: *candidate.SalaryExpectation <= *d.MaxSalaryExpectation,
			Detail: fmt.Sprintf("candidate expects %.0f salary, limit is %.0f", *candidate.SalaryExpectation, *d.MaxSalaryExpectation),
		})
	}

	if len(d.ExcludedRoles) > 0 {
		checks = append(checks, ConstraintCheck{
			Name:   "excluded_roles",
			Kind:   KindDealBreaker,
			Passed: !containsRole(d.ExcludedRoles, candidate.RoleIntent),
			Detail: fmt.Sprintf("candidate role %s is excluded", candidate.RoleIntent),
		})
	}

	return checks
}

func containsRemoteMode(modes []types.RemotePreference, mode types.RemotePreference) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}

func containsRole(roles []types.RoleIntent, role types.RoleIntent) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
