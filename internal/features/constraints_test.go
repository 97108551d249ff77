package features

import (
	"testing"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateProfile() *types.UserProfile {
	return &types.UserProfile{
		UserID:           uuid.New(),
		RoleIntent:       types.RoleCEO,
		Seniority:        types.SenioritySenior,
		Timezone:         "Asia/Shanghai",
		WeeklyHours:      35,
		RemotePreference: types.Hybrid,
	}
}

func TestCheckConstraints_NilPreferences(t *testing.T) {
	result := CheckConstraints(nil, candidateProfile())
	assert.Empty(t, result.Checks)
	assert.Equal(t, 1.0, result.MustHaveSatisfaction)
	assert.False(t, result.DealBreakerViolated)
}

func TestCheckConstraints_MustHavesSatisfied(t *testing.T) {
	prefs := &types.MatchingPreference{
		MustHaves: types.MustHaveSet{
			Timezone:       "Asia/Shanghai",
			MinWeeklyHours: 30,
			RemoteModes:    []types.RemotePreference{types.RemoteFirst, types.Hybrid},
		},
	}

	result := CheckConstraints(prefs, candidateProfile())
	require.Len(t, result.Checks, 3)
	assert.Equal(t, 1.0, result.MustHaveSatisfaction)
	assert.False(t, result.DealBreakerViolated)
}

func TestCheckConstraints_PartialMustHaveFailure(t *testing.T) {
	prefs := &types.MatchingPreference{
		MustHaves: types.MustHaveSet{
			Timezone:       "Europe/Berlin",
			MinWeeklyHours: 30,
		},
	}

	result := CheckConstraints(prefs, candidateProfile())
	require.Len(t, result.Checks, 2)
	assert.InDelta(t, 0.5, result.MustHaveSatisfaction, 1e-9)
	assert.False(t, result.DealBreakerViolated)

	failed := result.Violations(KindMustHave)
	require.Len(t, failed, 1)
	assert.Equal(t, "timezone", failed[0].Name)
}

func TestCheckConstraints_VisaDealBreaker(t *testing.T) {
	prefs := &types.MatchingPreference{
		DealBreakers: types.DealBreakerSet{RejectVisaConstraint: true},
	}

	candidate := candidateProfile()
	candidate.VisaConstraint = true

	result := CheckConstraints(prefs, candidate)
	assert.True(t, result.DealBreakerViolated)

	failed := result.Violations(KindDealBreaker)
	require.Len(t, failed, 1)
	assert.Equal(t, "no_visa_sponsorship", failed[0].Name)

	// A candidate without the constraint passes
	result = CheckConstraints(prefs, candidateProfile())
	assert.False(t, result.DealBreakerViolated)
}

func TestCheckConstraints_EquityDealBreaker(t *testing.T) {
	limit := 30.0
	prefs := &types.MatchingPreference{
		DealBreakers: types.DealBreakerSet{MaxEquityExpectation: &limit},
	}

	candidate := candidateProfile()
	expectation := 50.0
	candidate.EquityExpectation = &expectation

	result := CheckConstraints(prefs, candidate)
	assert.True(t, result.DealBreakerViolated)

	// Candidate without a stated expectation is not excluded
	result = CheckConstraints(prefs, candidateProfile())
	assert.False(t, result.DealBreakerViolated)
}

func TestCheckConstraints_ExcludedRoles(t *testing.T) {
	prefs := &types.MatchingPreference{
		DealBreakers: types.DealBreakerSet{ExcludedRoles: []types.RoleIntent{types.RoleCEO}},
	}

	result := CheckConstraints(prefs, candidateProfile())
	assert.True(t, result.DealBreakerViolated)
}

func TestCheckConstraints_RolesMustHave(t *testing.T) {
	prefs := &types.MatchingPreference{
		MustHaves: types.MustHaveSet{Roles: []types.RoleIntent{types.RoleCTO, types.RoleTechnical}},
	}

	result := CheckConstraints(prefs, candidateProfile())
	assert.Equal(t, 0.0, result.MustHaveSatisfaction)
}
