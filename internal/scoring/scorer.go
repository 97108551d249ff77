// Package scoring combines extracted features into a total match score with
// a component breakdown and human-readable reasons.
//
// Score is a pure function of its inputs plus the weight configuration:
// persistence of results is the ranker's responsibility.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/features"
	"github.com/latentspace/match-engine/internal/types"
	"github.com/latentspace/match-engine/internal/weights"
)

// NeutralBehaviorScore is used when a candidate has no interaction history.
const NeutralBehaviorScore = 0.5

// DisqualifiedHardScore is the sentinel hard score for pairs that violated a
// deal-breaker.
const DisqualifiedHardScore = 0.0

// Weights of the individual hard-score features. They sum to 1 and drive
// both the hard score and the ordering of generated reasons.
const (
	weightSkillOverlap     = 0.40
	weightMustHaves        = 0.15
	weightRoles            = 0.12
	weightAvailability     = 0.11
	weightIndustryOverlap  = 0.08
	weightTechStackOverlap = 0.08
	weightNiceToHave       = 0.06
)

// Input is everything needed to score one (user, candidate) pair.
type Input struct {
	User        *types.UserProfile
	Preferences *types.MatchingPreference
	Candidate   *types.UserProfile
	// Behavior summarizes the candidate's historical interaction outcomes.
	// Nil degrades to a neutral behavior score.
	Behavior *types.BehaviorAggregate
}

// Result is the scored outcome for one pair.
type Result struct {
	CandidateID  uuid.UUID                 `json:"candidate_id"`
	Total        float64                   `json:"total"`
	Breakdown    types.ScoreBreakdown      `json:"breakdown"`
	Reasons      []string                  `json:"reasons"`
	RiskHints    []string                  `json:"risk_hints,omitempty"`
	Disqualified bool                      `json:"disqualified"`
	Constraints  features.ConstraintResult `json:"constraints"`
}

// contribution is one feature's part of the score, kept for reason ordering.
type contribution struct {
	name   string
	weight float64
	value  float64
	reason string
}

func (c contribution) amount() float64 {
	return c.weight * c.value
}

// Score computes the total score and explanation for one pair under the
// given weight configuration.
func Score(in Input, cfg *weights.Config) Result {
	constraints := features.CheckConstraints(in.Preferences, in.Candidate)

	contributions := hardContributions(in, constraints)
	hardScore := 0.0
	for _, c := range contributions {
		hardScore += c.amount()
	}

	semanticScore := features.SemanticSimilarity(in.User.Embedding, in.Candidate.Embedding)
	behaviorScore := behaviorScore(in.Behavior)

	result := Result{
		CandidateID: in.Candidate.UserID,
		Breakdown: types.ScoreBreakdown{
			Hard:     hardScore,
			Semantic: semanticScore,
			Behavior: behaviorScore,
		},
		Constraints: constraints,
		RiskHints:   riskHints(in, semanticScore),
	}

	if constraints.DealBreakerViolated {
		// A violated deal-breaker forces the pair below the minimum
		// threshold no matter what the other components say.
		result.Disqualified = true
		result.Breakdown.Hard = DisqualifiedHardScore
		result.Total = 0
		for _, violation := range constraints.Violations(features.KindDealBreaker) {
			result.Reasons = append(result.Reasons, "Deal-breaker: "+violation.Detail)
		}
		return result
	}

	result.Total = clamp01(cfg.HardWeight*hardScore +
		cfg.SemanticWeight*semanticScore +
		cfg.BehaviorWeight*behaviorScore)

	contributions = append(contributions, semanticContribution(cfg, semanticScore))
	result.Reasons = buildReasons(contributions)
	return result
}

func hardContributions(in Input, constraints features.ConstraintResult) []contribution {
	user, candidate := in.User, in.Candidate

	skillMatches := features.Intersection(user.Skills, candidate.Skills)
	industryMatches := features.Intersection(user.Industries, candidate.Industries)
	techMatches := features.Intersection(user.TechStack, candidate.TechStack)

	contributions := []contribution{
		{
			name:   "skill_overlap",
			weight: weightSkillOverlap,
			value:  features.Jaccard(user.Skills, candidate.Skills),
			reason: overlapReason("skills", skillMatches, features.Jaccard(user.Skills, candidate.Skills)),
		},
		{
			name:   "must_have_satisfaction",
			weight: weightMustHaves,
			value:  constraints.MustHaveSatisfaction,
			reason: mustHaveReason(constraints),
		},
		{
			name:   "role_complementarity",
			weight: weightRoles,
			value:  features.RoleComplementarity(user.RoleIntent, candidate.RoleIntent),
			reason: roleReason(user.RoleIntent, candidate.RoleIntent),
		},
		{
			name:   "availability_closeness",
			weight: weightAvailability,
			value: features.NumericCloseness(float64(user.WeeklyHours), float64(candidate.WeeklyHours),
				types.WeeklyHoursMin, types.WeeklyHoursMax),
			reason: availabilityReason(user.WeeklyHours, candidate.WeeklyHours),
		},
		{
			name:   "industry_overlap",
			weight: weightIndustryOverlap,
			value:  features.Jaccard(user.Industries, candidate.Industries),
			reason: overlapReason("industries", industryMatches, features.Jaccard(user.Industries, candidate.Industries)),
		},
		{
			name:   "tech_stack_overlap",
			weight: weightTechStackOverlap,
			value:  features.Jaccard(user.TechStack, candidate.TechStack),
			reason: overlapReason("tech stack", techMatches, features.Jaccard(user.TechStack, candidate.TechStack)),
		},
		{
			name:   "nice_to_have",
			weight: weightNiceToHave,
			value:  niceToHaveBoost(in.Preferences, candidate),
			reason: niceToHaveReason(in.Preferences, candidate),
		},
	}

	return contributions
}

func semanticContribution(cfg *weights.Config, semanticScore float64) contribution {
	c := contribution{
		name:   "semantic_similarity",
		weight: cfg.SemanticWeight,
		value:  semanticScore,
	}
	if semanticScore > 0.7 {
		c.reason = "Strong alignment between profile descriptions"
	}
	return c
}

// buildReasons orders reasons by how much the feature contributed, ties
// broken by feature weight descending, then by feature name for a fully
// deterministic order.
func buildReasons(contributions []contribution) []string {
	withReason := make([]contribution, 0, len(contributions))
	for _, c := range contributions {
		if c.reason != "" && c.value > 0 {
			withReason = append(withReason, c)
		}
	}

	sort.SliceStable(withReason, func(i, j int) bool {
		a, b := withReason[i], withReason[j]
		if a.amount() != b.amount() {
			return a.amount() > b.amount()
		}
		if a.weight != b.weight {
			return a.weight > b.weight
		}
		return a.name < b.name
	})

	reasons := make([]string, 0, len(withReason))
	for _, c := range withReason {
		reasons = append(reasons, c.reason)
	}
	return reasons
}

// behaviorScore derives a [0,1] score from a candidate's interaction
// history. Engagement is the fraction of interactions that were positive;
// the post-interaction quality rating is blended in when available and
// otherwise treated as neutral.
func behaviorScore(agg *types.BehaviorAggregate) float64 {
	if agg == nil || agg.Total() == 0 {
		return NeutralBehaviorScore
	}

	engagement := float64(agg.Likes+agg.Connects+agg.Meets) / float64(agg.Total())

	quality := 0.5
	if agg.AvgQuality != nil {
		quality = (*agg.AvgQuality - 1) / 4
	}

	return clamp01(0.6*engagement + 0.4*quality)
}

func niceToHaveBoost(prefs *types.MatchingPreference, candidate *types.UserProfile) float64 {
	if prefs == nil {
		return 0
	}
	n := &prefs.NiceToHaves
	if len(n.Industries) == 0 && len(n.TechStack) == 0 {
		return 0
	}

	var sum float64
	var parts int
	if len(n.Industries) > 0 {
		sum += features.Jaccard(n.Industries, candidate.Industries)
		parts++
	}
	if len(n.TechStack) > 0 {
		sum += features.Jaccard(n.TechStack, candidate.TechStack)
		parts++
	}
	return sum / float64(parts)
}

func overlapReason(label string, matches []string, score float64) string {
	if len(matches) == 0 {
		return ""
	}
	joined := strings.Join(matches, ", ")
	if score >= 0.6 {
		return fmt.Sprintf("Strong %s overlap (%s)", label, joined)
	}
	return fmt.Sprintf("Shared %s: %s", label, joined)
}

func mustHaveReason(constraints features.ConstraintResult) string {
	mustHaveCount := 0
	for _, check := range constraints.Checks {
		if check.Kind == features.KindMustHave {
			mustHaveCount++
		}
	}
	if mustHaveCount == 0 || constraints.MustHaveSatisfaction < 1 {
		return ""
	}
	return "Meets all must-have requirements"
}

func roleReason(a, b types.RoleIntent) string {
	if features.RoleComplementarity(a, b) < 1 {
		return ""
	}
	return fmt.Sprintf("Complementary roles (%s + %s)", a, b)
}

func availabilityReason(userHours, candidateHours int) string {
	closeness := features.NumericCloseness(float64(userHours), float64(candidateHours),
		types.WeeklyHoursMin, types.WeeklyHoursMax)
	if closeness < 0.8 {
		return ""
	}
	return fmt.Sprintf("Similar weekly availability (%dh vs %dh)", userHours, candidateHours)
}

func niceToHaveReason(prefs *types.MatchingPreference, candidate *types.UserProfile) string {
	if niceToHaveBoost(prefs, candidate) <= 0 {
		return ""
	}
	return "Matches your nice-to-have preferences"
}

// riskHints flags soft concerns that do not change the score but are worth
// surfacing alongside it.
func riskHints(in Input, semanticScore float64) []string {
	user, candidate := in.User, in.Candidate
	var hints []string

	if gap := absInt(user.WeeklyHours - candidate.WeeklyHours); gap > 20 {
		hints = append(hints, fmt.Sprintf("Weekly availability differs by %dh", gap))
	}

	if user.EquityExpectation != nil && candidate.EquityExpectation != nil {
		if diff := abs(*user.EquityExpectation - *candidate.EquityExpectation); diff > 30 {
			hints = append(hints, fmt.Sprintf("Equity expectations are %.0f points apart", diff))
		}
	}

	if user.RiskTolerance != nil && candidate.RiskTolerance != nil {
		if gap := absInt(*user.RiskTolerance - *candidate.RiskTolerance); gap >= 5 {
			hints = append(hints, "Risk tolerance differs significantly")
		}
	}

	if user.Timezone != "" && candidate.Timezone != "" && user.Timezone != candidate.Timezone {
		hints = append(hints, fmt.Sprintf("Different timezones (%s vs %s)", user.Timezone, candidate.Timezone))
	}

	if len(user.Embedding) > 0 && len(candidate.Embedding) > 0 && semanticScore < 0.2 {
		hints = append(hints, "Profile descriptions have little in common")
	}

	return hints
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
