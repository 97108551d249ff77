package analytics

import (
	"strings"

	"github.com/latentspace/match-engine/internal/types"
)

// profileChecklist is the fixed list of profile fields that count toward
// completeness. Each filled field contributes an equal share.
var profileChecklist = []struct {
	name   string
	filled func(*types.UserProfile) bool
}{
	{"role_intent", func(p *types.UserProfile) bool { return p.RoleIntent != "" }},
	{"seniority", func(p *types.UserProfile) bool { return p.Seniority != "" }},
	{"timezone", func(p *types.UserProfile) bool { return p.Timezone != "" }},
	{"weekly_hours", func(p *types.UserProfile) bool { return p.WeeklyHours > 0 }},
	{"location_city", func(p *types.UserProfile) bool { return strings.TrimSpace(p.LocationCity) != "" }},
	{"remote_preference", func(p *types.UserProfile) bool { return p.RemotePreference != "" }},
	{"skills", func(p *types.UserProfile) bool { return len(p.Skills) > 0 }},
	{"industries", func(p *types.UserProfile) bool { return len(p.Industries) > 0 }},
	{"bio", func(p *types.UserProfile) bool { return strings.TrimSpace(p.Bio) != "" }},
	{"embedding", func(p *types.UserProfile) bool { return len(p.Embedding) > 0 }},
}

// Completeness scores how much of the profile checklist is filled in, as a
// percentage capped at 100. A nil profile scores 0. Filling a previously
// empty checklist field always raises the score until the cap is reached.
func Completeness(p *types.UserProfile) int {
	if p == nil {
		return 0
	}
	filled := 0
	for _, item := range profileChecklist {
		if item.filled(p) {
			filled++
		}
	}
	pct := filled * 100 / len(profileChecklist)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Recommendation thresholds
const (
	minCompleteness   = 70
	highViewCount     = 20
	lowLikeRate       = 0.1
	staleConnectLikes = 5
)

// recommendations generates threshold-rule advice from a user's profile and
// activity. Rules are checked in a fixed order so output is deterministic.
func recommendations(p *types.UserProfile, counts map[types.InteractionAction]int) []string {
	var recs []string

	if Completeness(p) < minCompleteness {
		recs = append(recs, "Complete your profile to improve match quality")
	}

	views := counts[types.ActionView]
	likes := counts[types.ActionLike]
	connects := counts[types.ActionConnect]

	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		recs = append(recs, "Start browsing candidates to receive personalized matches")
		return recs
	}

	if views >= highViewCount && float64(likes) < lowLikeRate*float64(views) {
		recs = append(recs, "You view many profiles but like few; consider loosening your filters")
	}
	if likes >= staleConnectLikes && connects == 0 {
		recs = append(recs, "You have liked several candidates without connecting; try reaching out")
	}
	return recs
}
