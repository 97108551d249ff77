package types

import (
	"time"

	"github.com/google/uuid"
)

// TimeRange is a reporting window for system metrics.
type TimeRange string

// Time range values
const (
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
)

// Valid reports whether r is a known time range.
func (r TimeRange) Valid() bool {
	return r == RangeWeek || r == RangeMonth || r == RangeQuarter
}

// Duration returns the window length for the range.
func (r TimeRange) Duration() time.Duration {
	switch r {
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeMonth:
		return 30 * 24 * time.Hour
	case RangeQuarter:
		return 90 * 24 * time.Hour
	}
	return 0
}

// MatchingMetrics are system-wide matching outcomes over a time window.
type MatchingMetrics struct {
	Range             TimeRange `json:"range"`
	TotalMatches      int       `json:"total_matches"`
	SuccessfulMatches int       `json:"successful_matches"`
	SuccessRate       float64   `json:"success_rate"`
	// EngagementRate is the fraction of interactions that progressed to
	// messaging (connect or meet).
	EngagementRate float64 `json:"engagement_rate"`
	// ResponseRate is not yet computed: the interaction log does not record
	// message replies. Nil until the data exists.
	ResponseRate *float64 `json:"response_rate,omitempty"`
	// ConversionRate is not yet computed, for the same reason.
	ConversionRate *float64  `json:"conversion_rate,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// UserMatchingInsights is a per-user activity summary with generated
// recommendations.
type UserMatchingInsights struct {
	UserID uuid.UUID `json:"user_id"`
	// ProfileCompleteness is the percentage (0-100) of the profile field
	// checklist that is filled in.
	ProfileCompleteness int                       `json:"profile_completeness"`
	ActivityCounts      map[InteractionAction]int `json:"activity_counts"`
	Recommendations     []string                  `json:"recommendations"`
	GeneratedAt         time.Time                 `json:"generated_at"`
}
