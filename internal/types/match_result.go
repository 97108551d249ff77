package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage is the lifecycle stage of a match result.
type Stage string

// Match lifecycle stages. Transitions move forward only:
// recommended -> contacted -> meeting -> success. Dropped is a terminal
// state reachable from any non-terminal stage.
const (
	StageRecommended Stage = "recommended"
	StageContacted   Stage = "contacted"
	StageMeeting     Stage = "meeting"
	StageSuccess     Stage = "success"
	StageDropped     Stage = "dropped"
)

var stageSuccessors = map[Stage]Stage{
	StageRecommended: StageContacted,
	StageContacted:   StageMeeting,
	StageMeeting:     StageSuccess,
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageRecommended, StageContacted, StageMeeting, StageSuccess, StageDropped:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal stage.
func (s Stage) Terminal() bool {
	return s == StageSuccess || s == StageDropped
}

// CanTransitionTo reports whether the transition s -> next is legal.
func (s Stage) CanTransitionTo(next Stage) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == StageDropped {
		return true
	}
	return stageSuccessors[s] == next
}

// TransitionError reports an illegal stage transition. Invalid transitions
// are rejected, never silently coerced.
type TransitionError struct {
	From Stage
	To   Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid stage transition: %s -> %s", e.From, e.To)
}

// ScoreBreakdown decomposes a total score into its components.
type ScoreBreakdown struct {
	Hard     float64 `json:"hard"`
	Semantic float64 `json:"semantic"`
	Behavior float64 `json:"behavior"`
}

// MatchResult is a scored (user, candidate) pair. At most one active result
// exists per ordered pair per algorithm version. Results are owned by the
// matching subsystem: appended and transitioned, never edited by callers.
type MatchResult struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	CandidateID uuid.UUID      `json:"candidate_id"`
	TotalScore  float64        `json:"total_score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	Reasons     []string       `json:"reasons"`
	RiskHints   []string       `json:"risk_hints,omitempty"`
	// Disqualified marks pairs that violated a deal-breaker; their total
	// score is forced below the minimum threshold.
	Disqualified     bool      `json:"disqualified"`
	Stage            Stage     `json:"stage"`
	AlgorithmVersion string    `json:"algorithm_version"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
