package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// InteractionAction is an action one user takes toward a target user.
type InteractionAction string

// Interaction action values
const (
	ActionView    InteractionAction = "view"
	ActionLike    InteractionAction = "like"
	ActionSkip    InteractionAction = "skip"
	ActionConnect InteractionAction = "connect"
	ActionMeet    InteractionAction = "meet"
)

// Actions lists every interaction action in a stable order.
var Actions = []InteractionAction{ActionView, ActionLike, ActionSkip, ActionConnect, ActionMeet}

// InteractionEvent records an action from one user toward a target user.
// Events are append-only; the only permitted mutation after creation is a
// later quality-rating backfill.
type InteractionEvent struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"user_id" validate:"required"`
	TargetUserID uuid.UUID         `json:"target_user_id" validate:"required"`
	Action       InteractionAction `json:"action" validate:"required,oneof=view like skip connect meet"`
	// LatencyMS is how long the actor took before acting, when measured.
	LatencyMS *int `json:"latency_ms,omitempty" validate:"omitempty,min=0"`
	// QualityRating is a post-interaction rating (1-5), backfilled later.
	QualityRating *int      `json:"quality_rating,omitempty" validate:"omitempty,min=1,max=5"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate validates the InteractionEvent using the validator.
func (e *InteractionEvent) Validate() error {
	validate := validator.New()
	return validate.Struct(e)
}

// BehaviorAggregate summarizes historical interactions toward one user.
// It is the scorer's input for the behavior score component.
type BehaviorAggregate struct {
	TargetUserID uuid.UUID `json:"target_user_id"`
	Views        int       `json:"views"`
	Likes        int       `json:"likes"`
	Skips        int       `json:"skips"`
	Connects     int       `json:"connects"`
	Meets        int       `json:"meets"`
	// AvgQuality is the mean post-interaction rating, nil when no event has
	// been rated yet.
	AvgQuality *float64 `json:"avg_quality,omitempty"`
}

// Total is the total number of recorded interactions toward the target.
func (a *BehaviorAggregate) Total() int {
	return a.Views + a.Likes + a.Skips + a.Connects + a.Meets
}
