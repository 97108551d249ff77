package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/db"
	"github.com/latentspace/match-engine/internal/types"
	"github.com/latentspace/match-engine/internal/weights"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu           sync.Mutex
	profiles     map[uuid.UUID]types.UserProfile
	preferences  map[uuid.UUID]types.MatchingPreference
	interactions map[uuid.UUID]types.InteractionEvent
	matches      map[uuid.UUID]types.MatchResult

	matchTotal        int
	matchSuccessful   int
	interactionTotal  int
	interactionStaged int

	listMatchCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:     make(map[uuid.UUID]types.UserProfile),
		preferences:  make(map[uuid.UUID]types.MatchingPreference),
		interactions: make(map[uuid.UUID]types.InteractionEvent),
		matches:      make(map[uuid.UUID]types.MatchResult),
	}
}

func (s *fakeStore) UpsertProfile(_ context.Context, p *types.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = *p
	return nil
}

func (s *fakeStore) GetProfile(_ context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *fakeStore) GetProfiles(_ context.Context, userIDs []uuid.UUID) ([]types.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.UserProfile
	for _, id := range userIDs {
		if p, ok := s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) ListCandidateProfiles(_ context.Context, excludeUserID uuid.UUID, _ int) ([]types.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.UserProfile
	for id, p := range s.profiles {
		if id != excludeUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateProfileEmbedding(_ context.Context, userID uuid.UUID, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return fmt.Errorf("profile %s not found", userID)
	}
	p.Embedding = embedding
	s.profiles[userID] = p
	return nil
}

func (s *fakeStore) TouchLastActive(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		p.LastActiveAt = time.Now()
		s.profiles[userID] = p
	}
	return nil
}

func (s *fakeStore) UpsertPreference(_ context.Context, p *types.MatchingPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[p.UserID] = *p
	return nil
}

func (s *fakeStore) GetPreference(_ context.Context, userID uuid.UUID) (*types.MatchingPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.preferences[userID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *fakeStore) AppendInteraction(_ context.Context, e *types.InteractionEvent) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	stored := *e
	stored.ID = id
	stored.CreatedAt = time.Now()
	s.interactions[id] = stored
	return id, nil
}

func (s *fakeStore) BackfillQualityRating(_ context.Context, eventID uuid.UUID, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.interactions[eventID]
	if !ok || e.QualityRating != nil {
		return fmt.Errorf("interaction %s not found or already rated", eventID)
	}
	e.QualityRating = &rating
	s.interactions[eventID] = e
	return nil
}

func (s *fakeStore) BehaviorAggregate(_ context.Context, targetUserID uuid.UUID) (*types.BehaviorAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg := types.BehaviorAggregate{TargetUserID: targetUserID}
	for _, e := range s.interactions {
		if e.TargetUserID != targetUserID {
			continue
		}
		switch e.Action {
		case types.ActionView:
			agg.Views++
		case types.ActionLike:
			agg.Likes++
		case types.ActionSkip:
			agg.Skips++
		case types.ActionConnect:
			agg.Connects++
		case types.ActionMeet:
			agg.Meets++
		}
	}
	return &agg, nil
}

func (s *fakeStore) ActivityCounts(_ context.Context, userID uuid.UUID) (map[types.InteractionAction]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[types.InteractionAction]int)
	for _, e := range s.interactions {
		if e.UserID == userID {
			counts[e.Action]++
		}
	}
	return counts, nil
}

func (s *fakeStore) InteractionStats(context.Context, time.Time) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interactionTotal, s.interactionStaged, nil
}

func (s *fakeStore) UpsertMatchResult(_ context.Context, r *types.MatchResult) (*types.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.matches {
		if m.UserID == r.UserID && m.CandidateID == r.CandidateID && m.AlgorithmVersion == r.AlgorithmVersion {
			stage := m.Stage
			updated := *r
			updated.ID = id
			updated.Stage = stage
			s.matches[id] = updated
			return &updated, nil
		}
	}
	stored := *r
	stored.ID = uuid.New()
	stored.Stage = types.StageRecommended
	s.matches[stored.ID] = stored
	return &stored, nil
}

func (s *fakeStore) GetMatchResult(_ context.Context, id uuid.UUID) (*types.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.matches[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (s *fakeStore) ListMatchResults(_ context.Context, userID uuid.UUID, _ int) ([]*types.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listMatchCalls++
	var out []*types.MatchResult
	for _, m := range s.matches {
		if m.UserID == userID && !m.Disqualified {
			copied := m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeStore) TransitionStage(_ context.Context, id uuid.UUID, from, to types.Stage) (*types.MatchResult, error) {
	if !from.CanTransitionTo(to) {
		return nil, &types.TransitionError{From: from, To: to}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, db.ErrMatchNotFound
	}
	if m.Stage != from {
		return nil, db.ErrStageConflict
	}
	m.Stage = to
	s.matches[id] = m
	return &m, nil
}

func (s *fakeStore) MatchStats(context.Context, time.Time) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchTotal, s.matchSuccessful, nil
}

// newTestServer builds a server over a fresh in-memory store.
func newTestServer() (*Server, *fakeStore) {
	store := newFakeStore()
	return newServer(store, weights.NewRegistry(), nil, time.Minute), store
}
