package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, req)
	return w
}

func validProfile(userID uuid.UUID, role types.RoleIntent) types.UserProfile {
	equity := 30.0
	risk := 7
	return types.UserProfile{
		UserID:            userID,
		RoleIntent:        role,
		Seniority:         types.SenioritySenior,
		Timezone:          "Europe/Berlin",
		WeeklyHours:       40,
		RemotePreference:  types.RemoteFirst,
		EquityExpectation: &equity,
		Skills:            []string{"go", "ml"},
		RiskTolerance:     &risk,
		LastActiveAt:      time.Now(),
	}
}

func TestHandleProfile_RoundTrip(t *testing.T) {
	s, _ := newTestServer()
	userID := uuid.New()

	w := doJSON(t, s, http.MethodPut, "/users/"+userID.String()+"/profile", validProfile(userID, types.RoleCTO))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/users/"+userID.String()+"/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got types.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, types.RoleCTO, got.RoleIntent)
}

func TestHandleProfile_ValidationFailure(t *testing.T) {
	s, _ := newTestServer()
	userID := uuid.New()

	profile := validProfile(userID, types.RoleCTO)
	profile.WeeklyHours = 200 // out of range

	w := doJSON(t, s, http.MethodPut, "/users/"+userID.String()+"/profile", profile)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "Validation failed")
}

func TestHandleProfile_InvalidID(t *testing.T) {
	s, _ := newTestServer()
	w := doJSON(t, s, http.MethodGet, "/users/not-a-uuid/profile", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleProfile_NotFound(t *testing.T) {
	s, _ := newTestServer()
	w := doJSON(t, s, http.MethodGet, "/users/"+uuid.NewString()+"/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlePreferences_RoundTrip(t *testing.T) {
	s, _ := newTestServer()
	userID := uuid.New()

	pref := types.MatchingPreference{
		MustHaves:    types.MustHaveSet{MinWeeklyHours: 20},
		DealBreakers: types.DealBreakerSet{RejectVisaConstraint: true},
	}
	w := doJSON(t, s, http.MethodPut, "/users/"+userID.String()+"/preferences", pref)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/users/"+userID.String()+"/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got types.MatchingPreference
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 20, got.MustHaves.MinWeeklyHours)
	assert.True(t, got.DealBreakers.RejectVisaConstraint)
}

func TestHandlePreferences_NotFound(t *testing.T) {
	s, _ := newTestServer()
	w := doJSON(t, s, http.MethodGet, "/users/"+uuid.NewString()+"/preferences", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleScoreCandidates(t *testing.T) {
	s, store := newTestServer()
	user := validProfile(uuid.New(), types.RoleCTO)
	candidate := validProfile(uuid.New(), types.RoleCEO)
	candidate.Skills = []string{"go", "ml", "sales"}
	store.profiles[user.UserID] = user
	store.profiles[candidate.UserID] = candidate

	w := doJSON(t, s, http.MethodPost, "/users/"+user.UserID.String()+"/matches", ScoreRequest{})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Matches []types.MatchResult `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, candidate.UserID, resp.Matches[0].CandidateID)
	assert.NotEmpty(t, resp.Matches[0].Reasons)
	assert.Len(t, store.matches, 1)
}

func TestHandleScoreCandidates_MissingProfile(t *testing.T) {
	s, _ := newTestServer()
	w := doJSON(t, s, http.MethodPost, "/users/"+uuid.NewString()+"/matches", ScoreRequest{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleScoreCandidates_UnknownVersion(t *testing.T) {
	s, store := newTestServer()
	user := validProfile(uuid.New(), types.RoleCTO)
	store.profiles[user.UserID] = user

	w := doJSON(t, s, http.MethodPost, "/users/"+user.UserID.String()+"/matches",
		ScoreRequest{WeightVersion: "v99"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleListMatches_CachesUntilInvalidated(t *testing.T) {
	s, store := newTestServer()
	userID := uuid.New()

	w := doJSON(t, s, http.MethodGet, "/users/"+userID.String()+"/matches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, s, http.MethodGet, "/users/"+userID.String()+"/matches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.listMatchCalls, "second read should come from cache")

	// An interaction involving the user invalidates their cached reads
	event := types.InteractionEvent{UserID: userID, TargetUserID: uuid.New(), Action: types.ActionView}
	w = doJSON(t, s, http.MethodPost, "/interactions", event)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/users/"+userID.String()+"/matches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, store.listMatchCalls)
}

func TestHandleTransitionStage(t *testing.T) {
	s, store := newTestServer()
	match := types.MatchResult{
		UserID:           uuid.New(),
		CandidateID:      uuid.New(),
		TotalScore:       0.6,
		AlgorithmVersion: "v1",
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	stored, err := store.UpsertMatchResult(t.Context(), &match)
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPost, "/matches/"+stored.ID.String()+"/stage",
		TransitionRequest{From: types.StageRecommended, To: types.StageContacted})
	require.Equal(t, http.StatusOK, w.Code)

	var got types.MatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, types.StageContacted, got.Stage)

	// Replaying the same transition conflicts
	w = doJSON(t, s, http.MethodPost, "/matches/"+stored.ID.String()+"/stage",
		TransitionRequest{From: types.StageRecommended, To: types.StageContacted})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Stage skips are rejected before touching the store
	w = doJSON(t, s, http.MethodPost, "/matches/"+stored.ID.String()+"/stage",
		TransitionRequest{From: types.StageContacted, To: types.StageSuccess})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/matches/"+uuid.NewString()+"/stage",
		TransitionRequest{From: types.StageRecommended, To: types.StageContacted})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleRecordInteraction(t *testing.T) {
	s, store := newTestServer()

	event := types.InteractionEvent{
		UserID:       uuid.New(),
		TargetUserID: uuid.New(),
		Action:       types.ActionLike,
	}
	w := doJSON(t, s, http.MethodPost, "/interactions", event)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.interactions, 1)

	// Self-interactions are rejected
	self := uuid.New()
	w = doJSON(t, s, http.MethodPost, "/interactions",
		types.InteractionEvent{UserID: self, TargetUserID: self, Action: types.ActionView})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown actions fail validation
	w = doJSON(t, s, http.MethodPost, "/interactions",
		types.InteractionEvent{UserID: uuid.New(), TargetUserID: uuid.New(), Action: "poke"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleQualityBackfill(t *testing.T) {
	s, store := newTestServer()
	id, err := store.AppendInteraction(t.Context(), &types.InteractionEvent{
		UserID: uuid.New(), TargetUserID: uuid.New(), Action: types.ActionMeet,
	})
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPut, "/interactions/"+id.String()+"/quality", QualityRequest{Rating: 5})
	require.Equal(t, http.StatusOK, w.Code)

	// A rating can only be written once
	w = doJSON(t, s, http.MethodPut, "/interactions/"+id.String()+"/quality", QualityRequest{Rating: 2})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodPut, "/interactions/"+id.String()+"/quality", QualityRequest{Rating: 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSystemMetrics(t *testing.T) {
	s, store := newTestServer()
	store.matchTotal = 10
	store.matchSuccessful = 4
	store.interactionTotal = 50
	store.interactionStaged = 10

	w := doJSON(t, s, http.MethodGet, "/metrics/matching?range=month", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var m types.MatchingMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, types.RangeMonth, m.Range)
	assert.Equal(t, 10, m.TotalMatches)
	assert.InDelta(t, 0.4, m.SuccessRate, 1e-9)
	assert.InDelta(t, 0.2, m.EngagementRate, 1e-9)

	w = doJSON(t, s, http.MethodGet, "/metrics/matching?range=decade", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing range defaults to a week
	w = doJSON(t, s, http.MethodGet, "/metrics/matching", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, types.RangeWeek, m.Range)
}

func TestHandleUserInsights(t *testing.T) {
	s, store := newTestServer()
	userID := uuid.New()
	store.profiles[userID] = validProfile(userID, types.RoleCTO)

	w := doJSON(t, s, http.MethodGet, "/users/"+userID.String()+"/insights", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got types.UserMatchingInsights
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, userID, got.UserID)
	assert.NotEmpty(t, got.Recommendations)
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer()
	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
