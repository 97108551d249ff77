package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/db"
	"github.com/latentspace/match-engine/internal/ranking"
	"github.com/latentspace/match-engine/internal/types"
	"github.com/latentspace/match-engine/internal/weights"
)

// ScoreRequest represents the request body for POST /users/{id}/matches.
// An empty candidate list scores against the most recently active profiles.
type ScoreRequest struct {
	CandidateIDs  []uuid.UUID `json:"candidate_ids,omitempty"`
	WeightVersion string      `json:"weight_version,omitempty"`
	PoolLimit     int         `json:"pool_limit,omitempty"`
}

// TransitionRequest represents the request body for POST /matches/{id}/stage.
type TransitionRequest struct {
	From types.Stage `json:"from"`
	To   types.Stage `json:"to"`
}

// handleScoreCandidates scores a candidate pool against the user and
// returns the qualified matches in ranked order.
func (s *Server) handleScoreCandidates(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.ranker.ScoreUser(r.Context(), userID, req.CandidateIDs, req.WeightVersion, req.PoolLimit)
	if err != nil {
		var uve *weights.UnknownVersionError
		switch {
		case errors.Is(err, ranking.ErrProfileNotFound):
			s.errorResponse(w, http.StatusNotFound, "Profile not found")
		case errors.As(err, &uve):
			// A dangling version reference is a configuration fault, not a
			// caller mistake.
			log.Printf("Scoring aborted: %v", err)
			s.errorResponse(w, http.StatusInternalServerError, "Scoring configuration error")
		default:
			log.Printf("Error scoring candidates: %v", err)
			s.errorResponse(w, http.StatusInternalServerError, "Failed to score candidates")
		}
		return
	}

	s.cache.InvalidateTag("user:" + userID.String())
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"matches": results,
	})
}

// handleListMatches returns the user's stored, still-active matches in
// ranked order. Responses are cached until the user's matches change.
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	cacheKey := "matches:" + userID.String()
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.jsonResponse(w, http.StatusOK, cached)
		return
	}

	results, err := s.store.ListMatchResults(r.Context(), userID, 0)
	if err != nil {
		log.Printf("Error listing matches: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list matches")
		return
	}
	if results == nil {
		results = []*types.MatchResult{}
	}

	response := map[string]any{
		"user_id": userID,
		"matches": results,
	}
	s.cache.Set(cacheKey, response, "user:"+userID.String())
	s.jsonResponse(w, http.StatusOK, response)
}

// handleTransitionStage advances a match through its lifecycle. A lost race
// against a concurrent transition surfaces as a conflict, never as a silent
// overwrite.
func (s *Server) handleTransitionStage(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.store.TransitionStage(r.Context(), matchID, req.From, req.To)
	if err != nil {
		var te *types.TransitionError
		switch {
		case errors.As(err, &te):
			s.errorResponse(w, http.StatusBadRequest, te.Error())
		case errors.Is(err, db.ErrMatchNotFound):
			s.errorResponse(w, http.StatusNotFound, "Match not found")
		case errors.Is(err, db.ErrStageConflict):
			s.errorResponse(w, http.StatusConflict, "Match stage changed concurrently")
		default:
			log.Printf("Error transitioning stage: %v", err)
			s.errorResponse(w, http.StatusInternalServerError, "Failed to transition stage")
		}
		return
	}

	s.cache.InvalidateTag("user:" + result.UserID.String())
	s.cache.InvalidateTag("metrics")
	s.jsonResponse(w, http.StatusOK, result)
}
