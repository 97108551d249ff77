package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/types"
)

// QualityRequest represents the request body for PUT /interactions/{id}/quality.
type QualityRequest struct {
	Rating int `json:"rating"`
}

// handleRecordInteraction appends an interaction event. The actor's
// last-active timestamp is refreshed as a side effect, since interacting is
// activity.
func (s *Server) handleRecordInteraction(w http.ResponseWriter, r *http.Request) {
	var event types.InteractionEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := event.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	if event.UserID == event.TargetUserID {
		s.errorResponse(w, http.StatusBadRequest, "Cannot record an interaction with yourself")
		return
	}

	id, err := s.store.AppendInteraction(r.Context(), &event)
	if err != nil {
		log.Printf("Error recording interaction: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to record interaction")
		return
	}

	if err := s.store.TouchLastActive(r.Context(), event.UserID); err != nil {
		log.Printf("Error touching last active for user %s: %v", event.UserID, err)
	}

	s.cache.InvalidateTag("metrics")
	s.cache.InvalidateTag("user:" + event.UserID.String())
	s.cache.InvalidateTag("user:" + event.TargetUserID.String())

	s.jsonResponse(w, http.StatusCreated, map[string]any{"id": id})
}

// handleQualityBackfill sets the post-interaction quality rating on an
// already recorded event.
func (s *Server) handleQualityBackfill(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid interaction ID")
		return
	}

	var req QualityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		s.errorResponse(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	if err := s.store.BackfillQualityRating(r.Context(), eventID, req.Rating); err != nil {
		log.Printf("Error backfilling quality rating: %v", err)
		s.errorResponse(w, http.StatusNotFound, "Interaction not found or already rated")
		return
	}

	s.cache.InvalidateTag("metrics")
	s.jsonResponse(w, http.StatusOK, map[string]any{"id": eventID, "rating": req.Rating})
}
