package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/latentspace/match-engine/internal/types"
)

// handleUpsertProfile creates or replaces a user's profile. When an
// embedding client is configured the profile text is re-embedded on every
// write; embedding failures degrade to a profile without a vector rather
// than failing the write.
func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var profile types.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	profile.UserID = userID

	if err := profile.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if s.embedder != nil {
		vec, err := s.embedder.EmbedProfile(r.Context(), &profile)
		if err != nil {
			log.Printf("Embedding failed for user %s: %v", userID, err)
		} else {
			profile.Embedding = vec
		}
	}

	if err := s.store.UpsertProfile(r.Context(), &profile); err != nil {
		log.Printf("Error upserting profile: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	s.cache.InvalidateTag("user:" + userID.String())
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleGetProfile returns a user's profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	profile, err := s.store.GetProfile(r.Context(), userID)
	if err != nil {
		log.Printf("Error getting profile: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}
	if profile == nil {
		s.errorResponse(w, http.StatusNotFound, "Profile not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUpsertPreferences creates or replaces a user's matching
// preferences.
func (s *Server) handleUpsertPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var pref types.MatchingPreference
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	pref.UserID = userID

	if err := pref.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if err := s.store.UpsertPreference(r.Context(), &pref); err != nil {
		log.Printf("Error upserting preferences: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	s.cache.InvalidateTag("user:" + userID.String())
	s.jsonResponse(w, http.StatusOK, pref)
}

// handleGetPreferences returns a user's matching preferences.
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	pref, err := s.store.GetPreference(r.Context(), userID)
	if err != nil {
		log.Printf("Error getting preferences: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get preferences")
		return
	}
	if pref == nil {
		s.errorResponse(w, http.StatusNotFound, "Preferences not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, pref)
}
