package server

import (
	"log"
	"net/http"

	"github.com/latentspace/match-engine/internal/types"
)

// handleSystemMetrics reports matching outcomes for a time range. Metrics
// are cached and invalidated whenever new interactions or stage transitions
// arrive.
func (s *Server) handleSystemMetrics(w http.ResponseWriter, r *http.Request) {
	window := types.TimeRange(r.URL.Query().Get("range"))
	if window == "" {
		window = types.RangeWeek
	}
	if !window.Valid() {
		s.errorResponse(w, http.StatusBadRequest, "Range must be week, month or quarter")
		return
	}

	cacheKey := "metrics:" + string(window)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.jsonResponse(w, http.StatusOK, cached)
		return
	}

	metrics, err := s.analytics.SystemMetrics(r.Context(), window)
	if err != nil {
		log.Printf("Error computing system metrics: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}

	s.cache.Set(cacheKey, metrics, "metrics")
	s.jsonResponse(w, http.StatusOK, metrics)
}

// handleUserInsights reports a user's profile completeness, activity and
// recommendations.
func (s *Server) handleUserInsights(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	cacheKey := "insights:" + userID.String()
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.jsonResponse(w, http.StatusOK, cached)
		return
	}

	insights, err := s.analytics.UserInsights(r.Context(), userID)
	if err != nil {
		log.Printf("Error computing user insights: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to compute insights")
		return
	}

	s.cache.Set(cacheKey, insights, "user:"+userID.String())
	s.jsonResponse(w, http.StatusOK, insights)
}
