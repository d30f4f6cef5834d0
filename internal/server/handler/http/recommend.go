package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/GreenCart/internal/models"
	"github.com/atinyakov/GreenCart/internal/recommend"
)

// Recommender produces strain recommendations from free-text preferences.
type Recommender interface {
	Recommend(ctx context.Context, preferences string) ([]models.Recommendation, error)
}

// RecommendHandler proxies recommendation requests to the completion endpoint.
type RecommendHandler struct {
	Recommender Recommender
}

// RecommendRequest is the JSON body of POST /api/recommendations.
type RecommendRequest struct {
	Preferences string `json:"preferences"`
}

// Recommend handles POST /api/recommendations.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	recs, err := h.Recommender.Recommend(r.Context(), req.Preferences)
	switch {
	case errors.Is(err, recommend.ErrEmptyPreferences):
		http.Error(w, "preferences required", http.StatusBadRequest)
	case err != nil:
		http.Error(w, "recommendations unavailable", http.StatusBadGateway)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
	}
}
