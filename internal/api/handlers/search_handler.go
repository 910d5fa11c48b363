package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ideahub/hub/internal/api/response"
	"github.com/ideahub/hub/internal/models"
	"github.com/ideahub/hub/internal/service"
)

// SimilaritySearchService defines the similarity lookups the handler needs.
type SimilaritySearchService interface {
	FindSimilarIdeas(ctx context.Context, query string, threshold float64, limit int) ([]models.SimilarIdea, error)
	SimilarToIdea(ctx context.Context, id uuid.UUID, threshold float64, limit int) ([]models.SimilarIdea, error)
}

// SearchHandler handles HTTP requests for similarity search.
type SearchHandler struct {
	service SimilaritySearchService

	// Deployment default; per-request minScore overrides it.
	defaultThreshold float64
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service SimilaritySearchService, defaultThreshold float64) *SearchHandler {
	return &SearchHandler{service: service, defaultThreshold: defaultThreshold}
}

// SimilarSearchRequest is the body for POST /v1/ideas/search/similar.
type SimilarSearchRequest struct {
	Query    string   `json:"query"`
	TopK     int      `json:"topK"`
	MinScore *float64 `json:"minScore"`
}

// SimilarIdeasResponse is the response for similarity search endpoints.
type SimilarIdeasResponse struct {
	Results []models.SimilarIdea `json:"results"`
}

const (
	defaultTopK = 10
	maxTopK     = 100
)

// SearchSimilar handles POST /v1/ideas/search/similar.
func (h *SearchHandler) SearchSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarSearchRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	if topK > maxTopK {
		topK = maxTopK
	}

	threshold := h.defaultThreshold
	if req.MinScore != nil {
		threshold = clampScore(*req.MinScore)
	}

	results, err := h.service.FindSimilarIdeas(r.Context(), req.Query, threshold, topK)
	if err != nil {
		response.RespondInternalServerError(w, "Search failed")

		return
	}

	if results == nil {
		results = []models.SimilarIdea{}
	}

	response.RespondJSON(w, http.StatusOK, SimilarIdeasResponse{Results: results})
}

// SimilarToIdea handles GET /v1/ideas/{id}/similar.
func (h *SearchHandler) SimilarToIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdeaID(w, r)
	if !ok {
		return
	}

	limit := defaultTopK

	if topKStr := r.URL.Query().Get("topK"); topKStr != "" {
		if l, err := strconv.Atoi(topKStr); err == nil && l > 0 {
			limit = min(l, maxTopK)
		}
	}

	threshold := h.defaultThreshold

	if minScoreStr := r.URL.Query().Get("minScore"); minScoreStr != "" {
		if v, err := strconv.ParseFloat(minScoreStr, 64); err == nil {
			threshold = clampScore(v)
		}
	}

	results, err := h.service.SimilarToIdea(r.Context(), id, threshold, limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIdeaNotFound):
			response.RespondNotFound(w, "Idea not found")
		case errors.Is(err, service.ErrNoEmbedding):
			response.RespondNotFound(w, "Idea has no embedding yet")
		default:
			response.RespondInternalServerError(w, "Similar ideas lookup failed")
		}

		return
	}

	if results == nil {
		results = []models.SimilarIdea{}
	}

	response.RespondJSON(w, http.StatusOK, SimilarIdeasResponse{Results: results})
}

// clampScore clamps a similarity score to [0,1].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}

	return math.Min(v, 1)
}
