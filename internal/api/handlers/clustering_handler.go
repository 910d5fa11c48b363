package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ideahub/hub/internal/api/response"
	"github.com/ideahub/hub/internal/clustering"
	"github.com/ideahub/hub/internal/service"
)

// ClusteringRunner runs a batch clustering pass over all embedded ideas.
type ClusteringRunner interface {
	RunClustering(ctx context.Context, kOverride int) (*service.ClusteringRunResult, error)
}

// ClusteringHandler handles HTTP requests for batch clustering.
type ClusteringHandler struct {
	service ClusteringRunner
}

// NewClusteringHandler creates a new clustering handler.
func NewClusteringHandler(service ClusteringRunner) *ClusteringHandler {
	return &ClusteringHandler{service: service}
}

// RunClusteringRequest is the body for POST /v1/ideas/clusters/run. An absent or
// zero k selects the cluster count automatically.
type RunClusteringRequest struct {
	K int `json:"k"`
}

// Run handles POST /v1/ideas/clusters/run.
func (h *ClusteringHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunClusteringRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	result, err := h.service.RunClustering(r.Context(), req.K)
	if err != nil {
		if errors.Is(err, clustering.ErrTooManyClusters) {
			response.RespondUnprocessableEntity(w, "k exceeds the number of embedded ideas")

			return
		}

		response.RespondInternalServerError(w, "Clustering run failed")

		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
