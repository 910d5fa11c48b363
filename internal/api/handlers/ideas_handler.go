// Package handlers contains the HTTP handlers of the Ideas Hub API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ideahub/hub/internal/api/response"
	"github.com/ideahub/hub/internal/models"
	"github.com/ideahub/hub/internal/service"
)

// IdeasService defines the idea lifecycle operations the handler needs.
type IdeasService interface {
	CreateIdea(ctx context.Context, idea *models.Idea) error
	GetIdea(ctx context.Context, id uuid.UUID) (*models.Idea, error)
	ListIdeas(ctx context.Context, status models.IdeaStatus, limit, offset int) ([]models.Idea, error)
	UpdateIdea(ctx context.Context, idea *models.Idea) error
	UpdateIdeaStatus(ctx context.Context, id uuid.UUID, status models.IdeaStatus, reason string) (*models.Idea, error)
	DeleteIdea(ctx context.Context, id uuid.UUID) error
	AnalyzeIdea(ctx context.Context, id uuid.UUID, estimate *models.KPIEstimate, summary string, tags []string) (*models.Idea, error)
	RecomputeScores(ctx context.Context, id uuid.UUID) (*models.Idea, error)
}

// IdeasHandler handles HTTP requests for ideas.
type IdeasHandler struct {
	service IdeasService
}

// NewIdeasHandler creates a new ideas handler.
func NewIdeasHandler(service IdeasService) *IdeasHandler {
	return &IdeasHandler{service: service}
}

// CreateIdeaRequest is the body for POST /v1/ideas.
type CreateIdeaRequest struct {
	SubmitterID        string   `json:"submitterId"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	ProblemDescription string   `json:"problemDescription"`
	ExpectedBenefit    string   `json:"expectedBenefit"`
	Department         string   `json:"department"`
	Tags               []string `json:"tags"`
}

// UpdateIdeaRequest is the body for PATCH /v1/ideas/{id}. Nil fields are left
// unchanged. Status changes go through PATCH /v1/ideas/{id}/status instead.
type UpdateIdeaRequest struct {
	Title              *string   `json:"title"`
	Description        *string   `json:"description"`
	ProblemDescription *string   `json:"problemDescription"`
	ExpectedBenefit    *string   `json:"expectedBenefit"`
	Department         *string   `json:"department"`
	Tags               *[]string `json:"tags"`
}

// UpdateStatusRequest is the body for PATCH /v1/ideas/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// AnalyzeIdeaRequest is the body for POST /v1/ideas/{id}/analyze.
type AnalyzeIdeaRequest struct {
	KPIEstimates *models.KPIEstimate `json:"kpiEstimates"`
	Summary      string              `json:"summary"`
	Tags         []string            `json:"tags"`
}

// ListIdeasResponse is the response for GET /v1/ideas.
type ListIdeasResponse struct {
	Ideas []models.Idea `json:"ideas"`
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Create handles POST /v1/ideas.
func (h *IdeasHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateIdeaRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	if req.Title == "" {
		response.RespondUnprocessableEntity(w, "title is required")

		return
	}

	if req.Description == "" {
		response.RespondUnprocessableEntity(w, "description is required")

		return
	}

	idea := &models.Idea{
		SubmitterID:        req.SubmitterID,
		Title:              req.Title,
		Description:        req.Description,
		ProblemDescription: req.ProblemDescription,
		ExpectedBenefit:    req.ExpectedBenefit,
		Department:         req.Department,
		Tags:               req.Tags,
	}

	if err := h.service.CreateIdea(r.Context(), idea); err != nil {
		response.RespondInternalServerError(w, "Failed to create idea")

		return
	}

	response.RespondJSON(w, http.StatusCreated, idea)
}

// Get handles GET /v1/ideas/{id}.
func (h *IdeasHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdeaID(w, r)
	if !ok {
		return
	}

	idea, err := h.service.GetIdea(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrIdeaNotFound) {
			response.RespondNotFound(w, "Idea not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to get idea")

		return
	}

	response.RespondJSON(w, http.StatusOK, idea)
}

// List handles GET /v1/ideas.
func (h *IdeasHandler) List(w http.ResponseWriter, r *http.Request) {
	statusStr := r.URL.Query().Get("status")

	var status models.IdeaStatus

	if statusStr != "" {
		parsed, ok := models.ParseIdeaStatus(statusStr)
		if !ok {
			response.RespondBadRequest(w, "Invalid status filter")

			return
		}

		status = parsed
	}

	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultListLimit)
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := parseNonNegativeInt(r.URL.Query().Get("offset"), 0)

	ideas, err := h.service.ListIdeas(r.Context(), status, limit, offset)
	if err != nil {
		response.RespondInternalServerError(w, "Failed to list ideas")

		return
	}

	if ideas == nil {
		ideas = []models.Idea{}
	}

	response.RespondJSON(w, http.StatusOK, ListIdeasResponse{Ideas: ideas})
}

// Update handles PATCH /v1/ideas/{id}.
func (h *IdeasHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdeaID(w, r)
	if !ok {
		return
	}

	var req UpdateIdeaRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	idea, err := h.service.GetIdea(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrIdeaNotFound) {
			response.RespondNotFound(w, "Idea not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to get idea")

		return
	}

	applyIdeaPatch(idea, &req)

	if idea.Title == "" {
		response.RespondUnprocessableEntity(w, "title must not be empty")

		return
	}

	if err := h.service.UpdateIdea(r.Context(), idea); err != nil {
		switch {
		case errors.Is(err, service.ErrIdeaNotFound):
			response.RespondNotFound(w, "Idea not found")
		case errors.Is(err, service.ErrNotEditable):
			response.RespondConflict(w, "Idea can no longer be edited")
		default:
			response.RespondInternalServerError(w, "Failed to update idea")
		}

		return
	}

	response.RespondJSON(w, http.StatusOK, idea)
}

// UpdateStatus handles PATCH /v1/ideas/{id}/status.
func (h *IdeasHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdeaID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	status, ok := models.ParseIdeaStatus(req.Status)
	if !ok {
		response.RespondUnprocessableEntity(w, "Invalid status")

		return
	}

	idea, err := h.service.UpdateIdeaStatus(r.Context(), id, status, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIdeaNotFound):
			response.RespondNotFound(w, "Idea not found")
		case errors.Is(err, service.ErrInvalidTransition):
			response.RespondConflict(w, "Status transition not allowed")
		default:
			response.RespondInternalServerError(w, "Failed to update idea status")
		}

		return
	}

	response.RespondJSON(w, http.StatusOK, idea)
}

// Delete handles DELETE /v1/ideas/{id}.
func (h *IdeasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdeaID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteIdea(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrIdeaNotFound) {
			response.RespondNotFound(w, "Idea not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to delete idea")

		return
	}

	response.RespondNoContent(w)
}

// Analyze handles POST /v1/ideas/{id}/analyze.
func (h *IdeasHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdeaID(w, r)
	if !ok {
		return
	}

	var req AnalyzeIdeaRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	if req.KPIEstimates == nil {
		response.RespondUnprocessableEntity(w, "kpiEstimates is required")

		return
	}

	idea, err := h.service.AnalyzeIdea(r.Context(), id, req.KPIEstimates, req.Summary, req.Tags)
	if err != nil {
		if errors.Is(err, service.ErrIdeaNotFound) {
			response.RespondNotFound(w, "Idea not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to analyze idea")

		return
	}

	response.RespondJSON(w, http.StatusOK, idea)
}

// Rescore handles POST /v1/ideas/{id}/rescore.
func (h *IdeasHandler) Rescore(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdeaID(w, r)
	if !ok {
		return
	}

	idea, err := h.service.RecomputeScores(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrIdeaNotFound) {
			response.RespondNotFound(w, "Idea not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to rescore idea")

		return
	}

	response.RespondJSON(w, http.StatusOK, idea)
}

func applyIdeaPatch(idea *models.Idea, req *UpdateIdeaRequest) {
	if req.Title != nil {
		idea.Title = *req.Title
	}

	if req.Description != nil {
		idea.Description = *req.Description
	}

	if req.ProblemDescription != nil {
		idea.ProblemDescription = *req.ProblemDescription
	}

	if req.ExpectedBenefit != nil {
		idea.ExpectedBenefit = *req.ExpectedBenefit
	}

	if req.Department != nil {
		idea.Department = *req.Department
	}

	if req.Tags != nil {
		idea.Tags = *req.Tags
	}
}

func parseIdeaID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		response.RespondBadRequest(w, "Idea ID is required")

		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		response.RespondBadRequest(w, "Invalid idea ID")

		return uuid.Nil, false
	}

	return id, true
}

func parsePositiveInt(s string, def int) int {
	if s == "" {
		return def
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}

	return n
}

func parseNonNegativeInt(s string, def int) int {
	if s == "" {
		return def
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}

	return n
}
