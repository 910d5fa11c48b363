package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideahub/hub/internal/models"
	"github.com/ideahub/hub/internal/service"
)

type mockIdeasService struct {
	idea *models.Idea
	err  error

	gotEstimate *models.KPIEstimate
	gotSummary  string
	gotStatus   models.IdeaStatus
	gotReason   string
}

func (m *mockIdeasService) CreateIdea(_ context.Context, idea *models.Idea) error {
	if m.err != nil {
		return m.err
	}

	idea.ID = uuid.New()
	idea.Status = models.IdeaStatusDraft

	return nil
}

func (m *mockIdeasService) GetIdea(_ context.Context, _ uuid.UUID) (*models.Idea, error) {
	if m.err != nil {
		return nil, m.err
	}

	return m.idea, nil
}

func (m *mockIdeasService) ListIdeas(_ context.Context, _ models.IdeaStatus, _, _ int) ([]models.Idea, error) {
	return nil, m.err
}

func (m *mockIdeasService) UpdateIdea(_ context.Context, _ *models.Idea) error {
	return m.err
}

func (m *mockIdeasService) UpdateIdeaStatus(
	_ context.Context, _ uuid.UUID, status models.IdeaStatus, reason string,
) (*models.Idea, error) {
	m.gotStatus = status
	m.gotReason = reason

	if m.err != nil {
		return nil, m.err
	}

	idea := *m.idea
	idea.Status = status

	return &idea, nil
}

func (m *mockIdeasService) DeleteIdea(_ context.Context, _ uuid.UUID) error {
	return m.err
}

func (m *mockIdeasService) AnalyzeIdea(
	_ context.Context, _ uuid.UUID, estimate *models.KPIEstimate, summary string, _ []string,
) (*models.Idea, error) {
	m.gotEstimate = estimate
	m.gotSummary = summary

	if m.err != nil {
		return nil, m.err
	}

	return m.idea, nil
}

func (m *mockIdeasService) RecomputeScores(_ context.Context, _ uuid.UUID) (*models.Idea, error) {
	if m.err != nil {
		return nil, m.err
	}

	return m.idea, nil
}

func TestIdeasCreate(t *testing.T) {
	t.Run("creates an idea", func(t *testing.T) {
		h := NewIdeasHandler(&mockIdeasService{})

		body, _ := json.Marshal(CreateIdeaRequest{
			Title:       "Shared printer pool",
			Description: "Consolidate printers per floor",
			Department:  "Facilities",
		})
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/ideas", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var idea models.Idea
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idea))
		assert.NotEqual(t, uuid.Nil, idea.ID)
		assert.Equal(t, "Shared printer pool", idea.Title)
	})

	t.Run("missing title is unprocessable", func(t *testing.T) {
		h := NewIdeasHandler(&mockIdeasService{})

		body, _ := json.Marshal(CreateIdeaRequest{Description: "no title"})
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/ideas", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestIdeasAnalyze(t *testing.T) {
	id := uuid.New()

	t.Run("passes estimates to the service", func(t *testing.T) {
		analyzed := &models.Idea{ID: id, ImpactScore: 40, FeasibilityScore: 100}
		svc := &mockIdeasService{idea: analyzed}
		h := NewIdeasHandler(svc)

		ts := 200.0
		body, _ := json.Marshal(AnalyzeIdeaRequest{
			KPIEstimates: &models.KPIEstimate{TimeSavingsHours: &ts},
			Summary:      "Saves time",
		})
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/ideas/"+id.String()+"/analyze", bytes.NewReader(body))
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.Analyze(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, svc.gotEstimate)
		assert.InDelta(t, 200.0, *svc.gotEstimate.TimeSavingsHours, 1e-9)
		assert.Equal(t, "Saves time", svc.gotSummary)
	})

	t.Run("missing estimates is unprocessable", func(t *testing.T) {
		h := NewIdeasHandler(&mockIdeasService{})

		body, _ := json.Marshal(AnalyzeIdeaRequest{Summary: "no estimates"})
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/ideas/"+id.String()+"/analyze", bytes.NewReader(body))
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.Analyze(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown idea is 404", func(t *testing.T) {
		h := NewIdeasHandler(&mockIdeasService{err: service.ErrIdeaNotFound})

		ts := 1.0
		body, _ := json.Marshal(AnalyzeIdeaRequest{KPIEstimates: &models.KPIEstimate{TimeSavingsHours: &ts}})
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/ideas/"+id.String()+"/analyze", bytes.NewReader(body))
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.Analyze(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestIdeasUpdate(t *testing.T) {
	id := uuid.New()
	title := "New title"

	t.Run("applies the patch", func(t *testing.T) {
		svc := &mockIdeasService{
			idea: &models.Idea{ID: id, Title: "Old", Status: models.IdeaStatusDraft},
		}
		h := NewIdeasHandler(svc)

		body, _ := json.Marshal(UpdateIdeaRequest{Title: &title})
		req := httptest.NewRequest(http.MethodPatch, "http://test/v1/ideas/"+id.String(), bytes.NewReader(body))
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.Update(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var idea models.Idea
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idea))
		assert.Equal(t, title, idea.Title)
	})

	t.Run("non-editable idea is a conflict", func(t *testing.T) {
		svc := &conflictOnUpdate{mockIdeasService: mockIdeasService{
			idea: &models.Idea{ID: id, Title: "Old", Status: models.IdeaStatusApproved},
		}}
		h := NewIdeasHandler(svc)

		body, _ := json.Marshal(UpdateIdeaRequest{Title: &title})
		req := httptest.NewRequest(http.MethodPatch, "http://test/v1/ideas/"+id.String(), bytes.NewReader(body))
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.Update(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestIdeasUpdateStatus(t *testing.T) {
	id := uuid.New()

	t.Run("applies a valid transition", func(t *testing.T) {
		svc := &mockIdeasService{
			idea: &models.Idea{ID: id, Title: "Old", Status: models.IdeaStatusUnderReview},
		}
		h := NewIdeasHandler(svc)

		body, _ := json.Marshal(UpdateStatusRequest{Status: "approved", Reason: "strong business case"})
		req := httptest.NewRequest(http.MethodPatch, "http://test/v1/ideas/"+id.String()+"/status", bytes.NewReader(body))
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.UpdateStatus(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.IdeaStatusApproved, svc.gotStatus)
		assert.Equal(t, "strong business case", svc.gotReason)

		var idea models.Idea
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idea))
		assert.Equal(t, models.IdeaStatusApproved, idea.Status)
	})

	t.Run("unknown status is unprocessable", func(t *testing.T) {
		h := NewIdeasHandler(&mockIdeasService{})

		body, _ := json.Marshal(UpdateStatusRequest{Status: "archived"})
		req := httptest.NewRequest(http.MethodPatch, "http://test/v1/ideas/"+id.String()+"/status", bytes.NewReader(body))
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("disallowed transition is a conflict", func(t *testing.T) {
		h := NewIdeasHandler(&mockIdeasService{err: service.ErrInvalidTransition})

		body, _ := json.Marshal(UpdateStatusRequest{Status: "implemented"})
		req := httptest.NewRequest(http.MethodPatch, "http://test/v1/ideas/"+id.String()+"/status", bytes.NewReader(body))
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown idea is 404", func(t *testing.T) {
		h := NewIdeasHandler(&mockIdeasService{err: service.ErrIdeaNotFound})

		body, _ := json.Marshal(UpdateStatusRequest{Status: "approved"})
		req := httptest.NewRequest(http.MethodPatch, "http://test/v1/ideas/"+id.String()+"/status", bytes.NewReader(body))
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// conflictOnUpdate lets GetIdea succeed while UpdateIdea fails.
type conflictOnUpdate struct {
	mockIdeasService
}

func (m *conflictOnUpdate) UpdateIdea(_ context.Context, _ *models.Idea) error {
	return service.ErrNotEditable
}
