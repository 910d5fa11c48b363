// Package models defines the domain types shared across the Ideas Hub.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdeaStatus is the position of an idea in the review workflow.
type IdeaStatus string

const (
	IdeaStatusDraft       IdeaStatus = "draft"
	IdeaStatusSubmitted   IdeaStatus = "submitted"
	IdeaStatusUnderReview IdeaStatus = "under_review"
	IdeaStatusApproved    IdeaStatus = "approved"
	IdeaStatusRejected    IdeaStatus = "rejected"
	IdeaStatusImplemented IdeaStatus = "implemented"
)

// statusTransitions lists the allowed next statuses per workflow state.
// Rejected and implemented are final and have no outgoing transitions.
var statusTransitions = map[IdeaStatus][]IdeaStatus{
	IdeaStatusDraft:       {IdeaStatusSubmitted},
	IdeaStatusSubmitted:   {IdeaStatusUnderReview, IdeaStatusRejected},
	IdeaStatusUnderReview: {IdeaStatusApproved, IdeaStatusRejected},
	IdeaStatusApproved:    {IdeaStatusImplemented, IdeaStatusRejected},
}

// CanTransitionTo reports whether the workflow allows moving from s to next.
func (s IdeaStatus) CanTransitionTo(next IdeaStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// ParseIdeaStatus returns the status for s and whether s named a known status.
func ParseIdeaStatus(s string) (IdeaStatus, bool) {
	switch status := IdeaStatus(s); status {
	case IdeaStatusDraft, IdeaStatusSubmitted, IdeaStatusUnderReview,
		IdeaStatusApproved, IdeaStatusRejected, IdeaStatusImplemented:
		return status, true
	default:
		return "", false
	}
}

// Idea is an improvement idea submitted by an employee, together with the
// analysis fields populated by the scoring pipeline.
type Idea struct {
	ID          uuid.UUID `json:"id"`
	SubmitterID string    `json:"submitterId"`

	Title              string   `json:"title"`
	Description        string   `json:"description"`
	ProblemDescription string   `json:"problemDescription,omitempty"`
	ExpectedBenefit    string   `json:"expectedBenefit,omitempty"`
	Department         string   `json:"department,omitempty"`
	Tags               []string `json:"tags,omitempty"`

	Status IdeaStatus `json:"status"`

	// Analysis fields. The embedding is regenerated whenever the idea text
	// changes; the scores are always recomputed from KPIEstimates and are
	// never edited independently.
	Summary             string              `json:"summary,omitempty"`
	Embedding           []float32           `json:"-"`
	ImpactScore         float64             `json:"impactScore"`
	FeasibilityScore    float64             `json:"feasibilityScore"`
	RecommendationClass RecommendationClass `json:"recommendationClass"`
	KPIEstimates        *KPIEstimate        `json:"kpiEstimates,omitempty"`
	ClusterLabel        string              `json:"clusterLabel,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	AnalyzedAt *time.Time `json:"analyzedAt,omitempty"`
}

// EmbeddingText returns the combined idea text used for embedding generation.
func (i *Idea) EmbeddingText() string {
	parts := []string{i.Title, i.Description}
	if i.ProblemDescription != "" {
		parts = append(parts, i.ProblemDescription)
	}

	if i.ExpectedBenefit != "" {
		parts = append(parts, i.ExpectedBenefit)
	}

	return strings.Join(parts, " ")
}

// CanBeEdited reports whether the submitter may still change the idea text.
func (i *Idea) CanBeEdited() bool {
	return i.Status == IdeaStatusDraft || i.Status == IdeaStatusSubmitted
}

// EmbeddedIdea is the slice of an idea needed by the brute-force similarity
// scan and by batch clustering: identity, display fields, and the vector.
type EmbeddedIdea struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Status    IdeaStatus `json:"status"`
	Embedding []float32  `json:"-"`
}

// SimilarIdea is one near-duplicate candidate. Score is cosine similarity for
// the brute-force path and the index-reported relevance score for the indexed
// path; both paths produce this same shape so callers are backend-agnostic.
// Computed per query, never persisted.
type SimilarIdea struct {
	IdeaID  uuid.UUID  `json:"ideaId"`
	Title   string     `json:"title"`
	Summary string     `json:"summary,omitempty"`
	Status  IdeaStatus `json:"status"`
	Score   float64    `json:"score"`
}

// ClusterAssignment maps idea index to cluster label for one batch run,
// together with the chosen cluster count. Ephemeral per run.
type ClusterAssignment struct {
	Labels []int `json:"labels"`
	K      int   `json:"k"`
}
