// Package repository provides data access for the Ideas Hub over PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/ideahub/hub/internal/models"
)

// ErrIdeaNotFound is returned when no idea row exists for the given ID.
var ErrIdeaNotFound = errors.New("idea not found")

// IdeasRepository handles data access for the ideas table. Embeddings are
// stored inline as halfvec (2 bytes per dimension); pgvector-go converts
// float32 to float16 when encoding.
type IdeasRepository struct {
	db *pgxpool.Pool
}

// NewIdeasRepository creates a new ideas repository.
func NewIdeasRepository(db *pgxpool.Pool) *IdeasRepository {
	return &IdeasRepository{db: db}
}

const ideaColumns = `id, submitter_id, title, description, problem_description, expected_benefit,
	department, tags, status, summary, impact_score, feasibility_score, recommendation_class,
	kpi_estimates, cluster_label, created_at, updated_at, analyzed_at`

// Create inserts a new idea row.
func (r *IdeasRepository) Create(ctx context.Context, idea *models.Idea) error {
	estimates, err := marshalEstimates(idea.KPIEstimates)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO ideas (id, submitter_id, title, description, problem_description, expected_benefit,
			department, tags, status, summary, embedding, impact_score, feasibility_score,
			recommendation_class, kpi_estimates, cluster_label, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		idea.ID, idea.SubmitterID, idea.Title, idea.Description, idea.ProblemDescription,
		idea.ExpectedBenefit, idea.Department, idea.Tags, idea.Status, idea.Summary,
		embeddingParam(idea.Embedding), idea.ImpactScore, idea.FeasibilityScore,
		idea.RecommendationClass, estimates, idea.ClusterLabel, idea.CreatedAt, idea.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ideas insert: %w", err)
	}

	return nil
}

// GetByID returns the idea with the given ID, including its embedding.
// Returns ErrIdeaNotFound when no row exists.
func (r *IdeasRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Idea, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+ideaColumns+`, embedding
		FROM ideas WHERE id = $1`, id)

	idea, err := scanIdeaWithEmbedding(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdeaNotFound
		}

		return nil, fmt.Errorf("get idea: %w", err)
	}

	return idea, nil
}

// List returns ideas ordered by creation time, newest first. An empty status
// returns all workflow states.
func (r *IdeasRepository) List(ctx context.Context, status models.IdeaStatus, limit, offset int) ([]models.Idea, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if status == "" {
		rows, err = r.db.Query(ctx, `
			SELECT `+ideaColumns+`
			FROM ideas ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT `+ideaColumns+`
			FROM ideas WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	}

	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []models.Idea

	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}

		ideas = append(ideas, *idea)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ideas: %w", err)
	}

	return ideas, nil
}

// Update persists the user-editable fields and the updated_at timestamp.
func (r *IdeasRepository) Update(ctx context.Context, idea *models.Idea) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE ideas
		SET title = $2, description = $3, problem_description = $4, expected_benefit = $5,
			department = $6, tags = $7, status = $8, updated_at = $9
		WHERE id = $1`,
		idea.ID, idea.Title, idea.Description, idea.ProblemDescription, idea.ExpectedBenefit,
		idea.Department, idea.Tags, idea.Status, idea.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update idea: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrIdeaNotFound
	}

	return nil
}

// UpdateStatus moves an idea to a new workflow state. Transition validation
// happens in the service layer.
func (r *IdeasRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.IdeaStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE ideas SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update idea status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrIdeaNotFound
	}

	return nil
}

// Delete removes an idea row.
func (r *IdeasRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ideas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrIdeaNotFound
	}

	return nil
}

// UpdateAnalysis stores the outcome of one analysis run: KPI estimates, the
// scores derived from them, summary, tags, and the (possibly regenerated)
// embedding. The previous analysis is superseded.
func (r *IdeasRepository) UpdateAnalysis(
	ctx context.Context, id uuid.UUID, estimate *models.KPIEstimate, score models.ScoreResult,
	summary string, tags []string, embedding []float32,
) error {
	estimates, err := marshalEstimates(estimate)
	if err != nil {
		return err
	}

	now := time.Now()

	tag, err := r.db.Exec(ctx, `
		UPDATE ideas
		SET kpi_estimates = $2, impact_score = $3, feasibility_score = $4, recommendation_class = $5,
			summary = $6, tags = $7, embedding = $8, analyzed_at = $9, updated_at = $9
		WHERE id = $1`,
		id, estimates, score.ImpactScore, score.FeasibilityScore, score.RecommendationClass,
		summary, tags, embeddingParam(embedding), now,
	)
	if err != nil {
		return fmt.Errorf("update idea analysis: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrIdeaNotFound
	}

	return nil
}

// UpdateEmbedding stores a regenerated embedding without touching analysis fields.
func (r *IdeasRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE ideas SET embedding = $2, updated_at = $3 WHERE id = $1`,
		id, embeddingParam(embedding), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update idea embedding: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrIdeaNotFound
	}

	return nil
}

// ListEmbedded returns every idea that has a stored embedding, for the
// brute-force similarity fallback and for batch clustering.
func (r *IdeasRepository) ListEmbedded(ctx context.Context) ([]models.EmbeddedIdea, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, summary, status, embedding
		FROM ideas WHERE embedding IS NOT NULL
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list embedded ideas: %w", err)
	}
	defer rows.Close()

	var ideas []models.EmbeddedIdea

	for rows.Next() {
		var (
			idea models.EmbeddedIdea
			vec  pgvector.HalfVector
		)

		if err := rows.Scan(&idea.ID, &idea.Title, &idea.Summary, &idea.Status, &vec); err != nil {
			return nil, fmt.Errorf("scan embedded idea: %w", err)
		}

		idea.Embedding = vec.Slice()
		ideas = append(ideas, idea)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embedded ideas: %w", err)
	}

	return ideas, nil
}

// ListMissingEmbedding returns ideas that have no stored embedding yet, for
// the background backfill.
func (r *IdeasRepository) ListMissingEmbedding(ctx context.Context, limit int) ([]models.Idea, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ideaColumns+`
		FROM ideas WHERE embedding IS NULL
		ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list ideas missing embedding: %w", err)
	}
	defer rows.Close()

	var ideas []models.Idea

	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}

		ideas = append(ideas, *idea)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ideas missing embedding: %w", err)
	}

	return ideas, nil
}

// NearestByEmbedding returns idea IDs, display fields, and similarity scores
// for the nearest neighbours to queryEmbedding. Uses cosine distance (<=>);
// score = 1 - distance. Only rows with score >= minScore are returned.
func (r *IdeasRepository) NearestByEmbedding(
	ctx context.Context, queryEmbedding []float32, limit int, minScore float64,
) ([]models.SimilarIdea, error) {
	queryVec := pgvector.NewHalfVector(queryEmbedding)

	rows, err := r.db.Query(ctx, `
		SELECT id, title, summary, status, (1 - (embedding <=> $1)) AS score
		FROM ideas
		WHERE embedding IS NOT NULL AND (1 - (embedding <=> $1)) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3`, queryVec, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("nearest ideas: %w", err)
	}
	defer rows.Close()

	var results []models.SimilarIdea

	for rows.Next() {
		var match models.SimilarIdea

		if err := rows.Scan(&match.IdeaID, &match.Title, &match.Summary, &match.Status, &match.Score); err != nil {
			return nil, fmt.Errorf("scan similar idea: %w", err)
		}

		results = append(results, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating similar ideas: %w", err)
	}

	return results, nil
}

// UpdateClusterLabels stores the theme label per idea after a batch
// clustering run.
func (r *IdeasRepository) UpdateClusterLabels(ctx context.Context, labels map[uuid.UUID]string) error {
	batch := &pgx.Batch{}
	now := time.Now()

	for id, label := range labels {
		batch.Queue(`UPDATE ideas SET cluster_label = $2, updated_at = $3 WHERE id = $1`, id, label, now)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range labels {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("update cluster label: %w", err)
		}
	}

	return nil
}

// embeddingParam returns the vector parameter for an embedding, or nil so the
// column stays NULL when the idea has no embedding yet.
func embeddingParam(embedding []float32) any {
	if len(embedding) == 0 {
		return nil
	}

	return pgvector.NewHalfVector(embedding)
}

func marshalEstimates(estimate *models.KPIEstimate) ([]byte, error) {
	if estimate == nil {
		return nil, nil
	}

	data, err := json.Marshal(estimate)
	if err != nil {
		return nil, fmt.Errorf("marshal kpi estimates: %w", err)
	}

	return data, nil
}

// scanIdea reads one row of ideaColumns.
func scanIdea(row pgx.Row) (*models.Idea, error) {
	var (
		idea      models.Idea
		estimates []byte
	)

	err := row.Scan(
		&idea.ID, &idea.SubmitterID, &idea.Title, &idea.Description, &idea.ProblemDescription,
		&idea.ExpectedBenefit, &idea.Department, &idea.Tags, &idea.Status, &idea.Summary,
		&idea.ImpactScore, &idea.FeasibilityScore, &idea.RecommendationClass,
		&estimates, &idea.ClusterLabel, &idea.CreatedAt, &idea.UpdatedAt, &idea.AnalyzedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalEstimates(estimates, &idea); err != nil {
		return nil, err
	}

	return &idea, nil
}

// scanIdeaWithEmbedding reads one row of ideaColumns plus the embedding column.
func scanIdeaWithEmbedding(row pgx.Row) (*models.Idea, error) {
	var (
		idea      models.Idea
		estimates []byte
		vec       *pgvector.HalfVector
	)

	err := row.Scan(
		&idea.ID, &idea.SubmitterID, &idea.Title, &idea.Description, &idea.ProblemDescription,
		&idea.ExpectedBenefit, &idea.Department, &idea.Tags, &idea.Status, &idea.Summary,
		&idea.ImpactScore, &idea.FeasibilityScore, &idea.RecommendationClass,
		&estimates, &idea.ClusterLabel, &idea.CreatedAt, &idea.UpdatedAt, &idea.AnalyzedAt,
		&vec,
	)
	if err != nil {
		return nil, err
	}

	if vec != nil {
		idea.Embedding = vec.Slice()
	}

	if err := unmarshalEstimates(estimates, &idea); err != nil {
		return nil, err
	}

	return &idea, nil
}

func unmarshalEstimates(data []byte, idea *models.Idea) error {
	if len(data) == 0 {
		return nil
	}

	var estimate models.KPIEstimate
	if err := json.Unmarshal(data, &estimate); err != nil {
		return fmt.Errorf("unmarshal kpi estimates: %w", err)
	}

	idea.KPIEstimates = &estimate

	return nil
}
