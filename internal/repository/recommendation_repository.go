package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// RecommendationFilter narrows recommendation listings.
type RecommendationFilter struct {
	Department *domain.Department
	Status     *domain.RecommendationStatus
	Limit      int
}

// RecommendationRepository stores suggested interventions.
type RecommendationRepository interface {
	Create(ctx context.Context, rec *domain.Recommendation) error
	Update(ctx context.Context, rec *domain.Recommendation) error
	GetByID(ctx context.Context, id string) (*domain.Recommendation, error)
	// List returns matches newest first.
	List(ctx context.Context, filter RecommendationFilter) ([]domain.Recommendation, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type recommendationRepository struct {
	pool DB
}

// NewRecommendationRepository builds the repository.
func NewRecommendationRepository(pool DB) RecommendationRepository {
	return &recommendationRepository{pool: pool}
}

const recommendationColumns = `id, department, created_at, type, priority, action, description, estimated_impact, status, implemented_at`

func (r *recommendationRepository) Create(ctx context.Context, rec *domain.Recommendation) error {
	const query = `
        INSERT INTO recommendations (id, department, created_at, type, priority, action, description, estimated_impact, status, implemented_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.Department, rec.Timestamp, rec.Type, rec.Priority, rec.Action,
		rec.Description, rec.EstimatedImpact, rec.Status, rec.ImplementedAt)
	return err
}

func (r *recommendationRepository) Update(ctx context.Context, rec *domain.Recommendation) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE recommendations SET status=$1, implemented_at=$2 WHERE id=$3`,
		rec.Status, rec.ImplementedAt, rec.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recommendationRepository) GetByID(ctx context.Context, id string) (*domain.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE id=$1`
	var rec domain.Recommendation
	if err := scanRecommendation(r.pool.QueryRow(ctx, query, id), &rec); err != nil {
		return nil, translateNoRows(err)
	}
	return &rec, nil
}

func (r *recommendationRepository) List(ctx context.Context, filter RecommendationFilter) ([]domain.Recommendation, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM recommendations WHERE %s ORDER BY created_at DESC LIMIT %d`,
		recommendationColumns, strings.Join(clauses, " AND "), limitOr(filter.Limit, 100))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Recommendation
	for rows.Next() {
		var rec domain.Recommendation
		if err := scanRecommendation(rows, &rec); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (r *recommendationRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM recommendations`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanRecommendation(row pgx.Row, rec *domain.Recommendation) error {
	return row.Scan(&rec.ID, &rec.Department, &rec.Timestamp, &rec.Type, &rec.Priority, &rec.Action,
		&rec.Description, &rec.EstimatedImpact, &rec.Status, &rec.ImplementedAt)
}
