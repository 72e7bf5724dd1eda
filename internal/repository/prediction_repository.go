package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// PredictionFilter narrows prediction listings.
type PredictionFilter struct {
	Department *domain.Department
	From       *time.Time
	To         *time.Time
	Limit      int
}

// PredictionRepository stores write-once forecasts.
type PredictionRepository interface {
	Create(ctx context.Context, prediction *domain.Prediction) error
	// List returns matches newest first.
	List(ctx context.Context, filter PredictionFilter) ([]domain.Prediction, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type predictionRepository struct {
	pool DB
}

// NewPredictionRepository builds the repository.
func NewPredictionRepository(pool DB) PredictionRepository {
	return &predictionRepository{pool: pool}
}

func (r *predictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	const query = `
        INSERT INTO predictions (id, department, predicted_for, prediction_type, predicted_value, confidence, time_horizon, factors)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Department, p.Timestamp, p.Type, p.PredictedValue, p.Confidence, p.TimeHorizon, p.Factors)
	return err
}

func (r *predictionRepository) List(ctx context.Context, filter PredictionFilter) ([]domain.Prediction, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("predicted_for >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("predicted_for <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT id, department, predicted_for, prediction_type, predicted_value, confidence, time_horizon, factors
        FROM predictions WHERE %s ORDER BY predicted_for DESC LIMIT %d`,
		strings.Join(clauses, " AND "), limitOr(filter.Limit, 100))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Prediction
	for rows.Next() {
		var p domain.Prediction
		if err := rows.Scan(&p.ID, &p.Department, &p.Timestamp, &p.Type, &p.PredictedValue,
			&p.Confidence, &p.TimeHorizon, &p.Factors); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *predictionRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM predictions`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
