package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// ResourceFilter narrows resource listings.
type ResourceFilter struct {
	Department *domain.Department
	Status     *domain.ResourceStatus
	Type       *domain.ResourceType
}

// ResourceRepository manages rooms, beds and equipment.
type ResourceRepository interface {
	Create(ctx context.Context, resource *domain.Resource) error
	List(ctx context.Context, filter ResourceFilter) ([]domain.Resource, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type resourceRepository struct {
	pool DB
}

// NewResourceRepository builds the repository.
func NewResourceRepository(pool DB) ResourceRepository {
	return &resourceRepository{pool: pool}
}

func (r *resourceRepository) Create(ctx context.Context, resource *domain.Resource) error {
	const query = `
        INSERT INTO resources (resource_id, name, type, department, status, current_patient_id, capacity, utilization_rate)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		resource.ID,
		resource.Name,
		resource.Type,
		resource.Department,
		resource.Status,
		resource.CurrentPatientID,
		resource.Capacity,
		resource.UtilizationRate,
	)
	return err
}

func (r *resourceRepository) List(ctx context.Context, filter ResourceFilter) ([]domain.Resource, error) {
	query := `SELECT resource_id, name, type, department, status, current_patient_id, capacity, utilization_rate FROM resources`
	args := []any{}
	clauses := []string{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY resource_id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Resource
	for rows.Next() {
		var res domain.Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Type, &res.Department, &res.Status,
			&res.CurrentPatientID, &res.Capacity, &res.UtilizationRate); err != nil {
			return nil, err
		}
		result = append(result, res)
	}
	return result, rows.Err()
}

func (r *resourceRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM resources`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
