package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// DepartmentMetricsFilter narrows snapshot listings.
type DepartmentMetricsFilter struct {
	Department *domain.Department
	Since      *time.Time
	Limit      int
}

// DepartmentMetricsRepository stores KPI snapshots.
type DepartmentMetricsRepository interface {
	Create(ctx context.Context, m *domain.DepartmentMetrics) error
	// List returns snapshots newest first.
	List(ctx context.Context, filter DepartmentMetricsFilter) ([]domain.DepartmentMetrics, error)
}

type departmentMetricsRepository struct {
	pool DB
}

// NewDepartmentMetricsRepository builds the repository.
func NewDepartmentMetricsRepository(pool DB) DepartmentMetricsRepository {
	return &departmentMetricsRepository{pool: pool}
}

func (r *departmentMetricsRepository) Create(ctx context.Context, m *domain.DepartmentMetrics) error {
	const query = `
        INSERT INTO department_metrics (department, captured_at, patients_waiting, average_wait_time,
            patients_served_per_hour, occupancy_rate, staff_utilization, congestion_level)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		m.Department, m.Timestamp, m.PatientsWaiting, m.AverageWaitTime,
		m.PatientsServedPerHour, m.OccupancyRate, m.StaffUtilization, m.CongestionLevel,
	).Scan(&m.ID)
}

func (r *departmentMetricsRepository) List(ctx context.Context, filter DepartmentMetricsFilter) ([]domain.DepartmentMetrics, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		clauses = append(clauses, fmt.Sprintf("captured_at >= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT id, department, captured_at, patients_waiting, average_wait_time,
            patients_served_per_hour, occupancy_rate, staff_utilization, congestion_level
        FROM department_metrics WHERE %s ORDER BY captured_at DESC, id DESC LIMIT %d`,
		strings.Join(clauses, " AND "), limitOr(filter.Limit, 100))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DepartmentMetrics
	for rows.Next() {
		var m domain.DepartmentMetrics
		if err := rows.Scan(&m.ID, &m.Department, &m.Timestamp, &m.PatientsWaiting, &m.AverageWaitTime,
			&m.PatientsServedPerHour, &m.OccupancyRate, &m.StaffUtilization, &m.CongestionLevel); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
