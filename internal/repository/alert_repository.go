package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// AlertFilter narrows alert listings.
type AlertFilter struct {
	Department *domain.Department
	Severity   *domain.AlertSeverity
	Since      *time.Time
	Limit      int
}

// AlertRepository stores operational alerts.
type AlertRepository interface {
	Create(ctx context.Context, alert *domain.Alert) error
	Update(ctx context.Context, alert *domain.Alert) error
	GetByID(ctx context.Context, id string) (*domain.Alert, error)
	// List returns matches newest first.
	List(ctx context.Context, filter AlertFilter) ([]domain.Alert, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type alertRepository struct {
	pool DB
}

// NewAlertRepository builds the repository.
func NewAlertRepository(pool DB) AlertRepository {
	return &alertRepository{pool: pool}
}

const alertColumns = `id, department, raised_at, severity, type, message, acknowledged, acknowledged_by, acknowledged_at`

func (r *alertRepository) Create(ctx context.Context, a *domain.Alert) error {
	const query = `
        INSERT INTO alerts (id, department, raised_at, severity, type, message, acknowledged, acknowledged_by, acknowledged_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Department, a.Timestamp, a.Severity, a.Type, a.Message, a.Acknowledged, a.AcknowledgedBy, a.AcknowledgedAt)
	return err
}

func (r *alertRepository) Update(ctx context.Context, a *domain.Alert) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE alerts SET acknowledged=$1, acknowledged_by=$2, acknowledged_at=$3 WHERE id=$4`,
		a.Acknowledged, a.AcknowledgedBy, a.AcknowledgedAt, a.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *alertRepository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id=$1`
	var a domain.Alert
	if err := scanAlert(r.pool.QueryRow(ctx, query, id), &a); err != nil {
		return nil, translateNoRows(err)
	}
	return &a, nil
}

func (r *alertRepository) List(ctx context.Context, filter AlertFilter) ([]domain.Alert, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.Severity != nil {
		args = append(args, *filter.Severity)
		clauses = append(clauses, fmt.Sprintf("severity=$%d", len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		clauses = append(clauses, fmt.Sprintf("raised_at >= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM alerts WHERE %s ORDER BY raised_at DESC LIMIT %d`,
		alertColumns, strings.Join(clauses, " AND "), limitOr(filter.Limit, 100))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := scanAlert(rows, &a); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *alertRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM alerts`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanAlert(row pgx.Row, a *domain.Alert) error {
	return row.Scan(&a.ID, &a.Department, &a.Timestamp, &a.Severity, &a.Type, &a.Message,
		&a.Acknowledged, &a.AcknowledgedBy, &a.AcknowledgedAt)
}
