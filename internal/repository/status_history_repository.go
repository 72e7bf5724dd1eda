package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// HistoryFilter narrows event listings across patients.
type HistoryFilter struct {
	ToStatus   *domain.PatientStatus
	Department *domain.Department
	From       *time.Time
	To         *time.Time
}

// StatusHistoryRepository stores patient journey events. Events are append-only.
type StatusHistoryRepository interface {
	Create(ctx context.Context, event *domain.StatusHistoryEvent) error
	// ListByPatient returns the journey ordered by timestamp, then insertion order.
	ListByPatient(ctx context.Context, patientID domain.PatientID) ([]domain.StatusHistoryEvent, error)
	// LatestByPatient returns the most recent event, or ErrNotFound.
	LatestByPatient(ctx context.Context, patientID domain.PatientID) (*domain.StatusHistoryEvent, error)
	List(ctx context.Context, filter HistoryFilter) ([]domain.StatusHistoryEvent, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type statusHistoryRepository struct {
	pool DB
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(pool DB) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

const historyColumns = `id, patient_id, from_status, to_status, department, event_time, duration_ms, stage_duration_ms, staff_id`

func (r *statusHistoryRepository) Create(ctx context.Context, event *domain.StatusHistoryEvent) error {
	const query = `
        INSERT INTO patient_status_history (patient_id, from_status, to_status, department, event_time,
            duration_ms, stage_duration_ms, staff_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		event.PatientID,
		event.FromStatus,
		event.ToStatus,
		event.Department,
		event.Timestamp,
		durationMillis(event.Duration),
		durationMillis(event.StageDuration),
		event.StaffID,
	).Scan(&event.ID)
}

func (r *statusHistoryRepository) ListByPatient(ctx context.Context, patientID domain.PatientID) ([]domain.StatusHistoryEvent, error) {
	query := `SELECT ` + historyColumns + ` FROM patient_status_history
        WHERE patient_id=$1 ORDER BY event_time ASC, id ASC`
	return r.query(ctx, query, patientID)
}

func (r *statusHistoryRepository) LatestByPatient(ctx context.Context, patientID domain.PatientID) (*domain.StatusHistoryEvent, error) {
	query := `SELECT ` + historyColumns + ` FROM patient_status_history
        WHERE patient_id=$1 ORDER BY event_time DESC, id DESC LIMIT 1`
	events, err := r.query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return &events[0], nil
}

func (r *statusHistoryRepository) List(ctx context.Context, filter HistoryFilter) ([]domain.StatusHistoryEvent, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ToStatus != nil {
		args = append(args, *filter.ToStatus)
		clauses = append(clauses, fmt.Sprintf("to_status=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("event_time >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("event_time <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM patient_status_history WHERE %s ORDER BY event_time ASC, id ASC`,
		historyColumns, strings.Join(clauses, " AND "))
	return r.query(ctx, query, args...)
}

func (r *statusHistoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM patient_status_history`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *statusHistoryRepository) query(ctx context.Context, query string, args ...any) ([]domain.StatusHistoryEvent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistoryEvent
	for rows.Next() {
		var (
			event         domain.StatusHistoryEvent
			durationMs    *int64
			stageDuration *int64
		)
		if err := rows.Scan(
			&event.ID,
			&event.PatientID,
			&event.FromStatus,
			&event.ToStatus,
			&event.Department,
			&event.Timestamp,
			&durationMs,
			&stageDuration,
			&event.StaffID,
		); err != nil {
			return nil, err
		}
		event.Duration = millisDuration(durationMs)
		event.StageDuration = millisDuration(stageDuration)
		result = append(result, event)
	}
	return result, rows.Err()
}
