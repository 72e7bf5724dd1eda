package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// PatientFilter narrows patient listings.
type PatientFilter struct {
	Department *domain.Department
	Statuses   []domain.PatientStatus
	ActiveOnly bool
}

// PatientRepository encapsulates patient persistence.
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) error
	Update(ctx context.Context, patient *domain.Patient) error
	GetByID(ctx context.Context, id domain.PatientID) (*domain.Patient, error)
	// List returns matching patients ordered by registration time ascending.
	List(ctx context.Context, filter PatientFilter) ([]domain.Patient, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type patientRepository struct {
	pool DB
}

// NewPatientRepository instantiates repository.
func NewPatientRepository(pool DB) PatientRepository {
	return &patientRepository{pool: pool}
}

const patientColumns = `patient_id, name, age, current_status, current_department, registration_time,
               estimated_discharge_time, priority, symptoms, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	const query = `
        INSERT INTO patients (patient_id, name, age, current_status, current_department, registration_time,
            estimated_discharge_time, priority, symptoms, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		patient.ID,
		patient.Name,
		patient.Age,
		patient.CurrentStatus,
		patient.CurrentDepartment,
		patient.RegistrationTime,
		patient.EstimatedDischargeTime,
		patient.Priority,
		patient.Symptoms,
		patient.CreatedAt,
	).Scan(&patient.UpdatedAt)
}

func (r *patientRepository) Update(ctx context.Context, patient *domain.Patient) error {
	const query = `
        UPDATE patients SET name=$1, age=$2, current_status=$3, current_department=$4,
            estimated_discharge_time=$5, priority=$6, symptoms=$7, updated_at=NOW()
        WHERE patient_id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		patient.Name,
		patient.Age,
		patient.CurrentStatus,
		patient.CurrentDepartment,
		patient.EstimatedDischargeTime,
		patient.Priority,
		patient.Symptoms,
		patient.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepository) GetByID(ctx context.Context, id domain.PatientID) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE patient_id=$1`
	var patient domain.Patient
	if err := scanPatient(r.pool.QueryRow(ctx, query, id), &patient); err != nil {
		return nil, translateNoRows(err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, filter PatientFilter) ([]domain.Patient, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("current_department=$%d", len(args)))
	}
	if filter.ActiveOnly {
		args = append(args, domain.PatientStatusDischarge)
		clauses = append(clauses, fmt.Sprintf("current_status<>$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("current_status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM patients WHERE %s ORDER BY registration_time ASC, patient_id ASC`,
		patientColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Patient
	for rows.Next() {
		var patient domain.Patient
		if err := scanPatient(rows, &patient); err != nil {
			return nil, err
		}
		result = append(result, patient)
	}
	return result, rows.Err()
}

func (r *patientRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM patients`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanPatient(row pgx.Row, patient *domain.Patient) error {
	return row.Scan(
		&patient.ID,
		&patient.Name,
		&patient.Age,
		&patient.CurrentStatus,
		&patient.CurrentDepartment,
		&patient.RegistrationTime,
		&patient.EstimatedDischargeTime,
		&patient.Priority,
		&patient.Symptoms,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
}
