package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// StaffRepository handles persistence for staff members.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, id domain.StaffID) (*domain.StaffMember, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	Department *domain.Department
	Status     *domain.StaffStatus
	Role       *domain.StaffRole
}

type staffRepository struct {
	pool DB
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool DB) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `staff_id, name, role, department, status, current_patient_count, max_capacity, shift_start, shift_end`

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff (staff_id, name, role, department, status, current_patient_count, max_capacity, shift_start, shift_end)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.pool.Exec(ctx, query,
		staff.ID,
		staff.Name,
		staff.Role,
		staff.Department,
		staff.Status,
		staff.CurrentPatientCount,
		staff.MaxCapacity,
		staff.ShiftStart,
		staff.ShiftEnd,
	)
	return err
}

func (r *staffRepository) GetByID(ctx context.Context, id domain.StaffID) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE staff_id=$1`
	var staff domain.StaffMember
	if err := scanStaff(r.pool.QueryRow(ctx, query, id), &staff); err != nil {
		return nil, translateNoRows(err)
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff`
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
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY staff_id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffMember
	for rows.Next() {
		var staff domain.StaffMember
		if err := scanStaff(rows, &staff); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

func (r *staffRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM staff`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanStaff(row pgx.Row, staff *domain.StaffMember) error {
	return row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.Role,
		&staff.Department,
		&staff.Status,
		&staff.CurrentPatientCount,
		&staff.MaxCapacity,
		&staff.ShiftStart,
		&staff.ShiftEnd,
	)
}
