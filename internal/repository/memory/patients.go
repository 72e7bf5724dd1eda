package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/repository"
)

type patientRepository struct {
	rows *table[domain.PatientID, domain.Patient]
}

// NewPatientRepository returns an empty in-memory patient repository.
func NewPatientRepository() repository.PatientRepository {
	return &patientRepository{rows: newTable[domain.PatientID, domain.Patient]()}
}

func clonePatient(p domain.Patient) domain.Patient {
	p.Symptoms = cloneStrings(p.Symptoms)
	if p.EstimatedDischargeTime != nil {
		t := *p.EstimatedDischargeTime
		p.EstimatedDischargeTime = &t
	}
	return p
}

func (r *patientRepository) Create(_ context.Context, patient *domain.Patient) error {
	if patient.UpdatedAt.IsZero() {
		patient.UpdatedAt = patient.CreatedAt
	}
	if !r.rows.insert(patient.ID, clonePatient(*patient)) {
		return fmt.Errorf("patient %s already exists", patient.ID)
	}
	return nil
}

func (r *patientRepository) Update(_ context.Context, patient *domain.Patient) error {
	if !r.rows.replace(patient.ID, clonePatient(*patient)) {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) GetByID(_ context.Context, id domain.PatientID) (*domain.Patient, error) {
	row, ok := r.rows.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := clonePatient(row)
	return &p, nil
}

func (r *patientRepository) List(_ context.Context, filter repository.PatientFilter) ([]domain.Patient, error) {
	statuses := make(map[domain.PatientStatus]struct{}, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses[s] = struct{}{}
	}
	result := r.rows.scan(func(p domain.Patient) bool {
		if filter.Department != nil && p.CurrentDepartment != *filter.Department {
			return false
		}
		if filter.ActiveOnly && !p.IsActive() {
			return false
		}
		if len(statuses) > 0 {
			if _, ok := statuses[p.CurrentStatus]; !ok {
				return false
			}
		}
		return true
	})
	for i := range result {
		result[i] = clonePatient(result[i])
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].RegistrationTime.Equal(result[j].RegistrationTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].RegistrationTime.Before(result[j].RegistrationTime)
	})
	return result, nil
}

func (r *patientRepository) DeleteAll(_ context.Context) (int64, error) {
	return r.rows.clear(), nil
}
