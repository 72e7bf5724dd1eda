package memory

import (
	"context"
	"fmt"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/repository"
)

type staffRepository struct {
	rows *table[domain.StaffID, domain.StaffMember]
}

// NewStaffRepository returns an empty in-memory staff roster.
func NewStaffRepository() repository.StaffRepository {
	return &staffRepository{rows: newTable[domain.StaffID, domain.StaffMember]()}
}

func (r *staffRepository) Create(_ context.Context, staff *domain.StaffMember) error {
	if !r.rows.insert(staff.ID, *staff) {
		return fmt.Errorf("staff %s already exists", staff.ID)
	}
	return nil
}

func (r *staffRepository) GetByID(_ context.Context, id domain.StaffID) (*domain.StaffMember, error) {
	row, ok := r.rows.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (r *staffRepository) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	return r.rows.scan(func(s domain.StaffMember) bool {
		if filter.Department != nil && s.Department != *filter.Department {
			return false
		}
		if filter.Status != nil && s.Status != *filter.Status {
			return false
		}
		if filter.Role != nil && s.Role != *filter.Role {
			return false
		}
		return true
	}), nil
}

func (r *staffRepository) DeleteAll(_ context.Context) (int64, error) {
	return r.rows.clear(), nil
}

type resourceRepository struct {
	rows *table[domain.ResourceID, domain.Resource]
}

// NewResourceRepository returns an empty in-memory resource registry.
func NewResourceRepository() repository.ResourceRepository {
	return &resourceRepository{rows: newTable[domain.ResourceID, domain.Resource]()}
}

func (r *resourceRepository) Create(_ context.Context, resource *domain.Resource) error {
	if !r.rows.insert(resource.ID, *resource) {
		return fmt.Errorf("resource %s already exists", resource.ID)
	}
	return nil
}

func (r *resourceRepository) List(_ context.Context, filter repository.ResourceFilter) ([]domain.Resource, error) {
	return r.rows.scan(func(res domain.Resource) bool {
		if filter.Department != nil && res.Department != *filter.Department {
			return false
		}
		if filter.Status != nil && res.Status != *filter.Status {
			return false
		}
		if filter.Type != nil && res.Type != *filter.Type {
			return false
		}
		return true
	}), nil
}

func (r *resourceRepository) DeleteAll(_ context.Context) (int64, error) {
	return r.rows.clear(), nil
}
