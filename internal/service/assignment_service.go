package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/repository"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

// AssignmentService advances a patient to the next stage under a staff member
// picked from the target department.
type AssignmentService struct {
	patients *PatientService
	staff    repository.StaffRepository
	logger   *zap.Logger
}

// AssignInput describes an auto-assignment. Department defaults to the
// patient's current department.
type AssignInput struct {
	PatientID  domain.PatientID
	Department *domain.Department
}

// NewAssignmentService creates the service.
func NewAssignmentService(patients *PatientService, staff repository.StaffRepository, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{patients: patients, staff: staff, logger: logger}
}

// AutoAssign moves the patient to the next pipeline status, attributing the
// change to an on-shift staff member with spare capacity. The choice is stable
// for a given patient and roster.
func (s *AssignmentService) AutoAssign(ctx context.Context, input AssignInput) (*domain.Patient, *domain.StatusHistoryEvent, error) {
	if input.Department != nil && !input.Department.Valid() {
		return nil, nil, apperrors.NewValidationError("unknown department", map[string]any{"department": *input.Department})
	}
	patient, err := s.patients.Get(ctx, input.PatientID)
	if err != nil {
		return nil, nil, err
	}
	next, ok := patient.CurrentStatus.Next()
	if !ok {
		return nil, nil, apperrors.NewConflict("patient already discharged", map[string]any{"patientId": patient.ID})
	}

	dept := patient.CurrentDepartment
	if input.Department != nil {
		dept = *input.Department
	}
	staffList, err := s.staff.List(ctx, repository.StaffFilter{Department: &dept})
	if err != nil {
		return nil, nil, fmt.Errorf("list staff: %w", err)
	}
	eligible := make([]domain.StaffMember, 0, len(staffList))
	for _, member := range staffList {
		if hasCapacity(member) {
			eligible = append(eligible, member)
		}
	}
	if len(eligible) == 0 {
		return nil, nil, apperrors.NewConflict("no eligible staff in department", map[string]any{"department": dept})
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].ID < eligible[j].ID
	})
	assignee := eligible[selectIndex(string(patient.ID), len(eligible))]

	s.logger.Info("auto-assigning patient",
		zap.String("patient_id", string(patient.ID)),
		zap.String("staff_id", string(assignee.ID)),
		zap.String("department", string(dept)))
	return s.patients.Transition(ctx, TransitionInput{
		PatientID:  patient.ID,
		Status:     next,
		Department: &dept,
		StaffID:    &assignee.ID,
	})
}

func hasCapacity(member domain.StaffMember) bool {
	switch member.Status {
	case domain.StaffStatusAvailable, domain.StaffStatusBusy:
		return member.CurrentPatientCount < member.MaxCapacity
	}
	return false
}

func selectIndex(key string, length int) int {
	if length == 0 {
		return 0
	}
	sum := 0
	for _, ch := range key {
		sum += int(ch)
	}
	return sum % length
}
