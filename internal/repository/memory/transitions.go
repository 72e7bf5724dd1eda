package memory

import (
	"context"
	"fmt"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/repository"
)

type transitionRecorder struct {
	patients repository.PatientRepository
	history  repository.StatusHistoryRepository
}

// NewTransitionRecorder moves the patient first and appends the event second,
// putting the previous patient row back when the append fails.
func NewTransitionRecorder(patients repository.PatientRepository, history repository.StatusHistoryRepository) repository.TransitionRecorder {
	return &transitionRecorder{patients: patients, history: history}
}

func (r *transitionRecorder) RecordTransition(ctx context.Context, patient *domain.Patient, event *domain.StatusHistoryEvent) error {
	previous, err := r.patients.GetByID(ctx, patient.ID)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if err := r.patients.Update(ctx, patient); err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if err := r.history.Create(ctx, event); err != nil {
		if restoreErr := r.patients.Update(ctx, previous); restoreErr != nil {
			return fmt.Errorf("record transition: %w (restore patient: %v)", err, restoreErr)
		}
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}
