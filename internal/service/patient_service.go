package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/observability"
	"github.com/spec-kit/patient-flow/internal/repository"
	"github.com/spec-kit/patient-flow/pkg/util/clock"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

const maxPatientAge = 130

// PatientService is the patient registry: admissions, status changes and journeys.
type PatientService struct {
	patients    repository.PatientRepository
	history     repository.StatusHistoryRepository
	transitions repository.TransitionRecorder
	staff       repository.StaffRepository
	locker      Locker
	clock       clock.Clock
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// PatientDependencies bundles collaborators for the patient service.
type PatientDependencies struct {
	Store      *repository.Store
	Locker     Locker
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// AdmitInput describes a new arrival.
type AdmitInput struct {
	Name     string
	Age      int
	Symptoms []string
	Priority domain.Priority
}

// TransitionInput moves a patient to a new status.
type TransitionInput struct {
	PatientID  domain.PatientID
	Status     domain.PatientStatus
	Department *domain.Department
	StaffID    *domain.StaffID
}

// ActivePatient is a patient annotated with the time since registration.
type ActivePatient struct {
	domain.Patient
	WaitTime time.Duration
}

// FlowGroup counts active patients sharing a department and status.
type FlowGroup struct {
	Department      domain.Department
	Status          domain.PatientStatus
	Count           int
	AverageWaitTime int
	PatientIDs      []domain.PatientID
}

// NewPatientService constructs the service.
func NewPatientService(deps PatientDependencies) *PatientService {
	svc := &PatientService{
		patients:    deps.Store.Patients,
		history:     deps.Store.History,
		transitions: deps.Store.Transitions,
		staff:       deps.Store.Staff,
		locker:      deps.Locker,
		clock:       deps.Clock,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
	if svc.locker == nil {
		svc.locker = NewKeyedMutex()
	}
	if svc.clock == nil {
		svc.clock = clock.System{}
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Admit registers a patient at Reception and records the initial Registration event.
func (s *PatientService) Admit(ctx context.Context, input AdmitInput) (*domain.Patient, error) {
	name := strings.TrimSpace(input.Name)
	symptoms := domain.NormalizeSymptoms(input.Symptoms)
	details := map[string]any{}
	if name == "" {
		details["name"] = "must not be blank"
	}
	if input.Age < 0 || input.Age > maxPatientAge {
		details["age"] = fmt.Sprintf("must be between 0 and %d", maxPatientAge)
	}
	if len(symptoms) == 0 {
		details["symptoms"] = "at least one symptom is required"
	}
	if !input.Priority.Valid() {
		details["priority"] = "must be one of Low, Medium, High, Critical"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid admission", details)
	}

	now := s.clock.Now()
	patient := &domain.Patient{
		ID:                NewPatientID(now),
		Name:              name,
		Age:               input.Age,
		CurrentStatus:     domain.PatientStatusRegistration,
		CurrentDepartment: domain.DepartmentReception,
		RegistrationTime:  now,
		Priority:          input.Priority,
		Symptoms:          symptoms,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	if err := s.history.Create(ctx, &domain.StatusHistoryEvent{
		PatientID:  patient.ID,
		ToStatus:   domain.PatientStatusRegistration,
		Department: domain.DepartmentReception,
		Timestamp:  now,
	}); err != nil {
		return nil, fmt.Errorf("record registration: %w", err)
	}

	s.metrics.RecordAdmission()
	s.logger.Info("patient admitted",
		zap.String("patient_id", string(patient.ID)),
		zap.String("priority", string(patient.Priority)))
	s.publish(ctx, events.New(events.EventPatientAdmitted, string(patient.ID), now, events.PatientAdmittedPayload{
		Name:     patient.Name,
		Age:      patient.Age,
		Priority: patient.Priority,
		Symptoms: patient.Symptoms,
	}))
	return patient, nil
}

// Transition moves a patient to a new status (and optionally department),
// appending a journey event. Calls for one patient are serialized.
func (s *PatientService) Transition(ctx context.Context, input TransitionInput) (*domain.Patient, *domain.StatusHistoryEvent, error) {
	if !input.Status.Valid() {
		return nil, nil, apperrors.NewValidationError("unknown status", map[string]any{"status": input.Status})
	}
	if input.Department != nil && !input.Department.Valid() {
		return nil, nil, apperrors.NewValidationError("unknown department", map[string]any{"department": *input.Department})
	}

	unlock, err := s.locker.Lock(ctx, string(input.PatientID))
	if err != nil {
		return nil, nil, fmt.Errorf("lock patient %s: %w", input.PatientID, err)
	}
	defer unlock()

	patient, err := s.getPatient(ctx, input.PatientID)
	if err != nil {
		return nil, nil, err
	}
	if input.StaffID != nil {
		if _, err := s.staff.GetByID(ctx, *input.StaffID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, apperrors.NewNotFound("staff member", map[string]any{"staffId": *input.StaffID})
			}
			return nil, nil, fmt.Errorf("load staff: %w", err)
		}
	}
	if patient.CurrentStatus.IsTerminal() {
		return nil, nil, apperrors.NewConflict("patient already discharged", map[string]any{"patientId": patient.ID})
	}

	at := s.clock.Now()
	var stage *time.Duration
	latest, err := s.history.LatestByPatient(ctx, patient.ID)
	switch {
	case err == nil:
		if latest.Timestamp.After(at) {
			at = latest.Timestamp
		}
		d := at.Sub(latest.Timestamp)
		stage = &d
	case !errors.Is(err, repository.ErrNotFound):
		return nil, nil, fmt.Errorf("load latest event: %w", err)
	}

	department := patient.CurrentDepartment
	if input.Department != nil {
		department = *input.Department
	}
	fromStatus := patient.CurrentStatus
	fromDepartment := patient.CurrentDepartment
	duration := at.Sub(patient.CreatedAt)
	event := &domain.StatusHistoryEvent{
		PatientID:     patient.ID,
		FromStatus:    &fromStatus,
		ToStatus:      input.Status,
		Department:    department,
		Timestamp:     at,
		Duration:      &duration,
		StageDuration: stage,
		StaffID:       input.StaffID,
	}
	patient.CurrentStatus = input.Status
	patient.CurrentDepartment = department
	patient.UpdatedAt = at
	if err := s.transitions.RecordTransition(ctx, patient, event); err != nil {
		return nil, nil, err
	}

	s.metrics.RecordTransition(string(input.Status))
	s.logger.Info("patient status changed",
		zap.String("patient_id", string(patient.ID)),
		zap.String("from", string(fromStatus)),
		zap.String("status", string(input.Status)),
		zap.String("department", string(department)))
	s.publish(ctx, events.New(events.EventPatientStatusChanged, string(patient.ID), at, events.PatientStatusChangedPayload{
		FromStatus:     fromStatus,
		ToStatus:       input.Status,
		FromDepartment: fromDepartment,
		ToDepartment:   department,
		StaffID:        input.StaffID,
	}))
	return patient, event, nil
}

// Get returns one patient.
func (s *PatientService) Get(ctx context.Context, id domain.PatientID) (*domain.Patient, error) {
	return s.getPatient(ctx, id)
}

// ActivePatients lists every non-discharged patient by registration time.
func (s *PatientService) ActivePatients(ctx context.Context) ([]ActivePatient, error) {
	return s.listActive(ctx, repository.PatientFilter{ActiveOnly: true})
}

// ByDepartment lists active patients currently in dept.
func (s *PatientService) ByDepartment(ctx context.Context, dept domain.Department) ([]ActivePatient, error) {
	if !dept.Valid() {
		return nil, apperrors.NewValidationError("unknown department", map[string]any{"department": dept})
	}
	return s.listActive(ctx, repository.PatientFilter{ActiveOnly: true, Department: &dept})
}

// Journey returns a patient's events in chronological order.
func (s *PatientService) Journey(ctx context.Context, id domain.PatientID) ([]domain.StatusHistoryEvent, error) {
	if _, err := s.getPatient(ctx, id); err != nil {
		return nil, err
	}
	journey, err := s.history.ListByPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list journey: %w", err)
	}
	return journey, nil
}

// PatientFlow groups active patients by department and status, in first-seen order.
func (s *PatientService) PatientFlow(ctx context.Context) ([]FlowGroup, error) {
	active, err := s.ActivePatients(ctx)
	if err != nil {
		return nil, err
	}

	type flowKey struct {
		dept   domain.Department
		status domain.PatientStatus
	}
	keyOf := func(p ActivePatient) flowKey { return flowKey{p.CurrentDepartment, p.CurrentStatus} }
	grouped := lo.GroupBy(active, keyOf)
	keys := lo.Uniq(lo.Map(active, func(p ActivePatient, _ int) flowKey { return keyOf(p) }))

	return lo.Map(keys, func(k flowKey, _ int) FlowGroup {
		members := grouped[k]
		return FlowGroup{
			Department:      k.dept,
			Status:          k.status,
			Count:           len(members),
			AverageWaitTime: averageWaitMinutes(members),
			PatientIDs:      lo.Map(members, func(p ActivePatient, _ int) domain.PatientID { return p.ID }),
		}
	}), nil
}

func (s *PatientService) listActive(ctx context.Context, filter repository.PatientFilter) ([]ActivePatient, error) {
	patients, err := s.patients.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	now := s.clock.Now()
	return lo.Map(patients, func(p domain.Patient, _ int) ActivePatient {
		return ActivePatient{Patient: p, WaitTime: p.WaitTime(now)}
	}), nil
}

func (s *PatientService) getPatient(ctx context.Context, id domain.PatientID) (*domain.Patient, error) {
	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("patient", map[string]any{"patientId": id})
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}
	return patient, nil
}

func (s *PatientService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
