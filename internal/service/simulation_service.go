package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/config"
	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/observability"
	"github.com/spec-kit/patient-flow/internal/repository"
	"github.com/spec-kit/patient-flow/pkg/util/clock"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
	"github.com/spec-kit/patient-flow/pkg/util/randutil"
)

var syntheticSymptoms = []string{
	"Fever", "Headache", "Chest Pain", "Shortness of Breath", "Abdominal Pain",
	"Back Pain", "Nausea", "Dizziness", "Fatigue", "Cough",
}

const (
	registrationLookback = 4 * time.Hour
	secondEventSpread    = time.Hour
	secondEventDuration  = 30 * time.Minute
	shiftStartedAgo      = 8 * time.Hour
	shiftEndsIn          = 4 * time.Hour
	simulatedMovers      = 3
	advanceChance        = 0.3
)

// GenerateResult counts the rows written by one synthetic regeneration.
type GenerateResult struct {
	Patients  int
	Events    int
	Staff     int
	Resources int
}

// StepMove records one simulated transition.
type StepMove struct {
	PatientID  domain.PatientID
	FromStatus domain.PatientStatus
	ToStatus   domain.PatientStatus
	Department domain.Department
}

// SimulationService populates demo data and nudges patients along the pipeline.
type SimulationService struct {
	store      *repository.Store
	patients   *PatientService
	cfg        config.SimulationConfig
	rand       randutil.Source
	clock      clock.Clock
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// SimulationDependencies bundles collaborators for the generator.
type SimulationDependencies struct {
	Store      *repository.Store
	Patients   *PatientService
	Config     config.SimulationConfig
	Rand       randutil.Source
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewSimulationService constructs the generator.
func NewSimulationService(deps SimulationDependencies) *SimulationService {
	svc := &SimulationService{
		store:      deps.Store,
		patients:   deps.Patients,
		cfg:        deps.Config,
		rand:       deps.Rand,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
	if svc.rand == nil {
		svc.rand = randutil.New(deps.Config.Seed)
	}
	if svc.clock == nil {
		svc.clock = clock.System{}
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// GenerateSyntheticData replaces patients, journeys, staff and resources with a
// random demo population. Predictions, recommendations and alerts are untouched.
func (s *SimulationService) GenerateSyntheticData(ctx context.Context) (*GenerateResult, error) {
	now := s.clock.Now()
	if _, err := s.store.History.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear history: %w", err)
	}
	if _, err := s.store.Patients.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear patients: %w", err)
	}
	if _, err := s.store.Staff.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear staff: %w", err)
	}
	if _, err := s.store.Resources.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear resources: %w", err)
	}

	result := &GenerateResult{}
	count := randutil.Between(s.rand, s.cfg.PatientsMin, s.cfg.PatientsMax)
	patientIDs := make([]domain.PatientID, 0, count)
	for i := 0; i < count; i++ {
		written, id, err := s.createPatient(ctx, i, now)
		if err != nil {
			return result, err
		}
		result.Patients++
		result.Events += written
		patientIDs = append(patientIDs, id)
	}
	for i := 0; i < s.cfg.StaffCount; i++ {
		if err := s.store.Staff.Create(ctx, s.randomStaff(i, now)); err != nil {
			return result, fmt.Errorf("create staff: %w", err)
		}
		result.Staff++
	}
	for i := 0; i < s.cfg.ResourceCount; i++ {
		if err := s.store.Resources.Create(ctx, s.randomResource(i, patientIDs)); err != nil {
			return result, fmt.Errorf("create resource: %w", err)
		}
		result.Resources++
	}

	s.metrics.RecordRegeneration("synthetic")
	s.logger.Info("synthetic data generated",
		zap.Int("patients", result.Patients),
		zap.Int("events", result.Events),
		zap.Int("staff", result.Staff),
		zap.Int("resources", result.Resources))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventSyntheticDataGenerated, "", now, events.SyntheticDataGeneratedPayload{
		Patients:  result.Patients,
		Events:    result.Events,
		Staff:     result.Staff,
		Resources: result.Resources,
	}))
	return result, nil
}

// SimulateStep advances each of the first few active patients to the next
// status with a fixed probability, into a random department.
func (s *SimulationService) SimulateStep(ctx context.Context) ([]StepMove, error) {
	active, err := s.patients.ActivePatients(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) > simulatedMovers {
		active = active[:simulatedMovers]
	}

	var moves []StepMove
	for _, p := range active {
		next, ok := p.CurrentStatus.Next()
		if !ok || !randutil.Chance(s.rand, advanceChance) {
			continue
		}
		dept := randutil.Pick(s.rand, domain.Departments)
		_, _, err := s.patients.Transition(ctx, TransitionInput{PatientID: p.ID, Status: next, Department: &dept})
		if err != nil {
			// another writer discharged or removed the patient since the listing
			if apperrors.IsConflict(err) || apperrors.IsNotFound(err) {
				continue
			}
			return moves, err
		}
		moves = append(moves, StepMove{PatientID: p.ID, FromStatus: p.CurrentStatus, ToStatus: next, Department: dept})
	}
	return moves, nil
}

func (s *SimulationService) createPatient(ctx context.Context, i int, now time.Time) (int, domain.PatientID, error) {
	registered := now.Add(-randomDuration(s.rand, registrationLookback))
	status := randutil.Pick(s.rand, domain.ActiveStatuses)
	dept := randutil.Pick(s.rand, domain.Departments)
	patient := &domain.Patient{
		ID:                NewPatientID(now),
		Name:              fmt.Sprintf("Patient %d", i+1),
		Age:               randutil.Between(s.rand, 20, 80),
		CurrentStatus:     status,
		CurrentDepartment: dept,
		RegistrationTime:  registered,
		Priority:          randutil.Pick(s.rand, domain.Priorities),
		Symptoms:          []string{randutil.Pick(s.rand, syntheticSymptoms)},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Patients.Create(ctx, patient); err != nil {
		return 0, "", fmt.Errorf("create patient: %w", err)
	}

	if err := s.store.History.Create(ctx, &domain.StatusHistoryEvent{
		PatientID:  patient.ID,
		ToStatus:   domain.PatientStatusRegistration,
		Department: domain.DepartmentReception,
		Timestamp:  registered,
	}); err != nil {
		return 0, "", fmt.Errorf("create history: %w", err)
	}
	if status == domain.PatientStatusRegistration {
		return 1, patient.ID, nil
	}

	at := registered.Add(randomDuration(s.rand, secondEventSpread))
	if at.After(now) {
		at = now
	}
	from := domain.PatientStatusRegistration
	duration := randomDuration(s.rand, secondEventDuration)
	stage := at.Sub(registered)
	if err := s.store.History.Create(ctx, &domain.StatusHistoryEvent{
		PatientID:     patient.ID,
		FromStatus:    &from,
		ToStatus:      status,
		Department:    dept,
		Timestamp:     at,
		Duration:      &duration,
		StageDuration: &stage,
	}); err != nil {
		return 1, "", fmt.Errorf("create history: %w", err)
	}
	return 2, patient.ID, nil
}

func (s *SimulationService) randomStaff(i int, now time.Time) *domain.StaffMember {
	return &domain.StaffMember{
		ID:                  domain.StaffID(fmt.Sprintf("S%03d", i)),
		Name:                fmt.Sprintf("Staff Member %d", i+1),
		Role:                randutil.Pick(s.rand, domain.StaffRoles),
		Department:          randutil.Pick(s.rand, domain.Departments),
		Status:              randutil.Pick(s.rand, domain.StaffStatuses),
		CurrentPatientCount: s.rand.Intn(5),
		MaxCapacity:         randutil.Between(s.rand, 3, 6),
		ShiftStart:          now.Add(-shiftStartedAgo),
		ShiftEnd:            now.Add(shiftEndsIn),
	}
}

func (s *SimulationService) randomResource(i int, patientIDs []domain.PatientID) *domain.Resource {
	resource := &domain.Resource{
		ID:              domain.ResourceID(fmt.Sprintf("R%03d", i)),
		Name:            fmt.Sprintf("Resource %d", i+1),
		Type:            randutil.Pick(s.rand, domain.ResourceTypes),
		Department:      randutil.Pick(s.rand, domain.Departments),
		Status:          randutil.Pick(s.rand, domain.ResourceStatuses),
		Capacity:        randutil.Between(s.rand, 1, 5),
		UtilizationRate: s.rand.Intn(100),
	}
	if resource.Status == domain.ResourceStatusOccupied && len(patientIDs) > 0 {
		id := randutil.Pick(s.rand, patientIDs)
		resource.CurrentPatientID = &id
	}
	return resource
}

// randomDuration is uniform in [0, max) at millisecond resolution.
func randomDuration(src randutil.Source, max time.Duration) time.Duration {
	return time.Duration(src.Intn(int(max.Milliseconds()))) * time.Millisecond
}
