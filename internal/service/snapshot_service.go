package service

import (
	"context"
	"fmt"
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

const defaultSnapshotLimit = 60

// SnapshotArchiver stores a captured batch outside the database.
type SnapshotArchiver interface {
	Archive(ctx context.Context, capturedAt time.Time, batch []domain.DepartmentMetrics) (key string, err error)
}

// SnapshotService persists per-department KPI rows for trend views.
type SnapshotService struct {
	store      *repository.Store
	archiver   SnapshotArchiver
	clock      clock.Clock
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// SnapshotDependencies bundles collaborators for the snapshot service.
type SnapshotDependencies struct {
	Store      *repository.Store
	Archiver   SnapshotArchiver
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewSnapshotService constructs the service. Archiver may be nil.
func NewSnapshotService(deps SnapshotDependencies) *SnapshotService {
	svc := &SnapshotService{
		store:      deps.Store,
		archiver:   deps.Archiver,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
	if svc.clock == nil {
		svc.clock = clock.System{}
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// CaptureSnapshot writes one DepartmentMetrics row per roster department.
// Archive failures are logged; the rows are already persisted by then.
func (s *SnapshotService) CaptureSnapshot(ctx context.Context) ([]domain.DepartmentMetrics, error) {
	now := s.clock.Now()
	patients, err := s.store.Patients.List(ctx, repository.PatientFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list active patients: %w", err)
	}
	since := now.Add(-servedWindow)
	discharge := domain.PatientStatusDischarge
	discharges, err := s.store.History.List(ctx, repository.HistoryFilter{ToStatus: &discharge, From: &since})
	if err != nil {
		return nil, fmt.Errorf("list discharges: %w", err)
	}
	staff, err := s.store.Staff.List(ctx, repository.StaffFilter{})
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	resources, err := s.store.Resources.List(ctx, repository.ResourceFilter{})
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	active := lo.Map(patients, func(p domain.Patient, _ int) ActivePatient {
		return ActivePatient{Patient: p, WaitTime: p.WaitTime(now)}
	})
	patientsBy := lo.GroupBy(active, func(p ActivePatient) domain.Department { return p.CurrentDepartment })
	servedBy := lo.CountValuesBy(discharges, func(e domain.StatusHistoryEvent) domain.Department { return e.Department })
	staffBy := lo.GroupBy(staff, func(m domain.StaffMember) domain.Department { return m.Department })
	resourcesBy := lo.GroupBy(resources, func(r domain.Resource) domain.Department { return r.Department })

	batch := make([]domain.DepartmentMetrics, 0, len(domain.Departments))
	for _, dept := range domain.Departments {
		row := domain.DepartmentMetrics{
			Department:            dept,
			Timestamp:             now,
			PatientsWaiting:       len(patientsBy[dept]),
			AverageWaitTime:       averageWaitMinutes(patientsBy[dept]),
			PatientsServedPerHour: servedBy[dept],
			OccupancyRate:         resourceUtilization(resourcesBy[dept]),
			StaffUtilization:      staffUtilization(staffBy[dept]),
			CongestionLevel:       domain.CongestionFor(len(patientsBy[dept])),
		}
		if err := s.store.DepartmentMetrics.Create(ctx, &row); err != nil {
			return batch, fmt.Errorf("create department metrics: %w", err)
		}
		batch = append(batch, row)
	}

	var archiveKey string
	if s.archiver != nil {
		archiveKey, err = s.archiver.Archive(ctx, now, batch)
		if err != nil {
			s.logger.Warn("archive snapshot", zap.Error(err))
		}
	}

	s.metrics.RecordRegeneration("snapshot")
	s.logger.Debug("department snapshot captured", zap.Int("departments", len(batch)), zap.String("archive_key", archiveKey))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventDepartmentSnapshotTaken, "", now, events.SnapshotCapturedPayload{
		Departments: len(batch),
		ArchiveKey:  archiveKey,
	}))
	return batch, nil
}

// ListSnapshots returns stored rows newest first, optionally for one department.
func (s *SnapshotService) ListSnapshots(ctx context.Context, dept *domain.Department, limit int) ([]domain.DepartmentMetrics, error) {
	if dept != nil && !dept.Valid() {
		return nil, apperrors.NewValidationError("unknown department", map[string]any{"department": *dept})
	}
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}
	return s.store.DepartmentMetrics.List(ctx, repository.DepartmentMetricsFilter{Department: dept, Limit: limit})
}
