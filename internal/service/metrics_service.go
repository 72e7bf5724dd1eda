package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/repository"
	"github.com/spec-kit/patient-flow/pkg/util/clock"
)

const (
	noCongestedDepartment = "None"
	servedWindow          = time.Hour
	predictionWindow      = 30 * time.Minute
	alertWindow           = time.Hour
	predictionLimit       = 10
	recommendationLimit   = 5
	alertLimit            = 10
)

// MetricsService is the read-only aggregator behind the dashboard.
// It never fails on empty data: every ratio has a zero fallback.
type MetricsService struct {
	store *repository.Store
	clock clock.Clock
}

// DashboardMetrics is the point-in-time headline view.
type DashboardMetrics struct {
	TotalActivePatients     int
	AverageWaitTime         int
	PatientsServedPerHour   int
	MostCongestedDepartment string
	StaffUtilization        int
	ResourceUtilization     int
	DepartmentBreakdown     []DepartmentLoad
}

// DepartmentLoad is one row of the dashboard breakdown.
type DepartmentLoad struct {
	Department   domain.Department
	PatientCount int
	AvgWaitTime  int
}

// DepartmentFlow describes one department's pipeline occupancy.
type DepartmentFlow struct {
	Department      domain.Department
	TotalPatients   int
	StatusBreakdown []StatusCount
	CongestionLevel domain.CongestionLevel
}

// StatusCount counts patients in one status.
type StatusCount struct {
	Status domain.PatientStatus
	Count  int
}

// NewMetricsService constructs the aggregator.
func NewMetricsService(store *repository.Store, clk clock.Clock) *MetricsService {
	if clk == nil {
		clk = clock.System{}
	}
	return &MetricsService{store: store, clock: clk}
}

// DashboardMetrics computes the headline figures at the current instant.
func (s *MetricsService) DashboardMetrics(ctx context.Context) (*DashboardMetrics, error) {
	now := s.clock.Now()
	active, err := s.activePatients(ctx, now, nil)
	if err != nil {
		return nil, err
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

	breakdown := departmentBreakdown(active)
	return &DashboardMetrics{
		TotalActivePatients:     len(active),
		AverageWaitTime:         averageWaitMinutes(active),
		PatientsServedPerHour:   len(discharges),
		MostCongestedDepartment: mostCongested(breakdown),
		StaffUtilization:        staffUtilization(staff),
		ResourceUtilization:     resourceUtilization(resources),
		DepartmentBreakdown:     breakdown,
	}, nil
}

// DepartmentFlow reports every roster department, including empty ones.
func (s *MetricsService) DepartmentFlow(ctx context.Context) ([]DepartmentFlow, error) {
	active, err := s.activePatients(ctx, s.clock.Now(), nil)
	if err != nil {
		return nil, err
	}
	byDept := lo.GroupBy(active, func(p ActivePatient) domain.Department { return p.CurrentDepartment })

	return lo.Map(domain.Departments, func(dept domain.Department, _ int) DepartmentFlow {
		patients := byDept[dept]
		counts := lo.CountValuesBy(patients, func(p ActivePatient) domain.PatientStatus { return p.CurrentStatus })
		return DepartmentFlow{
			Department:    dept,
			TotalPatients: len(patients),
			StatusBreakdown: lo.Map(domain.ActiveStatuses, func(status domain.PatientStatus, _ int) StatusCount {
				return StatusCount{Status: status, Count: counts[status]}
			}),
			CongestionLevel: domain.CongestionFor(len(patients)),
		}
	}), nil
}

// BottleneckPredictions returns predictions due within the next 30 minutes, newest first.
func (s *MetricsService) BottleneckPredictions(ctx context.Context) ([]domain.Prediction, error) {
	now := s.clock.Now()
	until := now.Add(predictionWindow)
	return s.store.Predictions.List(ctx, repository.PredictionFilter{From: &now, To: &until, Limit: predictionLimit})
}

// ActiveRecommendations returns the newest pending recommendations.
func (s *MetricsService) ActiveRecommendations(ctx context.Context) ([]domain.Recommendation, error) {
	pending := domain.RecommendationPending
	return s.store.Recommendations.List(ctx, repository.RecommendationFilter{Status: &pending, Limit: recommendationLimit})
}

// RecentAlerts returns alerts raised within the last hour, newest first.
func (s *MetricsService) RecentAlerts(ctx context.Context) ([]domain.Alert, error) {
	since := s.clock.Now().Add(-alertWindow)
	return s.store.Alerts.List(ctx, repository.AlertFilter{Since: &since, Limit: alertLimit})
}

// Staff lists the roster, optionally narrowed to one department.
func (s *MetricsService) Staff(ctx context.Context, dept *domain.Department) ([]domain.StaffMember, error) {
	return s.store.Staff.List(ctx, repository.StaffFilter{Department: dept})
}

// Resources lists tracked resources, optionally narrowed to one department.
func (s *MetricsService) Resources(ctx context.Context, dept *domain.Department) ([]domain.Resource, error) {
	return s.store.Resources.List(ctx, repository.ResourceFilter{Department: dept})
}

func (s *MetricsService) activePatients(ctx context.Context, now time.Time, dept *domain.Department) ([]ActivePatient, error) {
	patients, err := s.store.Patients.List(ctx, repository.PatientFilter{ActiveOnly: true, Department: dept})
	if err != nil {
		return nil, fmt.Errorf("list active patients: %w", err)
	}
	return lo.Map(patients, func(p domain.Patient, _ int) ActivePatient {
		return ActivePatient{Patient: p, WaitTime: p.WaitTime(now)}
	}), nil
}

func departmentBreakdown(active []ActivePatient) []DepartmentLoad {
	byDept := lo.GroupBy(active, func(p ActivePatient) domain.Department { return p.CurrentDepartment })
	order := lo.Uniq(lo.Map(active, func(p ActivePatient, _ int) domain.Department { return p.CurrentDepartment }))
	return lo.Map(order, func(dept domain.Department, _ int) DepartmentLoad {
		return DepartmentLoad{
			Department:   dept,
			PatientCount: len(byDept[dept]),
			AvgWaitTime:  averageWaitMinutes(byDept[dept]),
		}
	})
}

// mostCongested picks the highest count; the earliest department wins ties.
func mostCongested(breakdown []DepartmentLoad) string {
	if len(breakdown) == 0 {
		return noCongestedDepartment
	}
	top := lo.MaxBy(breakdown, func(a, b DepartmentLoad) bool { return a.PatientCount > b.PatientCount })
	return string(top.Department)
}

// averageWaitMinutes is the mean wait rounded half away from zero; 0 when empty.
func averageWaitMinutes(patients []ActivePatient) int {
	if len(patients) == 0 {
		return 0
	}
	total := lo.SumBy(patients, func(p ActivePatient) float64 { return float64(p.WaitTime.Milliseconds()) })
	return int(math.Round(total / float64(len(patients)) / float64(time.Minute.Milliseconds())))
}

func staffUtilization(staff []domain.StaffMember) int {
	engaged := lo.CountBy(staff, func(s domain.StaffMember) bool { return s.IsEngaged() })
	return percent(engaged, len(staff))
}

func resourceUtilization(resources []domain.Resource) int {
	occupied := lo.CountBy(resources, func(r domain.Resource) bool { return r.Status == domain.ResourceStatusOccupied })
	return percent(occupied, len(resources))
}

// percent is part/whole as a rounded percentage, 0 for an empty whole.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
