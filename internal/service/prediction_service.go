package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/observability"
	"github.com/spec-kit/patient-flow/internal/repository"
	"github.com/spec-kit/patient-flow/pkg/util/clock"
	"github.com/spec-kit/patient-flow/pkg/util/randutil"
)

// RuleTable holds every threshold and text the emitter uses.
type RuleTable struct {
	QueueBuildupAbove     int
	HighPriorityAbove     int
	QueueValueJitter      int
	QueueConfidenceMin    float64
	QueueConfidenceSpread float64
	QueueHorizon          time.Duration
	QueueFactors          []string

	OverloadConfidence float64
	OverloadHorizon    time.Duration
	OverloadFactors    []string

	Actions           []string
	DescriptionFormat string
	EstimatedImpact   string

	AlertCount         int
	AlertWindow        time.Duration
	AlertTypes         []string
	AlertMessage       string
	AcknowledgedChance float64
}

// DefaultRules mirrors the demo dashboard's advisory feed.
func DefaultRules() RuleTable {
	return RuleTable{
		QueueBuildupAbove:     5,
		HighPriorityAbove:     8,
		QueueValueJitter:      5,
		QueueConfidenceMin:    0.7,
		QueueConfidenceSpread: 0.2,
		QueueHorizon:          15 * time.Minute,
		QueueFactors:          []string{"High patient volume", "Limited staff availability"},

		OverloadConfidence: 0.8,
		OverloadHorizon:    20 * time.Minute,
		OverloadFactors:    []string{"Current staff overload", "Increasing patient arrivals"},

		Actions: []string{
			"Open additional consultation room",
			"Call backup staff",
			"Redirect non-urgent patients",
			"Implement fast-track for simple cases",
		},
		DescriptionFormat: "%s is experiencing high patient volume. Immediate action recommended.",
		EstimatedImpact:   "Reduce wait time by 15-20 minutes",

		AlertCount:         5,
		AlertWindow:        time.Hour,
		AlertTypes:         []string{"High Wait Time", "Staff Shortage", "Equipment Maintenance", "System Update"},
		AlertMessage:       "Alert %d: System notification for operational awareness",
		AcknowledgedChance: 0.5,
	}
}

// RegenerateResult counts what one run wrote.
type RegenerateResult struct {
	Predictions     int
	Recommendations int
	Alerts          int
}

// PredictionService emits rule-based predictions, recommendations and alerts.
// It is not a forecasting model: every run replaces the previous output wholesale.
type PredictionService struct {
	store      *repository.Store
	rules      RuleTable
	rand       randutil.Source
	clock      clock.Clock
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// PredictionDependencies bundles collaborators for the emitter.
type PredictionDependencies struct {
	Store      *repository.Store
	Rules      RuleTable
	Rand       randutil.Source
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewPredictionService constructs the emitter.
func NewPredictionService(deps PredictionDependencies) *PredictionService {
	svc := &PredictionService{
		store:      deps.Store,
		rules:      deps.Rules,
		rand:       deps.Rand,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
	if svc.rand == nil {
		svc.rand = randutil.New(0)
	}
	if svc.clock == nil {
		svc.clock = clock.System{}
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Regenerate deletes all predictions, recommendations and alerts and writes a
// fresh set. It is not transactional: an error part-way leaves a mixed store
// and the caller should run it again.
func (s *PredictionService) Regenerate(ctx context.Context) (*RegenerateResult, error) {
	now := s.clock.Now()
	if _, err := s.store.Predictions.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear predictions: %w", err)
	}
	if _, err := s.store.Recommendations.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear recommendations: %w", err)
	}
	if _, err := s.store.Alerts.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear alerts: %w", err)
	}

	result := &RegenerateResult{}
	for _, dept := range domain.Departments {
		if err := s.emitForDepartment(ctx, dept, now, result); err != nil {
			return result, err
		}
	}
	for i := 0; i < s.rules.AlertCount; i++ {
		if err := s.store.Alerts.Create(ctx, s.randomAlert(i, now)); err != nil {
			return result, fmt.Errorf("create alert: %w", err)
		}
		result.Alerts++
	}

	s.metrics.RecordRegeneration("predictions")
	s.logger.Info("predictions regenerated",
		zap.Int("predictions", result.Predictions),
		zap.Int("recommendations", result.Recommendations),
		zap.Int("alerts", result.Alerts))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventPredictionsGenerated, "", now, events.PredictionsGeneratedPayload{
		Predictions:     result.Predictions,
		Recommendations: result.Recommendations,
		Alerts:          result.Alerts,
	}))
	return result, nil
}

func (s *PredictionService) emitForDepartment(ctx context.Context, dept domain.Department, now time.Time, result *RegenerateResult) error {
	patients, err := s.store.Patients.List(ctx, repository.PatientFilter{ActiveOnly: true, Department: &dept})
	if err != nil {
		return fmt.Errorf("list %s patients: %w", dept, err)
	}
	load := len(patients)

	if load > s.rules.QueueBuildupAbove {
		prediction := &domain.Prediction{
			ID:             newRecordID(),
			Department:     dept,
			Timestamp:      now.Add(s.rules.QueueHorizon),
			Type:           domain.PredictionQueueBuildup,
			PredictedValue: load + s.rand.Intn(s.rules.QueueValueJitter),
			Confidence:     s.rules.QueueConfidenceMin + s.rand.Float64()*s.rules.QueueConfidenceSpread,
			TimeHorizon:    int(s.rules.QueueHorizon / time.Minute),
			Factors:        append([]string(nil), s.rules.QueueFactors...),
		}
		if err := s.store.Predictions.Create(ctx, prediction); err != nil {
			return fmt.Errorf("create prediction: %w", err)
		}
		result.Predictions++

		priority := domain.PriorityMedium
		if load > s.rules.HighPriorityAbove {
			priority = domain.PriorityHigh
		}
		recommendation := &domain.Recommendation{
			ID:              newRecordID(),
			Department:      dept,
			Timestamp:       now,
			Type:            domain.RecommendationStaffAllocation,
			Priority:        priority,
			Action:          randutil.Pick(s.rand, s.rules.Actions),
			Description:     fmt.Sprintf(s.rules.DescriptionFormat, dept),
			EstimatedImpact: s.rules.EstimatedImpact,
			Status:          domain.RecommendationPending,
		}
		if err := s.store.Recommendations.Create(ctx, recommendation); err != nil {
			return fmt.Errorf("create recommendation: %w", err)
		}
		result.Recommendations++
	}

	overloaded := domain.StaffStatusOverloaded
	staff, err := s.store.Staff.List(ctx, repository.StaffFilter{Department: &dept, Status: &overloaded})
	if err != nil {
		return fmt.Errorf("list %s staff: %w", dept, err)
	}
	if len(staff) > 0 {
		prediction := &domain.Prediction{
			ID:             newRecordID(),
			Department:     dept,
			Timestamp:      now.Add(s.rules.OverloadHorizon),
			Type:           domain.PredictionStaffOverload,
			PredictedValue: len(staff) + 1,
			Confidence:     s.rules.OverloadConfidence,
			TimeHorizon:    int(s.rules.OverloadHorizon / time.Minute),
			Factors:        append([]string(nil), s.rules.OverloadFactors...),
		}
		if err := s.store.Predictions.Create(ctx, prediction); err != nil {
			return fmt.Errorf("create prediction: %w", err)
		}
		result.Predictions++
	}
	return nil
}

func (s *PredictionService) randomAlert(i int, now time.Time) *domain.Alert {
	return &domain.Alert{
		ID:           newRecordID(),
		Department:   randutil.Pick(s.rand, domain.Departments),
		Timestamp:    now.Add(-time.Duration(s.rand.Intn(int(s.rules.AlertWindow.Milliseconds()))) * time.Millisecond),
		Severity:     randutil.Pick(s.rand, domain.AlertSeverities),
		Type:         randutil.Pick(s.rand, s.rules.AlertTypes),
		Message:      fmt.Sprintf(s.rules.AlertMessage, i+1),
		Acknowledged: randutil.Chance(s.rand, s.rules.AcknowledgedChance),
	}
}
