package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/repository"
	"github.com/spec-kit/patient-flow/pkg/util/clock"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

// AdvisoryService moves recommendations and alerts through their lifecycle.
//
//	Recommendation: Pending -> Implemented | Dismissed
//	Alert:          unacknowledged -> acknowledged
//
// Any other transition is a conflict.
type AdvisoryService struct {
	recommendations repository.RecommendationRepository
	alerts          repository.AlertRepository
	locker          Locker
	clock           clock.Clock
	dispatcher      events.Dispatcher
	logger          *zap.Logger
}

// NewAdvisoryService constructs the service.
func NewAdvisoryService(store *repository.Store, locker Locker, clk clock.Clock, dispatcher events.Dispatcher, logger *zap.Logger) *AdvisoryService {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvisoryService{
		recommendations: store.Recommendations,
		alerts:          store.Alerts,
		locker:          locker,
		clock:           clk,
		dispatcher:      dispatcher,
		logger:          logger,
	}
}

// ImplementRecommendation marks a pending recommendation as carried out.
func (s *AdvisoryService) ImplementRecommendation(ctx context.Context, id string) (*domain.Recommendation, error) {
	return s.resolveRecommendation(ctx, id, domain.RecommendationImplemented)
}

// DismissRecommendation rejects a pending recommendation.
func (s *AdvisoryService) DismissRecommendation(ctx context.Context, id string) (*domain.Recommendation, error) {
	return s.resolveRecommendation(ctx, id, domain.RecommendationDismissed)
}

func (s *AdvisoryService) resolveRecommendation(ctx context.Context, id string, target domain.RecommendationStatus) (*domain.Recommendation, error) {
	unlock, err := s.locker.Lock(ctx, "recommendation:"+id)
	if err != nil {
		return nil, fmt.Errorf("lock recommendation %s: %w", id, err)
	}
	defer unlock()

	rec, err := s.recommendations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("recommendation", map[string]any{"id": id})
		}
		return nil, fmt.Errorf("load recommendation: %w", err)
	}
	if rec.Status != domain.RecommendationPending {
		return nil, apperrors.NewConflict("recommendation is no longer pending", map[string]any{
			"id":     id,
			"status": rec.Status,
		})
	}

	now := s.clock.Now()
	rec.Status = target
	if target == domain.RecommendationImplemented {
		rec.ImplementedAt = &now
	}
	if err := s.recommendations.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update recommendation: %w", err)
	}

	s.logger.Info("recommendation resolved",
		zap.String("recommendation_id", id),
		zap.String("status", string(target)),
		zap.String("department", string(rec.Department)))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventRecommendationUpdated, id, now, events.RecommendationUpdatedPayload{
		Department: rec.Department,
		Status:     target,
	}))
	return rec, nil
}

// AcknowledgeAlert records who acknowledged an alert and when.
func (s *AdvisoryService) AcknowledgeAlert(ctx context.Context, id, by string) (*domain.Alert, error) {
	by = strings.TrimSpace(by)
	if by == "" {
		return nil, apperrors.NewValidationError("acknowledgedBy is required", nil)
	}

	unlock, err := s.locker.Lock(ctx, "alert:"+id)
	if err != nil {
		return nil, fmt.Errorf("lock alert %s: %w", id, err)
	}
	defer unlock()

	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("alert", map[string]any{"id": id})
		}
		return nil, fmt.Errorf("load alert: %w", err)
	}
	if alert.Acknowledged {
		return nil, apperrors.NewConflict("alert already acknowledged", map[string]any{"id": id})
	}

	now := s.clock.Now()
	alert.Acknowledged = true
	alert.AcknowledgedBy = &by
	alert.AcknowledgedAt = &now
	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, fmt.Errorf("update alert: %w", err)
	}

	s.logger.Info("alert acknowledged", zap.String("alert_id", id), zap.String("by", by))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventAlertAcknowledged, id, now, events.AlertAcknowledgedPayload{
		Department:     alert.Department,
		AcknowledgedBy: by,
	}))
	return alert, nil
}
