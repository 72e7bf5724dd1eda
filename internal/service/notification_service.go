package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/messaging"
	"github.com/spec-kit/patient-flow/internal/observability"
)

// NotificationService logs domain events and forwards them to the configured brokers.
type NotificationService struct {
	dispatcher events.Dispatcher
	publishers []messaging.Publisher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publishers []messaging.Publisher, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publishers: publishers,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes Forward to every event type, synchronously.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.Forward)
}

// Forward logs the event and hands it to every publisher. It never fails the
// publishing operation; broker errors are logged and counted.
func (n *NotificationService) Forward(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))

	if len(n.publishers) == 0 {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("encode event", zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}

	key := event.SubjectID
	if key == "" {
		key = event.ID
	}
	for _, publisher := range n.publishers {
		err := publisher.Publish(ctx, key, body)
		n.metrics.RecordPublish(publisher.Name(), err)
		if err != nil {
			n.logger.Warn("publish event",
				zap.String("broker", publisher.Name()),
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
	return nil
}
