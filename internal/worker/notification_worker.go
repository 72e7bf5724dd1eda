package worker

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/service"
)

const defaultNotificationBuffer = 256

// NotificationWorker moves broker fan-out off the request path. Events are
// queued by a dispatcher handler and forwarded by Run.
type NotificationWorker struct {
	notifications *service.NotificationService
	queue         chan queuedEvent
	dropped       atomic.Int64
	logger        *zap.Logger
}

type queuedEvent struct {
	ctx   context.Context
	event events.Event
}

// NewNotificationWorker builds a worker with a queue of the given size.
func NewNotificationWorker(notifications *service.NotificationService, buffer int, logger *zap.Logger) *NotificationWorker {
	if buffer <= 0 {
		buffer = defaultNotificationBuffer
	}
	return &NotificationWorker{
		notifications: notifications,
		queue:         make(chan queuedEvent, buffer),
		logger:        logger,
	}
}

// StartNotificationWorker subscribes the worker to every event type on
// dispatcher. The caller runs Run.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, buffer int, logger *zap.Logger) *NotificationWorker {
	w := NewNotificationWorker(notifications, buffer, logger)
	dispatcher.SubscribeAll(w.enqueue)
	return w
}

// enqueue never blocks the publisher; a full queue drops the event.
func (w *NotificationWorker) enqueue(ctx context.Context, event events.Event) error {
	select {
	case w.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		w.dropped.Add(1)
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
	}
	return nil
}

// Dropped reports how many events were discarded because the queue was full.
func (w *NotificationWorker) Dropped() int64 {
	return w.dropped.Load()
}

// Run forwards queued events until ctx is cancelled, then flushes what is left.
func (w *NotificationWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return
		case item := <-w.queue:
			_ = w.notifications.Forward(item.ctx, item.event)
		}
	}
}

func (w *NotificationWorker) flush() {
	for {
		select {
		case item := <-w.queue:
			_ = w.notifications.Forward(item.ctx, item.event)
		default:
			if n := w.dropped.Load(); n > 0 {
				w.logger.Warn("notification worker stopped with dropped events", zap.Int64("dropped", n))
			}
			return
		}
	}
}
