package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/service"
)

// Stepper advances the simulated floor by one tick.
type Stepper interface {
	SimulateStep(ctx context.Context) ([]service.StepMove, error)
}

// SnapshotTaker captures department metrics.
type SnapshotTaker interface {
	CaptureSnapshot(ctx context.Context) ([]domain.DepartmentMetrics, error)
}

// SimulationWorker moves patients and records snapshots on a fixed interval.
type SimulationWorker struct {
	stepper   Stepper
	snapshots SnapshotTaker
	interval  time.Duration
	logger    *zap.Logger
}

// NewSimulationWorker builds the worker. snapshots may be nil.
func NewSimulationWorker(stepper Stepper, snapshots SnapshotTaker, interval time.Duration, logger *zap.Logger) *SimulationWorker {
	return &SimulationWorker{stepper: stepper, snapshots: snapshots, interval: interval, logger: logger}
}

// Run ticks until ctx is cancelled. A non-positive interval returns immediately.
func (w *SimulationWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("simulation worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("simulation worker stopped")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick performs one step and one snapshot. Failures are logged, never fatal.
func (w *SimulationWorker) Tick(ctx context.Context) {
	moves, err := w.stepper.SimulateStep(ctx)
	if err != nil {
		w.logger.Warn("simulation step failed", zap.Error(err))
	} else if len(moves) > 0 {
		w.logger.Debug("simulation step", zap.Int("moves", len(moves)))
	}
	if w.snapshots == nil {
		return
	}
	if _, err := w.snapshots.CaptureSnapshot(ctx); err != nil {
		w.logger.Warn("snapshot capture failed", zap.Error(err))
	}
}
