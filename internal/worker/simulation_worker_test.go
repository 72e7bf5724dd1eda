package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/service"
)

type mockStepper struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

func (s *mockStepper) SimulateStep(context.Context) ([]service.StepMove, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	return nil, s.Err
}

func (s *mockStepper) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls
}

type mockSnapshots struct {
	mu    sync.Mutex
	Calls int
}

func (s *mockSnapshots) CaptureSnapshot(context.Context) ([]domain.DepartmentMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	return nil, nil
}

func TestTickContinuesAfterStepFailure(t *testing.T) {
	stepper := &mockStepper{Err: errors.New("boom")}
	snapshots := &mockSnapshots{}
	w := NewSimulationWorker(stepper, snapshots, time.Second, zap.NewNop())

	w.Tick(context.Background())

	if stepper.Calls != 1 || snapshots.Calls != 1 {
		t.Errorf("expected one step and one snapshot, got %d/%d", stepper.Calls, snapshots.Calls)
	}
}

func TestTickWithoutSnapshots(t *testing.T) {
	stepper := &mockStepper{}
	NewSimulationWorker(stepper, nil, time.Second, zap.NewNop()).Tick(context.Background())
	if stepper.Calls != 1 {
		t.Errorf("expected one step, got %d", stepper.Calls)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	stepper := &mockStepper{}
	w := NewSimulationWorker(stepper, nil, 5*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for stepper.calls() < 2 {
		select {
		case <-deadline:
			t.Fatal("worker never ticked")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRunDisabledInterval(t *testing.T) {
	stepper := &mockStepper{}
	NewSimulationWorker(stepper, nil, 0, zap.NewNop()).Run(context.Background())
	if stepper.Calls != 0 {
		t.Errorf("expected no ticks, got %d", stepper.Calls)
	}
}
