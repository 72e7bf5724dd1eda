package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/repository"
	"github.com/spec-kit/patient-flow/pkg/util/randutil"
)

// flakyPredictionRepository fails Create after FailAfter successful calls.
type flakyPredictionRepository struct {
	repository.PredictionRepository
	mu          sync.Mutex
	FailAfter   int
	CreateErr   error
	CreateCalls int
}

func (r *flakyPredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	r.mu.Lock()
	r.CreateCalls++
	calls := r.CreateCalls
	r.mu.Unlock()
	if r.CreateErr != nil && calls > r.FailAfter {
		return r.CreateErr
	}
	return r.PredictionRepository.Create(ctx, p)
}

func newPredictionService(f *fixture, seed int64) *PredictionService {
	return NewPredictionService(PredictionDependencies{
		Store:      f.store,
		Rules:      DefaultRules(),
		Rand:       randutil.New(seed),
		Clock:      f.clock,
		Dispatcher: f.dispatcher,
	})
}

func TestRegenerateCongestedDepartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 11; i++ {
		f.seedPatient(t, fmt.Sprintf("P%02d", i), domain.DepartmentOPD, domain.PatientStatusWaiting, time.Minute)
	}
	f.seedStaff(t, "S1", domain.DepartmentOPD, domain.StaffStatusBusy)

	result, err := newPredictionService(f, 42).Regenerate(ctx)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if result.Predictions != 1 || result.Recommendations != 1 || result.Alerts != 5 {
		t.Fatalf("unexpected counts %+v", result)
	}

	predictions, err := f.store.Predictions.List(ctx, repository.PredictionFilter{})
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	if len(predictions) != 1 {
		t.Fatalf("expected 1 prediction, got %d", len(predictions))
	}
	p := predictions[0]
	if p.Type != domain.PredictionQueueBuildup || p.Department != domain.DepartmentOPD {
		t.Errorf("expected OPD queue_buildup, got %s/%s", p.Department, p.Type)
	}
	if p.PredictedValue < 11 || p.PredictedValue > 15 {
		t.Errorf("predicted value %d outside [11,15]", p.PredictedValue)
	}
	if p.Confidence < 0.7 || p.Confidence >= 0.9 {
		t.Errorf("confidence %f outside [0.7,0.9)", p.Confidence)
	}
	if p.TimeHorizon != 15 || !p.Timestamp.Equal(testNow.Add(15*time.Minute)) {
		t.Errorf("unexpected horizon %d at %s", p.TimeHorizon, p.Timestamp)
	}

	recs, err := f.store.Recommendations.List(ctx, repository.RecommendationFilter{})
	if err != nil {
		t.Fatalf("list recommendations: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].Priority != domain.PriorityHigh || recs[0].Status != domain.RecommendationPending {
		t.Errorf("expected High/Pending, got %s/%s", recs[0].Priority, recs[0].Status)
	}
	if recs[0].Description != "OPD is experiencing high patient volume. Immediate action recommended." {
		t.Errorf("unexpected description %q", recs[0].Description)
	}

	alerts, err := f.store.Alerts.List(ctx, repository.AlertFilter{})
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	for _, a := range alerts {
		if a.Timestamp.After(testNow) || a.Timestamp.Before(testNow.Add(-time.Hour)) {
			t.Errorf("alert %s outside the last hour: %s", a.ID, a.Timestamp)
		}
	}

	last := f.dispatcher.Types()
	if len(last) == 0 || last[len(last)-1] != events.EventPredictionsGenerated {
		t.Errorf("expected predictions_generated event, got %v", last)
	}
}

func TestRegenerateThresholds(t *testing.T) {
	tests := []struct {
		name         string
		patients     int
		overloaded   int
		wantPreds    int
		wantRecs     int
		wantPriority domain.Priority
	}{
		{"quiet department", 5, 0, 0, 0, ""},
		{"just over queue threshold", 6, 0, 1, 1, domain.PriorityMedium},
		{"at high priority threshold", 8, 0, 1, 1, domain.PriorityMedium},
		{"over high priority threshold", 9, 0, 1, 1, domain.PriorityHigh},
		{"overloaded staff only", 0, 2, 1, 0, ""},
		{"both rules", 7, 1, 2, 1, domain.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			for i := 0; i < tt.patients; i++ {
				f.seedPatient(t, fmt.Sprintf("P%02d", i), domain.DepartmentRadiology, domain.PatientStatusWaiting, time.Minute)
			}
			for i := 0; i < tt.overloaded; i++ {
				f.seedStaff(t, fmt.Sprintf("S%02d", i), domain.DepartmentRadiology, domain.StaffStatusOverloaded)
			}

			result, err := newPredictionService(f, 1).Regenerate(ctx)
			if err != nil {
				t.Fatalf("regenerate: %v", err)
			}
			if result.Predictions != tt.wantPreds || result.Recommendations != tt.wantRecs {
				t.Fatalf("expected %d/%d, got %+v", tt.wantPreds, tt.wantRecs, result)
			}
			if tt.wantRecs > 0 {
				recs, _ := f.store.Recommendations.List(ctx, repository.RecommendationFilter{})
				if recs[0].Priority != tt.wantPriority {
					t.Errorf("expected priority %s, got %s", tt.wantPriority, recs[0].Priority)
				}
			}
			if tt.overloaded > 0 {
				preds, _ := f.store.Predictions.List(ctx, repository.PredictionFilter{})
				var found bool
				for _, p := range preds {
					if p.Type == domain.PredictionStaffOverload {
						found = true
						if p.PredictedValue != tt.overloaded+1 || p.Confidence != 0.8 || p.TimeHorizon != 20 {
							t.Errorf("unexpected staff_overload prediction %+v", p)
						}
					}
				}
				if !found {
					t.Error("expected a staff_overload prediction")
				}
			}
		})
	}
}

func TestRegenerateReplacesPreviousRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		f.seedPatient(t, fmt.Sprintf("P%02d", i), domain.DepartmentPharmacy, domain.PatientStatusWaiting, time.Minute)
	}
	svc := newPredictionService(f, 3)

	first, err := svc.Regenerate(ctx)
	if err != nil {
		t.Fatalf("first regenerate: %v", err)
	}
	firstRecs, _ := f.store.Recommendations.List(ctx, repository.RecommendationFilter{})

	second, err := svc.Regenerate(ctx)
	if err != nil {
		t.Fatalf("second regenerate: %v", err)
	}
	if *first != *second {
		t.Errorf("expected identical counts, got %+v then %+v", first, second)
	}

	preds, _ := f.store.Predictions.List(ctx, repository.PredictionFilter{})
	recs, _ := f.store.Recommendations.List(ctx, repository.RecommendationFilter{})
	alerts, _ := f.store.Alerts.List(ctx, repository.AlertFilter{})
	if len(preds) != second.Predictions || len(recs) != second.Recommendations || len(alerts) != second.Alerts {
		t.Errorf("store holds %d/%d/%d, expected %+v", len(preds), len(recs), len(alerts), second)
	}
	if recs[0].ID == firstRecs[0].ID {
		t.Errorf("previous recommendation %s survived regeneration", recs[0].ID)
	}
}

func TestRegenerateStopsOnStoreFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, dept := range []domain.Department{domain.DepartmentReception, domain.DepartmentOPD} {
		for i := 0; i < 6; i++ {
			f.seedPatient(t, fmt.Sprintf("%s-%d", dept, i), dept, domain.PatientStatusWaiting, time.Minute)
		}
	}
	flaky := &flakyPredictionRepository{
		PredictionRepository: f.store.Predictions,
		FailAfter:            1,
		CreateErr:            errors.New("disk full"),
	}
	f.store.Predictions = flaky

	result, err := newPredictionService(f, 9).Regenerate(ctx)
	if err == nil {
		t.Fatal("expected an error")
	}
	if result == nil || result.Predictions != 1 || result.Recommendations != 1 {
		t.Errorf("expected the partial result of the first department, got %+v", result)
	}
	if flaky.CreateCalls != 2 {
		t.Errorf("expected 2 create calls, got %d", flaky.CreateCalls)
	}
	for _, ev := range f.dispatcher.Types() {
		if ev == events.EventPredictionsGenerated {
			t.Error("failed run must not announce predictions")
		}
	}
}

func TestRegenerateAlertCountFromRules(t *testing.T) {
	f := newFixture(t)
	rules := DefaultRules()
	rules.AlertCount = 0
	svc := NewPredictionService(PredictionDependencies{Store: f.store, Rules: rules, Rand: randutil.New(5), Clock: f.clock})

	result, err := svc.Regenerate(context.Background())
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if result.Alerts != 0 {
		t.Errorf("expected no alerts, got %d", result.Alerts)
	}
}
