package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/repository"
	"github.com/spec-kit/patient-flow/internal/repository/memory"
	"github.com/spec-kit/patient-flow/pkg/util/clock"
)

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu         sync.Mutex
	published  []events.Event
	PublishErr error
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return d.PublishErr
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) SubscribeAll(events.EventHandler) {}

func (d *recordingDispatcher) Types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *repository.Store
	clock      *clock.Fixed
	dispatcher *recordingDispatcher
	patients   *PatientService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewStore(),
		clock:      clock.NewFixed(testNow),
		dispatcher: &recordingDispatcher{},
	}
	f.patients = NewPatientService(PatientDependencies{
		Store:      f.store,
		Clock:      f.clock,
		Dispatcher: f.dispatcher,
	})
	return f
}

// seedPatient inserts an active patient directly, registered `waited` before now.
func (f *fixture) seedPatient(t *testing.T, id string, dept domain.Department, status domain.PatientStatus, waited time.Duration) {
	t.Helper()
	registered := f.clock.Now().Add(-waited)
	err := f.store.Patients.Create(context.Background(), &domain.Patient{
		ID:                domain.PatientID(id),
		Name:              id,
		Age:               40,
		CurrentStatus:     status,
		CurrentDepartment: dept,
		RegistrationTime:  registered,
		Priority:          domain.PriorityMedium,
		Symptoms:          []string{"Cough"},
		CreatedAt:         registered,
	})
	if err != nil {
		t.Fatalf("seed patient %s: %v", id, err)
	}
}

func (f *fixture) seedStaff(t *testing.T, id string, dept domain.Department, status domain.StaffStatus) {
	t.Helper()
	err := f.store.Staff.Create(context.Background(), &domain.StaffMember{
		ID:                  domain.StaffID(id),
		Name:                id,
		Role:                domain.StaffRoleNurse,
		Department:          dept,
		Status:              status,
		CurrentPatientCount: 1,
		MaxCapacity:         4,
		ShiftStart:          f.clock.Now().Add(-time.Hour),
		ShiftEnd:            f.clock.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("seed staff %s: %v", id, err)
	}
}

func (f *fixture) seedResource(t *testing.T, id string, dept domain.Department, status domain.ResourceStatus) {
	t.Helper()
	err := f.store.Resources.Create(context.Background(), &domain.Resource{
		ID:         domain.ResourceID(id),
		Name:       id,
		Type:       domain.ResourceTypeBed,
		Department: dept,
		Status:     status,
		Capacity:   1,
	})
	if err != nil {
		t.Fatalf("seed resource %s: %v", id, err)
	}
}

func deptPtr(d domain.Department) *domain.Department { return &d }
