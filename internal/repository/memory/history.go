package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/repository"
)

type statusHistoryRepository struct {
	mu     sync.RWMutex
	seq    int64
	events []domain.StatusHistoryEvent
}

// NewStatusHistoryRepository returns an empty in-memory event store.
func NewStatusHistoryRepository() repository.StatusHistoryRepository {
	return &statusHistoryRepository{}
}

func (r *statusHistoryRepository) Create(_ context.Context, event *domain.StatusHistoryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	event.ID = r.seq
	r.events = append(r.events, *event)
	return nil
}

func (r *statusHistoryRepository) ListByPatient(_ context.Context, patientID domain.PatientID) ([]domain.StatusHistoryEvent, error) {
	return r.filter(func(e domain.StatusHistoryEvent) bool { return e.PatientID == patientID }), nil
}

func (r *statusHistoryRepository) LatestByPatient(ctx context.Context, patientID domain.PatientID) (*domain.StatusHistoryEvent, error) {
	events, _ := r.ListByPatient(ctx, patientID)
	if len(events) == 0 {
		return nil, repository.ErrNotFound
	}
	latest := events[len(events)-1]
	return &latest, nil
}

func (r *statusHistoryRepository) List(_ context.Context, filter repository.HistoryFilter) ([]domain.StatusHistoryEvent, error) {
	return r.filter(func(e domain.StatusHistoryEvent) bool {
		if filter.ToStatus != nil && e.ToStatus != *filter.ToStatus {
			return false
		}
		if filter.Department != nil && e.Department != *filter.Department {
			return false
		}
		return inWindow(e.Timestamp, filter.From, filter.To)
	}), nil
}

func (r *statusHistoryRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.events))
	r.events = nil
	return n, nil
}

func (r *statusHistoryRepository) filter(keep func(domain.StatusHistoryEvent) bool) []domain.StatusHistoryEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.StatusHistoryEvent
	for _, e := range r.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
