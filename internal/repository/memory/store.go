// Package memory implements the repository interfaces in process memory.
// It backs the service when no database is configured and is used by tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/patient-flow/internal/repository"
)

// NewStore returns a Store whose repositories share nothing but the process.
func NewStore() *repository.Store {
	patients := NewPatientRepository()
	history := NewStatusHistoryRepository()
	return &repository.Store{
		Patients:          patients,
		History:           history,
		Transitions:       NewTransitionRecorder(patients, history),
		Staff:             NewStaffRepository(),
		Resources:         NewResourceRepository(),
		Predictions:       NewPredictionRepository(),
		Recommendations:   NewRecommendationRepository(),
		Alerts:            NewAlertRepository(),
		DepartmentMetrics: NewDepartmentMetricsRepository(),
	}
}

func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// table is a mutex-guarded keyed collection preserving insertion order.
type table[K comparable, V any] struct {
	mu    sync.RWMutex
	order []K
	rows  map[K]V
}

func newTable[K comparable, V any]() *table[K, V] {
	return &table[K, V]{rows: make(map[K]V)}
}

func (t *table[K, V]) insert(key K, row V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rows[key]; exists {
		return false
	}
	t.rows[key] = row
	t.order = append(t.order, key)
	return true
}

func (t *table[K, V]) replace(key K, row V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rows[key]; !exists {
		return false
	}
	t.rows[key] = row
	return true
}

func (t *table[K, V]) get(key K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[key]
	return row, ok
}

func (t *table[K, V]) scan(keep func(V) bool) []V {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]V, 0, len(t.order))
	for _, key := range t.order {
		if row := t.rows[key]; keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[K, V]) clear() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := int64(len(t.rows))
	t.rows = make(map[K]V)
	t.order = nil
	return n
}

func sortNewestFirst[T any](items []T, ts func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return ts(items[i]).After(ts(items[j]))
	})
}

