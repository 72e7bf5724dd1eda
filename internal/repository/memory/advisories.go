package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/repository"
)

type predictionRepository struct {
	rows *table[string, domain.Prediction]
}

// NewPredictionRepository returns an empty in-memory prediction store.
func NewPredictionRepository() repository.PredictionRepository {
	return &predictionRepository{rows: newTable[string, domain.Prediction]()}
}

func (r *predictionRepository) Create(_ context.Context, p *domain.Prediction) error {
	row := *p
	row.Factors = cloneStrings(p.Factors)
	if !r.rows.insert(p.ID, row) {
		return fmt.Errorf("prediction %s already exists", p.ID)
	}
	return nil
}

func (r *predictionRepository) List(_ context.Context, filter repository.PredictionFilter) ([]domain.Prediction, error) {
	result := r.rows.scan(func(p domain.Prediction) bool {
		if filter.Department != nil && p.Department != *filter.Department {
			return false
		}
		return inWindow(p.Timestamp, filter.From, filter.To)
	})
	sortNewestFirst(result, func(p domain.Prediction) time.Time { return p.Timestamp })
	return truncate(result, filter.Limit), nil
}

func (r *predictionRepository) DeleteAll(_ context.Context) (int64, error) {
	return r.rows.clear(), nil
}

type recommendationRepository struct {
	rows *table[string, domain.Recommendation]
}

// NewRecommendationRepository returns an empty in-memory recommendation store.
func NewRecommendationRepository() repository.RecommendationRepository {
	return &recommendationRepository{rows: newTable[string, domain.Recommendation]()}
}

func (r *recommendationRepository) Create(_ context.Context, rec *domain.Recommendation) error {
	if !r.rows.insert(rec.ID, *rec) {
		return fmt.Errorf("recommendation %s already exists", rec.ID)
	}
	return nil
}

func (r *recommendationRepository) Update(_ context.Context, rec *domain.Recommendation) error {
	if !r.rows.replace(rec.ID, *rec) {
		return repository.ErrNotFound
	}
	return nil
}

func (r *recommendationRepository) GetByID(_ context.Context, id string) (*domain.Recommendation, error) {
	row, ok := r.rows.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (r *recommendationRepository) List(_ context.Context, filter repository.RecommendationFilter) ([]domain.Recommendation, error) {
	result := r.rows.scan(func(rec domain.Recommendation) bool {
		if filter.Department != nil && rec.Department != *filter.Department {
			return false
		}
		return filter.Status == nil || rec.Status == *filter.Status
	})
	sortNewestFirst(result, func(rec domain.Recommendation) time.Time { return rec.Timestamp })
	return truncate(result, filter.Limit), nil
}

func (r *recommendationRepository) DeleteAll(_ context.Context) (int64, error) {
	return r.rows.clear(), nil
}

type alertRepository struct {
	rows *table[string, domain.Alert]
}

// NewAlertRepository returns an empty in-memory alert store.
func NewAlertRepository() repository.AlertRepository {
	return &alertRepository{rows: newTable[string, domain.Alert]()}
}

func (r *alertRepository) Create(_ context.Context, a *domain.Alert) error {
	if !r.rows.insert(a.ID, *a) {
		return fmt.Errorf("alert %s already exists", a.ID)
	}
	return nil
}

func (r *alertRepository) Update(_ context.Context, a *domain.Alert) error {
	if !r.rows.replace(a.ID, *a) {
		return repository.ErrNotFound
	}
	return nil
}

func (r *alertRepository) GetByID(_ context.Context, id string) (*domain.Alert, error) {
	row, ok := r.rows.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (r *alertRepository) List(_ context.Context, filter repository.AlertFilter) ([]domain.Alert, error) {
	result := r.rows.scan(func(a domain.Alert) bool {
		if filter.Department != nil && a.Department != *filter.Department {
			return false
		}
		if filter.Severity != nil && a.Severity != *filter.Severity {
			return false
		}
		return inWindow(a.Timestamp, filter.Since, nil)
	})
	sortNewestFirst(result, func(a domain.Alert) time.Time { return a.Timestamp })
	return truncate(result, filter.Limit), nil
}

func (r *alertRepository) DeleteAll(_ context.Context) (int64, error) {
	return r.rows.clear(), nil
}

type departmentMetricsRepository struct {
	mu   sync.RWMutex
	seq  int64
	rows []domain.DepartmentMetrics
}

// NewDepartmentMetricsRepository returns an empty in-memory snapshot store.
func NewDepartmentMetricsRepository() repository.DepartmentMetricsRepository {
	return &departmentMetricsRepository{}
}

func (r *departmentMetricsRepository) Create(_ context.Context, m *domain.DepartmentMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.ID = r.seq
	r.rows = append(r.rows, *m)
	return nil
}

func (r *departmentMetricsRepository) List(_ context.Context, filter repository.DepartmentMetricsFilter) ([]domain.DepartmentMetrics, error) {
	r.mu.RLock()
	var result []domain.DepartmentMetrics
	for i := len(r.rows) - 1; i >= 0; i-- {
		m := r.rows[i]
		if filter.Department != nil && m.Department != *filter.Department {
			continue
		}
		if !inWindow(m.Timestamp, filter.Since, nil) {
			continue
		}
		result = append(result, m)
	}
	r.mu.RUnlock()
	sortNewestFirst(result, func(m domain.DepartmentMetrics) time.Time { return m.Timestamp })
	return truncate(result, filter.Limit), nil
}
