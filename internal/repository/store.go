package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TransitionRecorder appends a journey event and moves the patient to the
// event's status as one unit: either both writes land or neither does.
type TransitionRecorder interface {
	RecordTransition(ctx context.Context, patient *domain.Patient, event *domain.StatusHistoryEvent) error
}

// Store bundles every repository the services depend on.
type Store struct {
	Patients          PatientRepository
	History           StatusHistoryRepository
	Staff             StaffRepository
	Resources         ResourceRepository
	Predictions       PredictionRepository
	Recommendations   RecommendationRepository
	Alerts            AlertRepository
	DepartmentMetrics DepartmentMetricsRepository
	Transitions       TransitionRecorder
}

// NewPostgresStore wires the pgx-backed repositories.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Patients:          NewPatientRepository(pool),
		History:           NewStatusHistoryRepository(pool),
		Staff:             NewStaffRepository(pool),
		Resources:         NewResourceRepository(pool),
		Predictions:       NewPredictionRepository(pool),
		Recommendations:   NewRecommendationRepository(pool),
		Alerts:            NewAlertRepository(pool),
		DepartmentMetrics: NewDepartmentMetricsRepository(pool),
		Transitions:       &pgTransitionRecorder{pool: pool},
	}
}

type pgTransitionRecorder struct {
	pool *pgxpool.Pool
}

func (r *pgTransitionRecorder) RecordTransition(ctx context.Context, patient *domain.Patient, event *domain.StatusHistoryEvent) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := NewStatusHistoryRepository(tx).Create(ctx, event); err != nil {
			return fmt.Errorf("record transition: %w", err)
		}
		if err := NewPatientRepository(tx).Update(ctx, patient); err != nil {
			return fmt.Errorf("update patient: %w", err)
		}
		return nil
	})
}
