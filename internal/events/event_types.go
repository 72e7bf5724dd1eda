package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPatientAdmitted         EventType = "patient_admitted"
	EventPatientStatusChanged    EventType = "patient_status_changed"
	EventSyntheticDataGenerated  EventType = "synthetic_data_generated"
	EventPredictionsGenerated    EventType = "predictions_generated"
	EventRecommendationUpdated   EventType = "recommendation_updated"
	EventAlertAcknowledged       EventType = "alert_acknowledged"
	EventDepartmentSnapshotTaken EventType = "snapshot_captured"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subjectId,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, subjectID string, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: at,
		Payload:   payload,
	}
}

// PatientAdmittedPayload payload.
type PatientAdmittedPayload struct {
	Name     string          `json:"name"`
	Age      int             `json:"age"`
	Priority domain.Priority `json:"priority"`
	Symptoms []string        `json:"symptoms"`
}

// PatientStatusChangedPayload payload.
type PatientStatusChangedPayload struct {
	FromStatus     domain.PatientStatus `json:"fromStatus"`
	ToStatus       domain.PatientStatus `json:"toStatus"`
	FromDepartment domain.Department    `json:"fromDepartment"`
	ToDepartment   domain.Department    `json:"toDepartment"`
	StaffID        *domain.StaffID      `json:"staffId,omitempty"`
}

// SyntheticDataGeneratedPayload payload.
type SyntheticDataGeneratedPayload struct {
	Patients  int `json:"patients"`
	Events    int `json:"events"`
	Staff     int `json:"staff"`
	Resources int `json:"resources"`
}

// PredictionsGeneratedPayload payload.
type PredictionsGeneratedPayload struct {
	Predictions     int `json:"predictions"`
	Recommendations int `json:"recommendations"`
	Alerts          int `json:"alerts"`
}

// RecommendationUpdatedPayload payload.
type RecommendationUpdatedPayload struct {
	Department domain.Department           `json:"department"`
	Status     domain.RecommendationStatus `json:"status"`
}

// AlertAcknowledgedPayload payload.
type AlertAcknowledgedPayload struct {
	Department     domain.Department `json:"department"`
	AcknowledgedBy string            `json:"acknowledgedBy"`
}

// SnapshotCapturedPayload payload.
type SnapshotCapturedPayload struct {
	Departments int    `json:"departments"`
	ArchiveKey  string `json:"archiveKey,omitempty"`
}
