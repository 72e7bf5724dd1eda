package domain

import "time"

// RecommendationType enumerates suggested interventions.
type RecommendationType string

const (
	RecommendationStaffAllocation      RecommendationType = "staff_allocation"
	RecommendationResourceReallocation RecommendationType = "resource_reallocation"
	RecommendationPatientRedirect      RecommendationType = "patient_redirect"
)

// RecommendationStatus enumerates recommendation lifecycle states.
type RecommendationStatus string

const (
	RecommendationPending     RecommendationStatus = "Pending"
	RecommendationImplemented RecommendationStatus = "Implemented"
	RecommendationDismissed   RecommendationStatus = "Dismissed"
)

// Valid reports whether s is a known recommendation status.
func (s RecommendationStatus) Valid() bool {
	switch s {
	case RecommendationPending, RecommendationImplemented, RecommendationDismissed:
		return true
	}
	return false
}

// Recommendation is an operator-facing suggested action.
type Recommendation struct {
	ID              string
	Department      Department
	Timestamp       time.Time
	Type            RecommendationType
	Priority        Priority
	Action          string
	Description     string
	EstimatedImpact string
	Status          RecommendationStatus
	ImplementedAt   *time.Time
}
