package domain

import "time"

// PredictionType enumerates forecast categories.
type PredictionType string

const (
	PredictionQueueBuildup       PredictionType = "queue_buildup"
	PredictionStaffOverload      PredictionType = "staff_overload"
	PredictionResourceSaturation PredictionType = "resource_saturation"
)

// Prediction is a write-once advisory about a department's near future.
type Prediction struct {
	ID             string
	Department     Department
	Timestamp      time.Time
	Type           PredictionType
	PredictedValue int
	Confidence     float64
	TimeHorizon    int
	Factors        []string
}
