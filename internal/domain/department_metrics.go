package domain

import "time"

// CongestionLevel classifies a department's active patient count.
type CongestionLevel string

const (
	CongestionLow    CongestionLevel = "Low"
	CongestionMedium CongestionLevel = "Medium"
	CongestionHigh   CongestionLevel = "High"
)

const (
	congestionHighAbove   = 10
	congestionMediumAbove = 5
)

// CongestionFor maps an active patient count to its level.
func CongestionFor(activePatients int) CongestionLevel {
	switch {
	case activePatients > congestionHighAbove:
		return CongestionHigh
	case activePatients > congestionMediumAbove:
		return CongestionMedium
	default:
		return CongestionLow
	}
}

// DepartmentMetrics is a persisted point-in-time KPI snapshot for one department.
type DepartmentMetrics struct {
	ID                    int64
	Department            Department
	Timestamp             time.Time
	PatientsWaiting       int
	AverageWaitTime       int
	PatientsServedPerHour int
	OccupancyRate         int
	StaffUtilization      int
	CongestionLevel       CongestionLevel
}
