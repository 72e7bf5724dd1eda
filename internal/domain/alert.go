package domain

import "time"

// AlertSeverity enumerates alert urgency.
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "Info"
	AlertSeverityWarning  AlertSeverity = "Warning"
	AlertSeverityCritical AlertSeverity = "Critical"
)

// AlertSeverities lists every severity.
var AlertSeverities = []AlertSeverity{AlertSeverityInfo, AlertSeverityWarning, AlertSeverityCritical}

// Valid reports whether s is a known severity.
func (s AlertSeverity) Valid() bool {
	switch s {
	case AlertSeverityInfo, AlertSeverityWarning, AlertSeverityCritical:
		return true
	}
	return false
}

// Alert is an operational notification awaiting acknowledgement.
type Alert struct {
	ID             string
	Department     Department
	Timestamp      time.Time
	Severity       AlertSeverity
	Type           string
	Message        string
	Acknowledged   bool
	AcknowledgedBy *string
	AcknowledgedAt *time.Time
}
