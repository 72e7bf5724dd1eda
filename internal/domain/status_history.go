package domain

import "time"

// StatusHistoryEvent is an immutable journey entry for one patient.
type StatusHistoryEvent struct {
	ID         int64
	PatientID  PatientID
	FromStatus *PatientStatus
	ToStatus   PatientStatus
	Department Department
	Timestamp  time.Time
	// Duration is the age of the patient record at the time of the change.
	Duration *time.Duration
	// StageDuration is the time spent in the previous status.
	StageDuration *time.Duration
	StaffID       *StaffID
}
