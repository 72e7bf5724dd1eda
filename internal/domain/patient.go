package domain

import (
	"strings"
	"time"
)

// PatientID is the externally visible patient identifier (e.g. P1718000000000001).
type PatientID string

// PatientStatus enumerates pipeline stages of a hospital visit.
type PatientStatus string

const (
	PatientStatusRegistration PatientStatus = "Registration"
	PatientStatusWaiting      PatientStatus = "Waiting"
	PatientStatusConsultation PatientStatus = "Consultation"
	PatientStatusDiagnostics  PatientStatus = "Diagnostics"
	PatientStatusTreatment    PatientStatus = "Treatment"
	PatientStatusBilling      PatientStatus = "Billing"
	PatientStatusDischarge    PatientStatus = "Discharge"
)

// PatientPipeline lists every status in visit order. Discharge is terminal.
var PatientPipeline = []PatientStatus{
	PatientStatusRegistration,
	PatientStatusWaiting,
	PatientStatusConsultation,
	PatientStatusDiagnostics,
	PatientStatusTreatment,
	PatientStatusBilling,
	PatientStatusDischarge,
}

// ActiveStatuses is the pipeline without the terminal status.
var ActiveStatuses = PatientPipeline[:len(PatientPipeline)-1]

// Valid reports whether s is a known status.
func (s PatientStatus) Valid() bool {
	for _, candidate := range PatientPipeline {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a patient in this status has left the hospital.
func (s PatientStatus) IsTerminal() bool {
	return s == PatientStatusDischarge
}

// Next returns the following pipeline status.
func (s PatientStatus) Next() (PatientStatus, bool) {
	for i, candidate := range PatientPipeline {
		if candidate == s && i+1 < len(PatientPipeline) {
			return PatientPipeline[i+1], true
		}
	}
	return "", false
}

// Priority enumerates triage urgency.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists every priority from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Patient is the current-state projection of a patient's visit.
type Patient struct {
	ID                     PatientID
	Name                   string
	Age                    int
	CurrentStatus          PatientStatus
	CurrentDepartment      Department
	RegistrationTime       time.Time
	EstimatedDischargeTime *time.Time
	Priority               Priority
	Symptoms               []string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsActive reports whether the patient still appears on the floor.
func (p *Patient) IsActive() bool {
	return !p.CurrentStatus.IsTerminal()
}

// WaitTime is the time since registration, never negative.
func (p *Patient) WaitTime(now time.Time) time.Duration {
	wait := now.Sub(p.RegistrationTime)
	if wait < 0 {
		return 0
	}
	return wait
}

// NormalizeSymptoms trims entries and drops blanks.
func NormalizeSymptoms(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
