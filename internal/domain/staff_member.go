package domain

import "time"

// StaffID identifies a staff member (e.g. S004).
type StaffID string

// StaffRole enumerates clinical and support roles.
type StaffRole string

const (
	StaffRoleDoctor     StaffRole = "Doctor"
	StaffRoleNurse      StaffRole = "Nurse"
	StaffRoleTechnician StaffRole = "Technician"
	StaffRoleAdmin      StaffRole = "Admin"
)

// StaffRoles lists every role.
var StaffRoles = []StaffRole{StaffRoleDoctor, StaffRoleNurse, StaffRoleTechnician, StaffRoleAdmin}

// StaffStatus enumerates workload states.
type StaffStatus string

const (
	StaffStatusAvailable  StaffStatus = "Available"
	StaffStatusBusy       StaffStatus = "Busy"
	StaffStatusOverloaded StaffStatus = "Overloaded"
	StaffStatusOffDuty    StaffStatus = "Off-duty"
)

// StaffStatuses lists every workload state.
var StaffStatuses = []StaffStatus{StaffStatusAvailable, StaffStatusBusy, StaffStatusOverloaded, StaffStatusOffDuty}

// Valid reports whether s is a known staff status.
func (s StaffStatus) Valid() bool {
	switch s {
	case StaffStatusAvailable, StaffStatusBusy, StaffStatusOverloaded, StaffStatusOffDuty:
		return true
	}
	return false
}

// StaffMember is a clinician or support worker on shift.
type StaffMember struct {
	ID                  StaffID
	Name                string
	Role                StaffRole
	Department          Department
	Status              StaffStatus
	CurrentPatientCount int
	MaxCapacity         int
	ShiftStart          time.Time
	ShiftEnd            time.Time
}

// IsEngaged reports whether the staff member counts toward utilization.
func (s *StaffMember) IsEngaged() bool {
	return s.Status == StaffStatusBusy || s.Status == StaffStatusOverloaded
}
