package dto

// AdmitPatientRequest payload.
type AdmitPatientRequest struct {
	Name     string   `json:"name"`
	Age      *int     `json:"age"`
	Symptoms []string `json:"symptoms"`
	Priority string   `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	NewStatus     string  `json:"newStatus"`
	NewDepartment *string `json:"newDepartment"`
	StaffID       *string `json:"staffId"`
}

// AutoAssignRequest payload for staff auto-assignment.
type AutoAssignRequest struct {
	Department *string `json:"department"`
}

// PatientResponse is the wire form of a patient. Timestamps are epoch milliseconds.
type PatientResponse struct {
	PatientID              string   `json:"patientId"`
	Name                   string   `json:"name"`
	Age                    int      `json:"age"`
	CurrentStatus          string   `json:"currentStatus"`
	CurrentDepartment      string   `json:"currentDepartment"`
	RegistrationTime       int64    `json:"registrationTime"`
	EstimatedDischargeTime *int64   `json:"estimatedDischargeTime,omitempty"`
	Priority               string   `json:"priority"`
	Symptoms               []string `json:"symptoms"`
	WaitTime               *int64   `json:"waitTime,omitempty"`
}

// StatusHistoryResponse is one journey entry.
type StatusHistoryResponse struct {
	ID            int64   `json:"id"`
	PatientID     string  `json:"patientId"`
	FromStatus    *string `json:"fromStatus,omitempty"`
	ToStatus      string  `json:"toStatus"`
	Department    string  `json:"department"`
	Timestamp     int64   `json:"timestamp"`
	Duration      *int64  `json:"duration,omitempty"`
	StageDuration *int64  `json:"stageDuration,omitempty"`
	StaffID       *string `json:"staffId,omitempty"`
}

// TransitionResponse pairs the updated patient with the appended event.
type TransitionResponse struct {
	Patient PatientResponse       `json:"patient"`
	Event   StatusHistoryResponse `json:"event"`
}

// PatientFlowResponse counts active patients per department and status.
type PatientFlowResponse struct {
	Department  string   `json:"department"`
	Status      string   `json:"status"`
	Count       int      `json:"count"`
	AvgWaitTime int      `json:"avgWaitTime"`
	PatientIDs  []string `json:"patientIds"`
}
