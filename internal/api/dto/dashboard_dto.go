package dto

// DashboardMetricsResponse is the headline dashboard view.
type DashboardMetricsResponse struct {
	TotalActivePatients     int                      `json:"totalActivePatients"`
	AverageWaitTime         int                      `json:"averageWaitTime"`
	PatientsServedPerHour   int                      `json:"patientsServedPerHour"`
	MostCongestedDepartment string                   `json:"mostCongestedDepartment"`
	StaffUtilization        int                      `json:"staffUtilization"`
	ResourceUtilization     int                      `json:"resourceUtilization"`
	DepartmentBreakdown     []DepartmentLoadResponse `json:"departmentBreakdown"`
}

// DepartmentLoadResponse is one breakdown row.
type DepartmentLoadResponse struct {
	Department   string `json:"department"`
	PatientCount int    `json:"patientCount"`
	AvgWaitTime  int    `json:"avgWaitTime"`
}

// DepartmentFlowResponse describes a department's pipeline occupancy.
type DepartmentFlowResponse struct {
	Department      string                `json:"department"`
	TotalPatients   int                   `json:"totalPatients"`
	StatusBreakdown []StatusCountResponse `json:"statusBreakdown"`
	CongestionLevel string                `json:"congestionLevel"`
}

// StatusCountResponse counts patients in one status.
type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DepartmentMetricsResponse is a stored snapshot row.
type DepartmentMetricsResponse struct {
	Department            string `json:"department"`
	Timestamp             int64  `json:"timestamp"`
	PatientsWaiting       int    `json:"patientsWaiting"`
	AverageWaitTime       int    `json:"averageWaitTime"`
	PatientsServedPerHour int    `json:"patientsServedPerHour"`
	OccupancyRate         int    `json:"occupancyRate"`
	StaffUtilization      int    `json:"staffUtilization"`
	CongestionLevel       string `json:"congestionLevel"`
}

// StaffResponse is a roster entry.
type StaffResponse struct {
	StaffID             string `json:"staffId"`
	Name                string `json:"name"`
	Role                string `json:"role"`
	Department          string `json:"department"`
	Status              string `json:"status"`
	CurrentPatientCount int    `json:"currentPatientCount"`
	MaxCapacity         int    `json:"maxCapacity"`
	ShiftStart          int64  `json:"shiftStart"`
	ShiftEnd            int64  `json:"shiftEnd"`
}

// ResourceResponse is a tracked resource.
type ResourceResponse struct {
	ResourceID       string  `json:"resourceId"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Department       string  `json:"department"`
	Status           string  `json:"status"`
	CurrentPatientID *string `json:"currentPatientId,omitempty"`
	Capacity         int     `json:"capacity"`
	UtilizationRate  int     `json:"utilizationRate"`
}
