package handlers

import (
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/patient-flow/internal/api/dto"
	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/service"
)

func millis(t time.Time) int64 { return t.UnixMilli() }

func optionalMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func durationMillis(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

func patientResponse(p *domain.Patient) dto.PatientResponse {
	symptoms := p.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	return dto.PatientResponse{
		PatientID:              string(p.ID),
		Name:                   p.Name,
		Age:                    p.Age,
		CurrentStatus:          string(p.CurrentStatus),
		CurrentDepartment:      string(p.CurrentDepartment),
		RegistrationTime:       millis(p.RegistrationTime),
		EstimatedDischargeTime: optionalMillis(p.EstimatedDischargeTime),
		Priority:               string(p.Priority),
		Symptoms:               symptoms,
	}
}

func activePatientResponses(patients []service.ActivePatient) []dto.PatientResponse {
	return lo.Map(patients, func(p service.ActivePatient, _ int) dto.PatientResponse {
		resp := patientResponse(&p.Patient)
		wait := p.WaitTime.Milliseconds()
		resp.WaitTime = &wait
		return resp
	})
}

func historyResponse(e *domain.StatusHistoryEvent) dto.StatusHistoryResponse {
	resp := dto.StatusHistoryResponse{
		ID:            e.ID,
		PatientID:     string(e.PatientID),
		ToStatus:      string(e.ToStatus),
		Department:    string(e.Department),
		Timestamp:     millis(e.Timestamp),
		Duration:      durationMillis(e.Duration),
		StageDuration: durationMillis(e.StageDuration),
	}
	if e.FromStatus != nil {
		from := string(*e.FromStatus)
		resp.FromStatus = &from
	}
	if e.StaffID != nil {
		staff := string(*e.StaffID)
		resp.StaffID = &staff
	}
	return resp
}

func historyResponses(events []domain.StatusHistoryEvent) []dto.StatusHistoryResponse {
	return lo.Map(events, func(e domain.StatusHistoryEvent, _ int) dto.StatusHistoryResponse { return historyResponse(&e) })
}

func flowResponses(groups []service.FlowGroup) []dto.PatientFlowResponse {
	return lo.Map(groups, func(g service.FlowGroup, _ int) dto.PatientFlowResponse {
		return dto.PatientFlowResponse{
			Department:  string(g.Department),
			Status:      string(g.Status),
			Count:       g.Count,
			AvgWaitTime: g.AverageWaitTime,
			PatientIDs:  lo.Map(g.PatientIDs, func(id domain.PatientID, _ int) string { return string(id) }),
		}
	})
}

func dashboardResponse(m *service.DashboardMetrics) dto.DashboardMetricsResponse {
	return dto.DashboardMetricsResponse{
		TotalActivePatients:     m.TotalActivePatients,
		AverageWaitTime:         m.AverageWaitTime,
		PatientsServedPerHour:   m.PatientsServedPerHour,
		MostCongestedDepartment: m.MostCongestedDepartment,
		StaffUtilization:        m.StaffUtilization,
		ResourceUtilization:     m.ResourceUtilization,
		DepartmentBreakdown: lo.Map(m.DepartmentBreakdown, func(d service.DepartmentLoad, _ int) dto.DepartmentLoadResponse {
			return dto.DepartmentLoadResponse{Department: string(d.Department), PatientCount: d.PatientCount, AvgWaitTime: d.AvgWaitTime}
		}),
	}
}

func departmentFlowResponses(flows []service.DepartmentFlow) []dto.DepartmentFlowResponse {
	return lo.Map(flows, func(f service.DepartmentFlow, _ int) dto.DepartmentFlowResponse {
		return dto.DepartmentFlowResponse{
			Department:    string(f.Department),
			TotalPatients: f.TotalPatients,
			StatusBreakdown: lo.Map(f.StatusBreakdown, func(s service.StatusCount, _ int) dto.StatusCountResponse {
				return dto.StatusCountResponse{Status: string(s.Status), Count: s.Count}
			}),
			CongestionLevel: string(f.CongestionLevel),
		}
	})
}

func snapshotResponses(rows []domain.DepartmentMetrics) []dto.DepartmentMetricsResponse {
	return lo.Map(rows, func(m domain.DepartmentMetrics, _ int) dto.DepartmentMetricsResponse {
		return dto.DepartmentMetricsResponse{
			Department:            string(m.Department),
			Timestamp:             millis(m.Timestamp),
			PatientsWaiting:       m.PatientsWaiting,
			AverageWaitTime:       m.AverageWaitTime,
			PatientsServedPerHour: m.PatientsServedPerHour,
			OccupancyRate:         m.OccupancyRate,
			StaffUtilization:      m.StaffUtilization,
			CongestionLevel:       string(m.CongestionLevel),
		}
	})
}

func staffResponses(staff []domain.StaffMember) []dto.StaffResponse {
	return lo.Map(staff, func(s domain.StaffMember, _ int) dto.StaffResponse {
		return dto.StaffResponse{
			StaffID:             string(s.ID),
			Name:                s.Name,
			Role:                string(s.Role),
			Department:          string(s.Department),
			Status:              string(s.Status),
			CurrentPatientCount: s.CurrentPatientCount,
			MaxCapacity:         s.MaxCapacity,
			ShiftStart:          millis(s.ShiftStart),
			ShiftEnd:            millis(s.ShiftEnd),
		}
	})
}

func resourceResponses(resources []domain.Resource) []dto.ResourceResponse {
	return lo.Map(resources, func(r domain.Resource, _ int) dto.ResourceResponse {
		resp := dto.ResourceResponse{
			ResourceID:      string(r.ID),
			Name:            r.Name,
			Type:            string(r.Type),
			Department:      string(r.Department),
			Status:          string(r.Status),
			Capacity:        r.Capacity,
			UtilizationRate: r.UtilizationRate,
		}
		if r.CurrentPatientID != nil {
			id := string(*r.CurrentPatientID)
			resp.CurrentPatientID = &id
		}
		return resp
	})
}

func predictionResponses(predictions []domain.Prediction) []dto.PredictionResponse {
	return lo.Map(predictions, func(p domain.Prediction, _ int) dto.PredictionResponse {
		return dto.PredictionResponse{
			ID:             p.ID,
			Department:     string(p.Department),
			Timestamp:      millis(p.Timestamp),
			PredictionType: string(p.Type),
			PredictedValue: p.PredictedValue,
			Confidence:     p.Confidence,
			TimeHorizon:    p.TimeHorizon,
			Factors:        p.Factors,
		}
	})
}

func recommendationResponse(r *domain.Recommendation) dto.RecommendationResponse {
	return dto.RecommendationResponse{
		ID:              r.ID,
		Department:      string(r.Department),
		Timestamp:       millis(r.Timestamp),
		Type:            string(r.Type),
		Priority:        string(r.Priority),
		Action:          r.Action,
		Description:     r.Description,
		EstimatedImpact: r.EstimatedImpact,
		Status:          string(r.Status),
		ImplementedAt:   optionalMillis(r.ImplementedAt),
	}
}

func alertResponse(a *domain.Alert) dto.AlertResponse {
	return dto.AlertResponse{
		ID:             a.ID,
		Department:     string(a.Department),
		Timestamp:      millis(a.Timestamp),
		Severity:       string(a.Severity),
		Type:           a.Type,
		Message:        a.Message,
		Acknowledged:   a.Acknowledged,
		AcknowledgedBy: a.AcknowledgedBy,
		AcknowledgedAt: optionalMillis(a.AcknowledgedAt),
	}
}
