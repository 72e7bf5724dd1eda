package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/patient-flow/internal/domain"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

func TestAutoAssign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPatient(t, "P7", domain.DepartmentOPD, domain.PatientStatusWaiting, 15*time.Minute)
	f.seedStaff(t, "S2", domain.DepartmentOPD, domain.StaffStatusAvailable)
	f.seedStaff(t, "S1", domain.DepartmentOPD, domain.StaffStatusBusy)
	f.seedStaff(t, "S3", domain.DepartmentOPD, domain.StaffStatusOverloaded)
	f.seedStaff(t, "S4", domain.DepartmentOPD, domain.StaffStatusOffDuty)
	f.seedStaff(t, "S5", domain.DepartmentLaboratory, domain.StaffStatusAvailable)
	svc := NewAssignmentService(f.patients, f.store.Staff, nil)

	patient, event, err := svc.AutoAssign(ctx, AssignInput{PatientID: "P7"})
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if patient.CurrentStatus != domain.PatientStatusConsultation {
		t.Errorf("expected Consultation, got %s", patient.CurrentStatus)
	}
	// eligible roster is [S1 S2]; 'P' + '7' = 80 + 55 = 135, 135 % 2 = 1
	if event.StaffID == nil || *event.StaffID != "S2" {
		t.Errorf("expected S2, got %v", event.StaffID)
	}

	again, _, err := svc.AutoAssign(ctx, AssignInput{PatientID: "P7", Department: deptPtr(domain.DepartmentLaboratory)})
	if err != nil {
		t.Fatalf("auto assign to lab: %v", err)
	}
	if again.CurrentDepartment != domain.DepartmentLaboratory || again.CurrentStatus != domain.PatientStatusDiagnostics {
		t.Errorf("expected Diagnostics in Laboratory, got %s/%s", again.CurrentStatus, again.CurrentDepartment)
	}
}

func TestAutoAssignErrors(t *testing.T) {
	f := newFixture(t)
	f.seedPatient(t, "P1", domain.DepartmentPharmacy, domain.PatientStatusWaiting, time.Minute)
	f.seedPatient(t, "P2", domain.DepartmentPharmacy, domain.PatientStatusDischarge, time.Minute)
	f.seedStaff(t, "S1", domain.DepartmentPharmacy, domain.StaffStatusOffDuty)
	svc := NewAssignmentService(f.patients, f.store.Staff, nil)

	tests := []struct {
		name  string
		input AssignInput
		check func(error) bool
	}{
		{"no eligible staff", AssignInput{PatientID: "P1"}, apperrors.IsConflict},
		{"discharged", AssignInput{PatientID: "P2"}, apperrors.IsConflict},
		{"unknown patient", AssignInput{PatientID: "P404"}, apperrors.IsNotFound},
		{"unknown department", AssignInput{PatientID: "P1", Department: deptPtr("Cafeteria")}, apperrors.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.AutoAssign(context.Background(), tt.input); !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSelectIndex(t *testing.T) {
	if got := selectIndex("anything", 0); got != 0 {
		t.Errorf("expected 0 for an empty roster, got %d", got)
	}
	if a, b := selectIndex("P100", 7), selectIndex("P100", 7); a != b {
		t.Errorf("selection is not stable: %d vs %d", a, b)
	}
}
