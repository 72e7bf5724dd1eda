package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/spec-kit/patient-flow/internal/domain"
)

func TestAdmitKeepsIDsUniqueUnderFrozenClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seen := make(map[domain.PatientID]bool, 1001)
	for i := 0; i < 1001; i++ {
		p, err := f.patients.Admit(ctx, AdmitInput{
			Name:     fmt.Sprintf("Walk-in %d", i),
			Age:      30,
			Symptoms: []string{"Cough"},
			Priority: domain.PriorityLow,
		})
		if err != nil {
			t.Fatalf("admission %d: %v", i+1, err)
		}
		if seen[p.ID] {
			t.Fatalf("admission %d reused id %s", i+1, p.ID)
		}
		seen[p.ID] = true
	}
}

func TestNewPatientIDAcrossProcesses(t *testing.T) {
	prefix := fmt.Sprintf("P%d", testNow.UnixMilli())

	// two processes both start their sequence from zero
	patientSeq.Store(0)
	first := NewPatientID(testNow)
	patientSeq.Store(0)
	second := NewPatientID(testNow)

	if first == second {
		t.Fatalf("separate processes minted the same id %s", first)
	}
	for _, id := range []domain.PatientID{first, second} {
		if !strings.HasPrefix(string(id), prefix+"001-") {
			t.Errorf("id %s does not start with %s001-", id, prefix)
		}
		if tail := string(id)[strings.LastIndex(string(id), "-")+1:]; len(tail) != 12 {
			t.Errorf("id %s has a %d-char random tail", id, len(tail))
		}
	}
}
