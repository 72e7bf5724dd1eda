package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/messaging"
)

type mockPublisher struct {
	mu           sync.Mutex
	name         string
	PublishErr   error
	PublishCalls int
	Keys         []string
	Bodies       [][]byte
}

func (m *mockPublisher) Name() string { return m.name }

func (m *mockPublisher) Publish(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishCalls++
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Keys = append(m.Keys, key)
	m.Bodies = append(m.Bodies, body)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func TestNotificationServiceForwardsEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	healthy := &mockPublisher{name: "kafka"}
	broken := &mockPublisher{name: "rabbitmq", PublishErr: errors.New("connection reset")}
	svc := NewNotificationService(dispatcher, []messaging.Publisher{broken, healthy}, nil, zap.NewNop())
	svc.RegisterHandlers()

	f := newFixture(t)
	f.patients.dispatcher = dispatcher

	patient, err := f.patients.Admit(context.Background(), AdmitInput{
		Name: "Frank", Age: 47, Symptoms: []string{"Dizziness"}, Priority: domain.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("admit must not fail on broker errors: %v", err)
	}

	if broken.PublishCalls != 1 {
		t.Errorf("expected the failing broker to be tried once, got %d", broken.PublishCalls)
	}
	if len(healthy.Bodies) != 1 {
		t.Fatalf("expected 1 forwarded event, got %d", len(healthy.Bodies))
	}
	if healthy.Keys[0] != string(patient.ID) {
		t.Errorf("expected key %s, got %s", patient.ID, healthy.Keys[0])
	}

	var decoded struct {
		Type      string `json:"type"`
		SubjectID string `json:"subjectId"`
		Payload   struct {
			Name string `json:"name"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(healthy.Bodies[0], &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.Type != string(events.EventPatientAdmitted) || decoded.SubjectID != string(patient.ID) || decoded.Payload.Name != "Frank" {
		t.Errorf("unexpected body %s", healthy.Bodies[0])
	}
}

func TestNotificationServiceKeysSubjectlessEventsByID(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	pub := &mockPublisher{name: "kafka"}
	NewNotificationService(dispatcher, []messaging.Publisher{pub}, nil, zap.NewNop()).RegisterHandlers()

	event := events.New(events.EventPredictionsGenerated, "", testNow, events.PredictionsGeneratedPayload{Alerts: 5})
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(pub.Keys) != 1 || pub.Keys[0] != event.ID {
		t.Errorf("expected key %s, got %v", event.ID, pub.Keys)
	}
}
