package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/api/http/handlers"
	"github.com/spec-kit/patient-flow/internal/auth"
	"github.com/spec-kit/patient-flow/internal/config"
	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/observability"
	"github.com/spec-kit/patient-flow/internal/repository"
	"github.com/spec-kit/patient-flow/internal/repository/memory"
	"github.com/spec-kit/patient-flow/internal/service"
	"github.com/spec-kit/patient-flow/pkg/util/clock"
	"github.com/spec-kit/patient-flow/pkg/util/randutil"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	app   *fiber.App
	store *repository.Store
	auth  *service.AuthService
}

func newTestServer(t *testing.T, authEnabled bool, pingErr error) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := memory.NewStore()
	clk := clock.System{}
	rnd := randutil.New(7)
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager("test-secret", 5)
	simCfg := config.SimulationConfig{Seed: 7, PatientsMin: 25, PatientsMax: 40, StaffCount: 20, ResourceCount: 15, AlertCount: 5}

	patients := service.NewPatientService(service.PatientDependencies{
		Store: store, Clock: clk, Dispatcher: dispatcher, Metrics: metrics, Logger: logger,
	})
	predictions := service.NewPredictionService(service.PredictionDependencies{
		Store: store, Rules: service.DefaultRules(), Rand: rnd, Clock: clk, Dispatcher: dispatcher, Metrics: metrics, Logger: logger,
	})
	simulation := service.NewSimulationService(service.SimulationDependencies{
		Store: store, Patients: patients, Config: simCfg, Rand: rnd, Clock: clk, Dispatcher: dispatcher, Metrics: metrics, Logger: logger,
	})
	snapshots := service.NewSnapshotService(service.SnapshotDependencies{
		Store: store, Clock: clk, Dispatcher: dispatcher, Metrics: metrics, Logger: logger,
	})
	authService := service.NewAuthService(config.AuthConfig{
		Enabled: authEnabled, JWTSecret: "test-secret", AccessTokenTTLMinutes: 5,
		OperatorUsername: "admin", OperatorRole: "ADMIN",
	}, tokens)

	app := fiber.New(fiber.Config{Immutable: true})
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("patient-flow", "test", map[string]handlers.Pinger{"postgres": stubPinger{pingErr}}),
		Auth:           handlers.NewAuthHandler(authService),
		Patients:       handlers.NewPatientsHandler(patients, service.NewAssignmentService(patients, store.Staff, logger)),
		Dashboard:      handlers.NewDashboardHandler(service.NewMetricsService(store, clk), snapshots),
		Simulation:     handlers.NewSimulationHandler(simulation, predictions),
		Advisory:       handlers.NewAdvisoryHandler(service.NewAdvisoryService(store, nil, clk, dispatcher, logger)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, authEnabled),
		Metrics:        metrics,
	})
	return &testServer{app: app, store: store, auth: authService}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestPatientLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, false, nil)

	status, body := s.do(t, "POST", "/api/patients", map[string]any{
		"name": "Alice", "age": 34, "symptoms": []string{"Fever"}, "priority": "High",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", status, body)
	}
	patient := body["data"].(map[string]any)
	id := patient["patientId"].(string)
	if patient["currentStatus"] != "Registration" || patient["currentDepartment"] != "Reception" {
		t.Errorf("unexpected admitted patient %v", patient)
	}

	status, body = s.do(t, "GET", "/api/patients/"+id, nil)
	if status != fiber.StatusOK || body["data"].(map[string]any)["name"] != "Alice" {
		t.Errorf("unexpected get response %d %v", status, body)
	}

	status, body = s.do(t, "POST", "/api/patients/"+id+"/assign", nil)
	if status != fiber.StatusConflict || errorCode(body) != "CONFLICT" {
		t.Errorf("expected conflict without staff, got %d %v", status, body)
	}

	if err := s.store.Staff.Create(context.Background(), &domain.StaffMember{
		ID: "S1", Name: "Nurse One", Role: domain.StaffRoleNurse, Department: domain.DepartmentReception,
		Status: domain.StaffStatusAvailable, MaxCapacity: 3,
	}); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	status, body = s.do(t, "POST", "/api/patients/"+id+"/assign", nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}
	event := body["data"].(map[string]any)["event"].(map[string]any)
	if event["staffId"] != "S1" || event["fromStatus"] != "Registration" {
		t.Errorf("unexpected assignment event %v", event)
	}

	status, body = s.do(t, "POST", "/api/patients/"+id+"/status", map[string]any{
		"newStatus": "Consultation", "newDepartment": "OPD",
	})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}

	status, body = s.do(t, "GET", "/api/patients/"+id+"/journey", nil)
	if status != fiber.StatusOK || len(body["data"].([]any)) != 3 {
		t.Errorf("expected a three step journey, got %d %v", status, body)
	}

	status, body = s.do(t, "GET", "/api/patients?department=OPD", nil)
	if status != fiber.StatusOK || len(body["data"].([]any)) != 1 {
		t.Errorf("expected one OPD patient, got %d %v", status, body)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, false, nil)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown patient", "GET", "/api/patients/P404", nil, fiber.StatusNotFound, "NOT_FOUND"},
		{"missing age", "POST", "/api/patients", map[string]any{"name": "Bob", "symptoms": []string{"Cough"}, "priority": "Low"}, fiber.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad priority", "POST", "/api/patients", map[string]any{"name": "Bob", "age": 3, "symptoms": []string{"Cough"}, "priority": "Urgent"}, fiber.StatusBadRequest, "VALIDATION_FAILED"},
		{"missing status", "POST", "/api/patients/P1/status", map[string]any{}, fiber.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown department on assign", "POST", "/api/patients/P1/assign", map[string]any{"department": "Morgue"}, fiber.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown recommendation", "POST", "/api/recommendations/R404/implement", nil, fiber.StatusNotFound, "NOT_FOUND"},
		{"unknown route", "GET", "/api/nowhere", nil, fiber.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, tt.method, tt.path, tt.body)
			if status != tt.status || errorCode(body) != tt.code {
				t.Errorf("expected %d %s, got %d %v", tt.status, tt.code, status, body)
			}
		})
	}
}

func TestSimulationAndDashboard(t *testing.T) {
	s := newTestServer(t, false, nil)

	status, body := s.do(t, "POST", "/api/simulation/generate", nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}
	generated := body["data"].(map[string]any)
	n := int(generated["patients"].(float64))
	if n < 25 || n >= 40 {
		t.Errorf("patient count %d outside [25, 40)", n)
	}

	status, body = s.do(t, "GET", "/api/dashboard/metrics", nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	dashboard := body["data"].(map[string]any)
	if _, ok := dashboard["mostCongestedDepartment"]; !ok {
		t.Errorf("dashboard missing fields: %v", dashboard)
	}

	status, body = s.do(t, "GET", "/api/patients/active", nil)
	if status != fiber.StatusOK || len(body["data"].([]any)) == 0 {
		t.Errorf("expected active patients after generation, got %d", status)
	}

	status, _ = s.do(t, "POST", "/api/simulation/predictions", nil)
	if status != fiber.StatusOK {
		t.Errorf("expected 200 from predictions, got %d", status)
	}
	status, body = s.do(t, "GET", "/api/dashboard/alerts", nil)
	if status != fiber.StatusOK || len(body["data"].([]any)) > 5 {
		t.Errorf("unexpected alerts response %d %v", status, body)
	}

	status, body = s.do(t, "GET", "/api/staff", nil)
	if status != fiber.StatusOK || len(body["data"].([]any)) != 20 {
		t.Errorf("expected the 20 generated staff, got %d %v", status, body)
	}
	status, body = s.do(t, "GET", "/api/resources", nil)
	if status != fiber.StatusOK || len(body["data"].([]any)) != 15 {
		t.Errorf("expected the 15 generated resources, got %d %v", status, body)
	}
	status, body = s.do(t, "GET", "/api/staff?department=Cardiology", nil)
	if status != fiber.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
		t.Errorf("expected unknown department rejected, got %d %v", status, body)
	}
}

func TestAuthProtectsMutations(t *testing.T) {
	s := newTestServer(t, true, nil)

	status, body := s.do(t, "POST", "/api/simulation/generate", nil)
	if status != fiber.StatusUnauthorized || errorCode(body) != "UNAUTHORIZED" {
		t.Errorf("expected 401, got %d %v", status, body)
	}

	status, _ = s.do(t, "GET", "/api/dashboard/metrics", nil)
	if status != fiber.StatusOK {
		t.Errorf("expected open reads, got %d", status)
	}
}

func TestMetricsScrapeAfterErrors(t *testing.T) {
	s := newTestServer(t, false, nil)
	for _, id := range []string{"P0", "P1", "P2"} {
		if status, _ := s.do(t, "GET", "/api/patients/"+id, nil); status != fiber.StatusNotFound {
			t.Fatalf("expected 404 for %s, got %d", id, status)
		}
	}
	s.do(t, "GET", "/api/no-such-route/42", nil)

	resp, err := s.app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d: %s", resp.StatusCode, raw)
	}
	body := string(raw)
	if !strings.Contains(body, `path="/api/patients/:id"`) {
		t.Error("expected errors labelled with the route pattern")
	}
	for _, path := range []string{"/api/patients/P0", "/api/patients/P1", "/api/no-such-route/42"} {
		if strings.Contains(body, `"`+path+`"`) {
			t.Errorf("raw path %s leaked into a metric label", path)
		}
	}
}

func TestHealth(t *testing.T) {
	status, body := newTestServer(t, false, nil).do(t, "GET", "/health/live", nil)
	if status != fiber.StatusOK || body["status"] != "alive" {
		t.Errorf("expected alive, got %d %v", status, body)
	}

	status, body = newTestServer(t, false, nil).do(t, "GET", "/health/ready", nil)
	if status != fiber.StatusOK || body["status"] != "ready" {
		t.Errorf("expected ready, got %d %v", status, body)
	}

	status, body = newTestServer(t, false, errors.New("dial tcp: refused")).do(t, "GET", "/health/ready", nil)
	if status != fiber.StatusServiceUnavailable || errorCode(body) != "DEPENDENCY_UNAVAILABLE" {
		t.Fatalf("expected 503, got %d %v", status, body)
	}
	details := body["error"].(map[string]any)["details"].([]any)
	check := details[0].(map[string]any)
	if check["name"] != "postgres" || check["status"] != "down" || check["error"] != "dial tcp: refused" {
		t.Errorf("unexpected dependency check %v", check)
	}
}
