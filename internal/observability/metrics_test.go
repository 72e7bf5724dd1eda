package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Millisecond)
	m.RecordError("/x", "GET", "NOT_FOUND")
	m.RecordAdmission()
	m.RecordTransition("Triage")
	m.RecordRegeneration("synthetic")
	m.RecordPublish("kafka", errors.New("down"))
}

func TestCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordAdmission()
	m.RecordAdmission()
	m.RecordPublish("rabbitmq", nil)
	m.RecordPublish("rabbitmq", errors.New("closed"))
	m.RecordPublish("rabbitmq", errors.New("closed"))

	if got := testutil.ToFloat64(m.admissions); got != 2 {
		t.Errorf("expected 2 admissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.published.WithLabelValues("rabbitmq", "error")); got != 2 {
		t.Errorf("expected 2 failed publishes, got %v", got)
	}
}

func TestRequestLoggerRecordsRoute(t *testing.T) {
	m := NewMetrics()
	app := fiber.New(fiber.Config{Immutable: true})
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/api/patients/:id", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "missing")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/patients/P1", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/patients/:id", "GET", "404")); got != 1 {
		t.Errorf("expected one request on the route pattern, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "patient_flow_http_requests_total") {
		t.Error("expected the request counter in the exposition")
	}
}
