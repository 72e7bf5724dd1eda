package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/patient-flow/internal/api/dto"
	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/service"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

// DashboardHandler serves aggregate and advisory reads.
type DashboardHandler struct {
	metrics   *service.MetricsService
	snapshots *service.SnapshotService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(metrics *service.MetricsService, snapshots *service.SnapshotService) *DashboardHandler {
	return &DashboardHandler{metrics: metrics, snapshots: snapshots}
}

// Metrics GET /api/dashboard/metrics.
func (h *DashboardHandler) Metrics(c *fiber.Ctx) error {
	m, err := h.metrics.DashboardMetrics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(m)})
}

// Departments GET /api/dashboard/departments.
func (h *DashboardHandler) Departments(c *fiber.Ctx) error {
	flows, err := h.metrics.DepartmentFlow(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentFlowResponses(flows)})
}

// Predictions GET /api/dashboard/predictions.
func (h *DashboardHandler) Predictions(c *fiber.Ctx) error {
	predictions, err := h.metrics.BottleneckPredictions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": predictionResponses(predictions)})
}

// Recommendations GET /api/dashboard/recommendations.
func (h *DashboardHandler) Recommendations(c *fiber.Ctx) error {
	recs, err := h.metrics.ActiveRecommendations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(recs, func(r domain.Recommendation, _ int) dto.RecommendationResponse {
		return recommendationResponse(&r)
	})})
}

// Alerts GET /api/dashboard/alerts.
func (h *DashboardHandler) Alerts(c *fiber.Ctx) error {
	alerts, err := h.metrics.RecentAlerts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(alerts, func(a domain.Alert, _ int) dto.AlertResponse {
		return alertResponse(&a)
	})})
}

// Staff GET /api/staff?department=.
func (h *DashboardHandler) Staff(c *fiber.Ctx) error {
	dept, err := departmentQuery(c)
	if err != nil {
		return err
	}
	staff, err := h.metrics.Staff(c.UserContext(), dept)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponses(staff)})
}

// Resources GET /api/resources?department=.
func (h *DashboardHandler) Resources(c *fiber.Ctx) error {
	dept, err := departmentQuery(c)
	if err != nil {
		return err
	}
	resources, err := h.metrics.Resources(c.UserContext(), dept)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resourceResponses(resources)})
}

// Snapshots GET /api/dashboard/snapshots?department=&limit=.
func (h *DashboardHandler) Snapshots(c *fiber.Ctx) error {
	dept, err := departmentQuery(c)
	if err != nil {
		return err
	}
	rows, err := h.snapshots.ListSnapshots(c.UserContext(), dept, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshotResponses(rows)})
}

// CaptureSnapshot POST /api/dashboard/snapshots.
func (h *DashboardHandler) CaptureSnapshot(c *fiber.Ctx) error {
	rows, err := h.snapshots.CaptureSnapshot(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": snapshotResponses(rows)})
}

func departmentQuery(c *fiber.Ctx) (*domain.Department, error) {
	raw := c.Query("department")
	if raw == "" {
		return nil, nil
	}
	dept := domain.Department(raw)
	if !dept.Valid() {
		return nil, apperrors.NewValidationError("unknown department", map[string]any{"department": raw})
	}
	return &dept, nil
}
