package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/patient-flow/internal/api/dto"
	"github.com/spec-kit/patient-flow/internal/auth"
	"github.com/spec-kit/patient-flow/internal/service"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

// AdvisoryHandler resolves recommendations and acknowledges alerts.
type AdvisoryHandler struct {
	service *service.AdvisoryService
}

// NewAdvisoryHandler constructs handler.
func NewAdvisoryHandler(advisoryService *service.AdvisoryService) *AdvisoryHandler {
	return &AdvisoryHandler{service: advisoryService}
}

// Implement POST /api/recommendations/:id/implement.
func (h *AdvisoryHandler) Implement(c *fiber.Ctx) error {
	rec, err := h.service.ImplementRecommendation(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recommendationResponse(rec)})
}

// Dismiss POST /api/recommendations/:id/dismiss.
func (h *AdvisoryHandler) Dismiss(c *fiber.Ctx) error {
	rec, err := h.service.DismissRecommendation(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recommendationResponse(rec)})
}

// Acknowledge POST /api/alerts/:id/acknowledge.
func (h *AdvisoryHandler) Acknowledge(c *fiber.Ctx) error {
	var req dto.AcknowledgeAlertRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	by := strings.TrimSpace(req.AcknowledgedBy)
	if by == "" {
		if principal, ok := auth.PrincipalFromContext(c); ok {
			by = principal.Subject
		}
	}
	alert, err := h.service.AcknowledgeAlert(c.UserContext(), c.Params("id"), by)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": alertResponse(alert)})
}
