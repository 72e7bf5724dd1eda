package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/patient-flow/internal/api/dto"
	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/service"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

// PatientsHandler serves the patient registry.
type PatientsHandler struct {
	service     *service.PatientService
	assignments *service.AssignmentService
}

// NewPatientsHandler constructs handler.
func NewPatientsHandler(patientService *service.PatientService, assignments *service.AssignmentService) *PatientsHandler {
	return &PatientsHandler{service: patientService, assignments: assignments}
}

// Admit POST /api/patients.
func (h *PatientsHandler) Admit(c *fiber.Ctx) error {
	var req dto.AdmitPatientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Age == nil {
		return apperrors.NewValidationError("invalid admission", map[string]any{"age": "is required"})
	}
	patient, err := h.service.Admit(c.UserContext(), service.AdmitInput{
		Name:     req.Name,
		Age:      *req.Age,
		Symptoms: req.Symptoms,
		Priority: domain.Priority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": patientResponse(patient)})
}

// UpdateStatus POST /api/patients/:id/status.
func (h *PatientsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.NewStatus) == "" {
		return apperrors.NewValidationError("newStatus required", nil)
	}

	input := service.TransitionInput{
		PatientID: domain.PatientID(c.Params("id")),
		Status:    domain.PatientStatus(req.NewStatus),
	}
	if req.NewDepartment != nil && *req.NewDepartment != "" {
		dept := domain.Department(*req.NewDepartment)
		input.Department = &dept
	}
	if req.StaffID != nil && *req.StaffID != "" {
		staffID := domain.StaffID(*req.StaffID)
		input.StaffID = &staffID
	}

	patient, event, err := h.service.Transition(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TransitionResponse{
		Patient: patientResponse(patient),
		Event:   historyResponse(event),
	}})
}

// AutoAssign POST /api/patients/:id/assign. The body is optional.
func (h *PatientsHandler) AutoAssign(c *fiber.Ctx) error {
	var req dto.AutoAssignRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	input := service.AssignInput{PatientID: domain.PatientID(c.Params("id"))}
	if req.Department != nil && *req.Department != "" {
		dept := domain.Department(*req.Department)
		input.Department = &dept
	}

	patient, event, err := h.assignments.AutoAssign(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TransitionResponse{
		Patient: patientResponse(patient),
		Event:   historyResponse(event),
	}})
}

// Active GET /api/patients/active.
func (h *PatientsHandler) Active(c *fiber.Ctx) error {
	patients, err := h.service.ActivePatients(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activePatientResponses(patients)})
}

// List GET /api/patients?department=. Without a department it lists all active patients.
func (h *PatientsHandler) List(c *fiber.Ctx) error {
	dept := c.Query("department")
	if dept == "" {
		return h.Active(c)
	}
	patients, err := h.service.ByDepartment(c.UserContext(), domain.Department(dept))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activePatientResponses(patients)})
}

// Flow GET /api/patients/flow.
func (h *PatientsHandler) Flow(c *fiber.Ctx) error {
	groups, err := h.service.PatientFlow(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": flowResponses(groups)})
}

// Get GET /api/patients/:id.
func (h *PatientsHandler) Get(c *fiber.Ctx) error {
	patient, err := h.service.Get(c.UserContext(), domain.PatientID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": patientResponse(patient)})
}

// Journey GET /api/patients/:id/journey.
func (h *PatientsHandler) Journey(c *fiber.Ctx) error {
	journey, err := h.service.Journey(c.UserContext(), domain.PatientID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(journey)})
}
