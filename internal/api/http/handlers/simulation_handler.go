package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/patient-flow/internal/api/dto"
	"github.com/spec-kit/patient-flow/internal/service"
)

// SimulationHandler triggers demo data generation and advisory regeneration.
type SimulationHandler struct {
	simulation  *service.SimulationService
	predictions *service.PredictionService
}

// NewSimulationHandler constructs handler.
func NewSimulationHandler(simulation *service.SimulationService, predictions *service.PredictionService) *SimulationHandler {
	return &SimulationHandler{simulation: simulation, predictions: predictions}
}

// Generate POST /api/simulation/generate.
func (h *SimulationHandler) Generate(c *fiber.Ctx) error {
	result, err := h.simulation.GenerateSyntheticData(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.GenerateResponse{
		Success:   true,
		Message:   "Synthetic data generated successfully",
		Patients:  result.Patients,
		Events:    result.Events,
		Staff:     result.Staff,
		Resources: result.Resources,
	}})
}

// Predictions POST /api/simulation/predictions.
func (h *SimulationHandler) Predictions(c *fiber.Ctx) error {
	result, err := h.predictions.Regenerate(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PredictionsGeneratedResponse{
		Success:         true,
		Message:         "Predictions and recommendations generated",
		Predictions:     result.Predictions,
		Recommendations: result.Recommendations,
		Alerts:          result.Alerts,
	}})
}

// Step POST /api/simulation/step.
func (h *SimulationHandler) Step(c *fiber.Ctx) error {
	moves, err := h.simulation.SimulateStep(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(moves, func(m service.StepMove, _ int) dto.StepMoveResponse {
		return dto.StepMoveResponse{
			PatientID:  string(m.PatientID),
			FromStatus: string(m.FromStatus),
			ToStatus:   string(m.ToStatus),
			Department: string(m.Department),
		}
	})})
}
