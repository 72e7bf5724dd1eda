package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/patient-flow/internal/api/http/handlers"
	"github.com/spec-kit/patient-flow/internal/auth"
	"github.com/spec-kit/patient-flow/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Patients       *handlers.PatientsHandler
	Dashboard      *handlers.DashboardHandler
	Simulation     *handlers.SimulationHandler
	Advisory       *handlers.AdvisoryHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Reads are open; mutations need an operator token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api")
	coordinator := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireCoordinator()}
	admin := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAdmin()}

	patients := api.Group("/patients")
	patients.Get("/active", cfg.Patients.Active)
	patients.Get("/flow", cfg.Patients.Flow)
	patients.Get("/", cfg.Patients.List)
	patients.Get("/:id", cfg.Patients.Get)
	patients.Get("/:id/journey", cfg.Patients.Journey)
	patients.Post("/", append(coordinator, cfg.Patients.Admit)...)
	patients.Post("/:id/status", append(coordinator, cfg.Patients.UpdateStatus)...)
	patients.Post("/:id/assign", append(coordinator, cfg.Patients.AutoAssign)...)

	dashboard := api.Group("/dashboard")
	dashboard.Get("/metrics", cfg.Dashboard.Metrics)
	dashboard.Get("/departments", cfg.Dashboard.Departments)
	dashboard.Get("/alerts", cfg.Dashboard.Alerts)
	dashboard.Get("/recommendations", cfg.Dashboard.Recommendations)
	dashboard.Get("/predictions", cfg.Dashboard.Predictions)
	dashboard.Get("/snapshots", cfg.Dashboard.Snapshots)
	dashboard.Post("/snapshots", append(coordinator, cfg.Dashboard.CaptureSnapshot)...)

	api.Get("/staff", cfg.Dashboard.Staff)
	api.Get("/resources", cfg.Dashboard.Resources)

	simulation := api.Group("/simulation")
	simulation.Post("/generate", append(admin, cfg.Simulation.Generate)...)
	simulation.Post("/predictions", append(admin, cfg.Simulation.Predictions)...)
	simulation.Post("/step", append(coordinator, cfg.Simulation.Step)...)

	api.Post("/recommendations/:id/implement", append(coordinator, cfg.Advisory.Implement)...)
	api.Post("/recommendations/:id/dismiss", append(coordinator, cfg.Advisory.Dismiss)...)
	api.Post("/alerts/:id/acknowledge", append(coordinator, cfg.Advisory.Acknowledge)...)
}
