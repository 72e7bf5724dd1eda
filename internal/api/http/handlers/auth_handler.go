package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/patient-flow/internal/api/dto"
	"github.com/spec-kit/patient-flow/internal/service"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

// AuthHandler issues operator tokens.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	token, signed, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		Role:        string(token.Role),
		ExpiresAt:   token.ExpiresAt.UnixMilli(),
	}})
}
