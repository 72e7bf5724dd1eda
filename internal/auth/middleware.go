package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/patient-flow/internal/domain"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

const principalKey = "auth_principal"

const bearerChallenge = `Bearer realm="patient-flow"`

// Principal represents the authenticated operator.
type Principal struct {
	Subject   string
	Role      domain.OperatorRole
	TokenID   string
	ExpiresAt time.Time
}

// anonymousAdmin is the principal used when the gate is disabled.
var anonymousAdmin = Principal{Subject: "anonymous", Role: domain.OperatorRoleAdmin}

// AuthMiddleware validates bearer tokens. When disabled every caller is
// treated as an administrator.
type AuthMiddleware struct {
	tokens  *TokenManager
	enabled bool
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, enabled: enabled}
}

// Handle enforces authentication for protected routes. Rejections carry a
// WWW-Authenticate challenge.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if !m.enabled {
		principal := anonymousAdmin
		c.Locals(principalKey, &principal)
		return c.Next()
	}

	token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		c.Set(fiber.HeaderWWWAuthenticate, bearerChallenge)
		return err
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		c.Set(fiber.HeaderWWWAuthenticate, bearerChallenge+`, error="invalid_token"`)
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{Subject: claims.Subject, Role: claims.Role, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewUnauthorized("missing authorization header")
	}
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return token, nil
}

// PrincipalFromContext retrieves the authenticated operator.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}
