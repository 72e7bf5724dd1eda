package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/patient-flow/internal/domain"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	issued := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }

	token, signed, err := tm.GenerateToken("coordinator-1", domain.OperatorRoleCoordinator)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token.ID == "" {
		t.Error("expected a token id")
	}
	if !token.ExpiresAt.Equal(issued.Add(30 * time.Minute)) {
		t.Errorf("unexpected expiry %s", token.ExpiresAt)
	}

	claims, err := tm.ParseToken(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "coordinator-1" || claims.Role != domain.OperatorRoleCoordinator {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	issued := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	tm := NewTokenManager("secret", 10)
	tm.now = func() time.Time { return issued }
	_, valid, err := tm.GenerateToken("op", domain.OperatorRoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, badRole, err := tm.GenerateToken("op", "JANITOR")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewTokenManager("other-secret", 10)
	other.now = tm.now
	expired := NewTokenManager("secret", 10)
	expired.now = func() time.Time { return issued.Add(11 * time.Minute) }
	foreign := NewTokenManager("secret", 10)
	foreign.now = tm.now
	foreign.issuer = "ticket-desk"
	_, foreignToken, err := foreign.GenerateToken("op", domain.OperatorRoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, noSubject, err := tm.GenerateToken("", domain.OperatorRoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := []struct {
		name    string
		manager *TokenManager
		token   string
	}{
		{"wrong secret", other, valid},
		{"expired", expired, valid},
		{"unknown role", tm, badRole},
		{"garbage", tm, "not-a-jwt"},
		{"other issuer", tm, foreignToken},
		{"no subject", tm, noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.manager.ParseToken(tt.token); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("ward-7-night", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(hash, "ward-7-night"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := ComparePassword(hash, "ward-7-day"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
	if cost, err := CheckHash(hash); err != nil || cost != 4 {
		t.Errorf("expected cost 4, got %d %v", cost, err)
	}
	if _, err := CheckHash("plaintext"); err == nil {
		t.Error("expected a malformed hash to be rejected")
	}
}

func TestPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		cost     int
		want     error
	}{
		{"too short", "short", 4, ErrPasswordTooShort},
		{"too long", strings.Repeat("x", 73), 4, ErrPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := HashPassword(tt.password, tt.cost); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if _, err := HashPassword("long-enough", 99); err == nil {
		t.Error("expected an out of range cost to fail")
	}
}

func newGuardedApp(m *AuthMiddleware, guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		Immutable: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var domainErr *apperrors.DomainError
			if errors.As(err, &domainErr) {
				return c.SendStatus(domainErr.HTTPStatus)
			}
			return c.SendStatus(http.StatusInternalServerError)
		},
	})
	app.Post("/guarded", m.Handle, guard, func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.Subject)
	})
	return app
}

func TestMiddlewareAndRoles(t *testing.T) {
	tm := NewTokenManager("secret", 10)
	_, viewer, _ := tm.GenerateToken("viewer", domain.OperatorRoleViewer)
	_, coordinator, _ := tm.GenerateToken("coord", domain.OperatorRoleCoordinator)
	_, admin, _ := tm.GenerateToken("admin", domain.OperatorRoleAdmin)

	tests := []struct {
		name    string
		enabled bool
		guard   fiber.Handler
		header  string
		want    int
	}{
		{"missing header", true, RequireCoordinator(), "", http.StatusUnauthorized},
		{"wrong scheme", true, RequireCoordinator(), "Basic " + coordinator, http.StatusUnauthorized},
		{"bad token", true, RequireCoordinator(), "Bearer nope", http.StatusUnauthorized},
		{"viewer denied", true, RequireCoordinator(), "Bearer " + viewer, http.StatusForbidden},
		{"coordinator allowed", true, RequireCoordinator(), "Bearer " + coordinator, http.StatusOK},
		{"coordinator not admin", true, RequireAdmin(), "Bearer " + coordinator, http.StatusForbidden},
		{"admin allowed", true, RequireAdmin(), "bearer " + admin, http.StatusOK},
		{"any role", true, RequireRole(), "Bearer " + viewer, http.StatusOK},
		{"disabled gate", false, RequireAdmin(), "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newGuardedApp(NewAuthMiddleware(tm, tt.enabled), tt.guard)
			req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
			challenged := resp.Header.Get(fiber.HeaderWWWAuthenticate) != ""
			if challenged != (tt.want == http.StatusUnauthorized) {
				t.Errorf("WWW-Authenticate present=%v for status %d", challenged, resp.StatusCode)
			}
		})
	}
}
