package service

import (
	"context"
	"testing"

	"github.com/spec-kit/patient-flow/internal/auth"
	"github.com/spec-kit/patient-flow/internal/config"
	"github.com/spec-kit/patient-flow/internal/domain"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

func TestAuthServiceLogin(t *testing.T) {
	hash, err := auth.HashPassword("triage-desk!", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	tokens := auth.NewTokenManager("secret", 15)
	svc := NewAuthService(config.AuthConfig{
		OperatorUsername:     "flowdesk",
		OperatorPasswordHash: hash,
		OperatorRole:         "coordinator",
	}, tokens)

	token, signed, err := svc.Login(context.Background(), "flowdesk", "triage-desk!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.Role != domain.OperatorRoleCoordinator {
		t.Errorf("expected COORDINATOR, got %s", token.Role)
	}
	claims, err := tokens.ParseToken(signed)
	if err != nil || claims.Subject != "flowdesk" {
		t.Errorf("issued token does not parse back: %v %+v", err, claims)
	}

	tests := []struct {
		name     string
		username string
		password string
		check    func(error) bool
	}{
		{"blank username", " ", "triage-desk!", apperrors.IsValidation},
		{"blank password", "flowdesk", "", apperrors.IsValidation},
		{"wrong username", "someone", "triage-desk!", isUnauthorized},
		{"wrong password", "flowdesk", "nope", isUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Login(context.Background(), tt.username, tt.password); !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAuthServiceWithoutConfiguredHash(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{OperatorUsername: "admin", OperatorRole: "bogus"}, auth.NewTokenManager("s", 1))
	if svc.role != domain.OperatorRoleViewer {
		t.Errorf("unknown role should fall back to VIEWER, got %s", svc.role)
	}
	if _, _, err := svc.Login(context.Background(), "admin", "anything"); !isUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func isUnauthorized(err error) bool { return apperrors.IsCode(err, "UNAUTHORIZED") }
