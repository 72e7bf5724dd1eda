package service

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/spec-kit/patient-flow/internal/auth"
	"github.com/spec-kit/patient-flow/internal/config"
	"github.com/spec-kit/patient-flow/internal/domain"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

// AuthService issues operator tokens against the configured credentials.
type AuthService struct {
	username     string
	passwordHash string
	role         domain.OperatorRole
	tokenMgr     *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, tokens *auth.TokenManager) *AuthService {
	role := domain.OperatorRole(strings.ToUpper(cfg.OperatorRole))
	if !role.Valid() {
		role = domain.OperatorRoleViewer
	}
	return &AuthService{
		username:     cfg.OperatorUsername,
		passwordHash: cfg.OperatorPasswordHash,
		role:         role,
		tokenMgr:     tokens,
	}
}

// Login verifies operator credentials and returns a signed access token.
func (s *AuthService) Login(_ context.Context, username, password string) (*domain.Token, string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, "", apperrors.NewValidationError("username and password are required", nil)
	}
	if s.passwordHash == "" {
		return nil, "", apperrors.NewUnauthorized("operator login is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) != 1 {
		return nil, "", apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(s.passwordHash, password); err != nil {
		return nil, "", apperrors.NewUnauthorized("invalid credentials")
	}

	token, signed, err := s.tokenMgr.GenerateToken(username, s.role)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	return token, signed, nil
}
