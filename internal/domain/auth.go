package domain

import "time"

// OperatorRole differentiates dashboard operators.
type OperatorRole string

const (
	OperatorRoleViewer      OperatorRole = "VIEWER"
	OperatorRoleCoordinator OperatorRole = "COORDINATOR"
	OperatorRoleAdmin       OperatorRole = "ADMIN"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	SubjectID string
	Role      OperatorRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Valid reports whether r is a known operator role.
func (r OperatorRole) Valid() bool {
	switch r {
	case OperatorRoleViewer, OperatorRoleCoordinator, OperatorRoleAdmin:
		return true
	}
	return false
}
