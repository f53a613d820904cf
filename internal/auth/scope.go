package auth

import (
	"fmt"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
)

// Scope is a permission required by a use case operation
type Scope string

const (
	ScopeConfigurationsWrite  Scope = "configurations:write"
	ScopeStatementsImport     Scope = "statements:import"
	ScopeReconciliationsWrite Scope = "reconciliations:write"
	ScopeReconciliationsRead  Scope = "reconciliations:read"
	ScopeAdjustmentsWrite     Scope = "adjustments:write"
	ScopeAdjustmentsApprove   Scope = "adjustments:approve"
)

// AllScopes lists every scope known to the service
var AllScopes = []Scope{
	ScopeConfigurationsWrite,
	ScopeStatementsImport,
	ScopeReconciliationsWrite,
	ScopeReconciliationsRead,
	ScopeAdjustmentsWrite,
	ScopeAdjustmentsApprove,
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID   uint
	Email    string
	TenantID uint
	Scopes   []string
}

// Name identifies the actor in audit records
func (a *Actor) Name() string {
	if a.Email != "" {
		return a.Email
	}
	return fmt.Sprintf("user:%d", a.UserID)
}

// Has checks whether the actor was granted scope
func (a *Actor) Has(scope Scope) bool {
	for _, s := range a.Scopes {
		if Scope(s) == scope {
			return true
		}
	}
	return false
}

// Authorize fails with apperrors.ErrForbidden unless actor belongs to tenantID
// and holds scope.
func Authorize(actor *Actor, tenantID uint, scope Scope) error {
	if actor == nil {
		return fmt.Errorf("%w: no actor", apperrors.ErrForbidden)
	}
	if actor.TenantID == 0 || actor.TenantID != tenantID {
		return fmt.Errorf("%w: actor does not belong to tenant %d", apperrors.ErrForbidden, tenantID)
	}
	if !actor.Has(scope) {
		return fmt.Errorf("%w: missing scope %s", apperrors.ErrForbidden, scope)
	}
	return nil
}
