// Package access resolves whether a supervisor may mark attendance for an
// employee. Superuser bypass is a capability decision made by the caller
// before this resolver runs; the resolver only evaluates the data
// relationship between supervisor and employee.
package access

import (
	"github.com/google/uuid"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

// Resolver answers supervisor-to-employee authorization queries.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Authorize reports whether the supervisor may act on the employee:
// either the employee is directly assigned to the supervisor, or the
// employee's job category is among the supervisor's allowed categories.
// Employees without a job title have no category and are reachable only
// through direct assignment.
func (r *Resolver) Authorize(actor *domain.Supervisor, employee *domain.Employee) bool {
	if actor == nil || employee == nil {
		return false
	}

	if employee.SupervisorID != nil && *employee.SupervisorID == actor.ID {
		return true
	}

	if employee.CategoryID == nil {
		return false
	}

	return containsID(actor.AllowedCategoryIDs, *employee.CategoryID)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
