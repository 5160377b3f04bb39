package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account. Supervisors wrap a user; superusers bypass
// the access resolver entirely.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	FullName     string    `json:"full_name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role distinguishes operator capability levels.
type Role string

const (
	RoleSuperuser  Role = "superuser"
	RoleSupervisor Role = "supervisor"
)

// Supervisor wraps an operator account and owns the set of categories and
// directly assigned employees it may mark attendance for.
type Supervisor struct {
	ID                 uuid.UUID   `json:"id"`
	UserID             uuid.UUID   `json:"user_id"`
	FullName           string      `json:"full_name"`
	AllowedCategoryIDs []uuid.UUID `json:"allowed_category_ids"`
	CreatedAt          time.Time   `json:"created_at"`
}

// JobCategory is the upper level of the two-level job classification.
type JobCategory struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// JobTitle belongs to exactly one category.
type JobTitle struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Employee is the subject of attendance verification. Template is the
// enrolled face encoding; it is nil until enrollment succeeds.
type Employee struct {
	ID              uuid.UUID  `json:"id"`
	EmployeeNumber  string     `json:"employee_number"`
	Name            string     `json:"name"`
	JobTitleID      *uuid.UUID `json:"job_title_id,omitempty"`
	JobTitle        string     `json:"job_title,omitempty"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	Category        string     `json:"category,omitempty"`
	SupervisorID    *uuid.UUID `json:"supervisor_id,omitempty"`
	Template        Encoding   `json:"-"`
	TemplateVersion int        `json:"-"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

// HasTemplate reports whether the employee has a usable enrolled template.
func (e *Employee) HasTemplate() bool {
	return e.Template.Valid()
}
