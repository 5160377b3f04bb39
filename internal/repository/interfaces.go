package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool used by the repositories.
// pgxmock.PgxPoolIface satisfies it, so repositories can be tested without
// a live database.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepositoryInterface defines operations for operator account data access
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// SupervisorRepositoryInterface defines operations for supervisor data access
type SupervisorRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Supervisor, error)
	Create(ctx context.Context, supervisor *domain.Supervisor) error
	SetAllowedCategories(ctx context.Context, supervisorID uuid.UUID, categoryIDs []uuid.UUID) error
}

// EmployeeRepositoryInterface defines operations for employee data access
type EmployeeRepositoryInterface interface {
	GetByNumber(ctx context.Context, employeeNumber string) (*domain.Employee, error)
	Create(ctx context.Context, employee *domain.Employee) error
	SetTemplate(ctx context.Context, employeeID uuid.UUID, template domain.Encoding, version int) error
}

// AttendanceRepositoryInterface defines operations for attendance data access
type AttendanceRepositoryInterface interface {
	Create(ctx context.Context, record *domain.AttendanceRecord) error
	GetByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date string) (*domain.AttendanceRecord, error)
	ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error)
}

// VerificationRepositoryInterface defines operations for attempt audit logging
type VerificationRepositoryInterface interface {
	Create(ctx context.Context, v *domain.Verification) error
}
