package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

type EmployeeRepository struct {
	pool PgxPool
}

func NewEmployeeRepository(pool PgxPool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// GetByNumber loads the employee with its job title, category and enrolled
// template in one round trip.
func (r *EmployeeRepository) GetByNumber(ctx context.Context, employeeNumber string) (*domain.Employee, error) {
	query := `
		SELECT e.id, e.employee_number, e.name, e.job_title_id, COALESCE(t.name, ''),
		       t.category_id, COALESCE(c.name, ''), e.supervisor_id,
		       e.template, e.template_version, e.is_active, e.created_at
		FROM employees e
		LEFT JOIN job_titles t ON t.id = e.job_title_id
		LEFT JOIN job_categories c ON c.id = t.category_id
		WHERE e.employee_number = $1
	`

	var emp domain.Employee
	var template *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, employeeNumber).Scan(
		&emp.ID,
		&emp.EmployeeNumber,
		&emp.Name,
		&emp.JobTitleID,
		&emp.JobTitle,
		&emp.CategoryID,
		&emp.Category,
		&emp.SupervisorID,
		&template,
		&emp.TemplateVersion,
		&emp.IsActive,
		&emp.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee by number: %w", err)
	}

	if template != nil && template.Slice() != nil {
		emp.Template = make(domain.Encoding, len(template.Slice()))
		for i, v := range template.Slice() {
			emp.Template[i] = float64(v)
		}
	}

	return &emp, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	query := `
		INSERT INTO employees (id, employee_number, name, job_title_id, supervisor_id, template, template_version, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		employee.ID,
		employee.EmployeeNumber,
		employee.Name,
		employee.JobTitleID,
		employee.SupervisorID,
		encodingToVector(employee.Template),
		employee.TemplateVersion,
		employee.IsActive,
	).Scan(&employee.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmployeeExists
		}
		return fmt.Errorf("create employee: %w", err)
	}

	return nil
}

// SetTemplate stores a freshly enrolled face template for the employee.
func (r *EmployeeRepository) SetTemplate(ctx context.Context, employeeID uuid.UUID, template domain.Encoding, version int) error {
	query := `
		UPDATE employees
		SET template = $2, template_version = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, employeeID, encodingToVector(template), version)
	if err != nil {
		return fmt.Errorf("set employee template: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrEmployeeNotFound
	}

	return nil
}

// encodingToVector converts a domain encoding to a pgvector value.
// Returns nil for an empty encoding so the column stays NULL.
func encodingToVector(enc domain.Encoding) *pgvector.Vector {
	if len(enc) == 0 {
		return nil
	}

	floats := make([]float32, len(enc))
	for i, v := range enc {
		floats[i] = float32(v)
	}
	vec := pgvector.NewVector(floats)
	return &vec
}
