package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Create inserts an attendance record. The attendance table carries a unique
// constraint on (employee_id, date); when two attempts race, exactly one
// insert wins and the loser gets domain.ErrAttendanceExists.
func (r *AttendanceRepository) Create(ctx context.Context, record *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance (id, employee_id, date, time, latitude, longitude, marked_by, created_at)
		VALUES ($1, $2, $3::date, $4::time, $5, $6, $7, NOW())
		RETURNING created_at
	`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.EmployeeID,
		record.Date,
		record.Time,
		record.Latitude,
		record.Longitude,
		record.MarkedByID,
	).Scan(&record.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAttendanceExists
		}
		return fmt.Errorf("create attendance: %w", err)
	}

	return nil
}

// GetByEmployeeAndDate returns the attendance record for an employee on a
// calendar date, or domain.ErrNotFound when none exists.
func (r *AttendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date string) (*domain.AttendanceRecord, error) {
	query := `
		SELECT a.id, a.employee_id, e.employee_number, e.name,
		       to_char(a.date, 'YYYY-MM-DD'), to_char(a.time, 'HH24:MI:SS'),
		       a.latitude, a.longitude, a.marked_by, a.created_at
		FROM attendance a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1 AND a.date = $2::date
	`

	var record domain.AttendanceRecord
	err := r.pool.QueryRow(ctx, query, employeeID, date).Scan(
		&record.ID,
		&record.EmployeeID,
		&record.EmployeeNumber,
		&record.EmployeeName,
		&record.Date,
		&record.Time,
		&record.Latitude,
		&record.Longitude,
		&record.MarkedByID,
		&record.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attendance by employee and date: %w", err)
	}

	return &record, nil
}

// ListByDate returns all attendance records for a calendar date with
// employee, job and supervisor details joined in, newest first.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT a.id, a.employee_id, e.employee_number, e.name,
		       to_char(a.date, 'YYYY-MM-DD'), to_char(a.time, 'HH24:MI:SS'),
		       a.latitude, a.longitude, COALESCE(t.name, ''), COALESCE(c.name, ''),
		       a.marked_by, COALESCE(s.full_name, ''), a.created_at
		FROM attendance a
		JOIN employees e ON e.id = a.employee_id
		LEFT JOIN job_titles t ON t.id = e.job_title_id
		LEFT JOIN job_categories c ON c.id = t.category_id
		LEFT JOIN supervisors s ON s.id = a.marked_by
		WHERE a.date = $1::date
		ORDER BY a.time DESC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var record domain.AttendanceRecord
		err := rows.Scan(
			&record.ID,
			&record.EmployeeID,
			&record.EmployeeNumber,
			&record.EmployeeName,
			&record.Date,
			&record.Time,
			&record.Latitude,
			&record.Longitude,
			&record.JobTitle,
			&record.Category,
			&record.MarkedByID,
			&record.MarkedByName,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}

	return records, nil
}
