package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

type SupervisorRepository struct {
	pool PgxPool
}

func NewSupervisorRepository(pool PgxPool) *SupervisorRepository {
	return &SupervisorRepository{pool: pool}
}

// GetByUserID loads the supervisor profile for an operator account together
// with the category IDs the supervisor may mark attendance for.
func (r *SupervisorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Supervisor, error) {
	query := `
		SELECT s.id, s.user_id, s.full_name, s.created_at
		FROM supervisors s
		WHERE s.user_id = $1
	`

	var sup domain.Supervisor
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&sup.ID,
		&sup.UserID,
		&sup.FullName,
		&sup.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSupervisorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get supervisor by user_id: %w", err)
	}

	categoryQuery := `
		SELECT category_id
		FROM supervisor_categories
		WHERE supervisor_id = $1
		ORDER BY category_id
	`

	rows, err := r.pool.Query(ctx, categoryQuery, sup.ID)
	if err != nil {
		return nil, fmt.Errorf("get supervisor categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryID uuid.UUID
		if err := rows.Scan(&categoryID); err != nil {
			return nil, fmt.Errorf("scan supervisor category: %w", err)
		}
		sup.AllowedCategoryIDs = append(sup.AllowedCategoryIDs, categoryID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supervisor categories: %w", err)
	}

	return &sup, nil
}

func (r *SupervisorRepository) Create(ctx context.Context, supervisor *domain.Supervisor) error {
	query := `
		INSERT INTO supervisors (id, user_id, full_name, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	if supervisor.ID == uuid.Nil {
		supervisor.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		supervisor.ID,
		supervisor.UserID,
		supervisor.FullName,
	).Scan(&supervisor.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBadRequest.WithError(fmt.Errorf("supervisor profile already exists for user"))
		}
		return fmt.Errorf("create supervisor: %w", err)
	}

	return nil
}

// SetAllowedCategories replaces the supervisor's category assignments.
func (r *SupervisorRepository) SetAllowedCategories(ctx context.Context, supervisorID uuid.UUID, categoryIDs []uuid.UUID) error {
	deleteQuery := `
		DELETE FROM supervisor_categories
		WHERE supervisor_id = $1
	`

	if _, err := r.pool.Exec(ctx, deleteQuery, supervisorID); err != nil {
		return fmt.Errorf("clear supervisor categories: %w", err)
	}

	insertQuery := `
		INSERT INTO supervisor_categories (supervisor_id, category_id)
		VALUES ($1, $2)
	`

	for _, categoryID := range categoryIDs {
		if _, err := r.pool.Exec(ctx, insertQuery, supervisorID, categoryID); err != nil {
			return fmt.Errorf("assign supervisor category: %w", err)
		}
	}

	return nil
}
