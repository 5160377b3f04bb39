package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

type VerificationRepository struct {
	pool PgxPool
}

func NewVerificationRepository(pool PgxPool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

func (r *VerificationRepository) Create(ctx context.Context, v *domain.Verification) error {
	query := `
		INSERT INTO verifications (id, employee_id, supervisor_id, success, confidence, blink_detected, reason, security_alert, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		v.ID,
		v.EmployeeID,
		v.SupervisorID,
		v.Success,
		v.Confidence,
		v.BlinkDetected,
		v.Reason,
		v.SecurityAlert,
		v.LatencyMs,
	).Scan(&v.CreatedAt)

	if err != nil {
		return fmt.Errorf("create verification: %w", err)
	}

	return nil
}
