package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

func testTemplate() pgvector.Vector {
	floats := make([]float32, domain.EncodingDim)
	for i := range floats {
		floats[i] = float32(i) / float32(domain.EncodingDim)
	}
	return pgvector.NewVector(floats)
}

// EmployeeRepository Tests

func TestEmployeeRepository_GetByNumber(t *testing.T) {
	employeeID := uuid.New()
	titleID := uuid.New()
	categoryID := uuid.New()
	supervisorID := uuid.New()
	now := time.Now()

	tests := []struct {
		name           string
		employeeNumber string
		mockSetup      func(mock pgxmock.PgxPoolIface)
		wantErr        error
		check          func(t *testing.T, got *domain.Employee)
	}{
		{
			name:           "successful retrieval with template",
			employeeNumber: "EMP-001",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				template := testTemplate()
				rows := pgxmock.NewRows([]string{
					"id", "employee_number", "name", "job_title_id", "job_title",
					"category_id", "category", "supervisor_id",
					"template", "template_version", "is_active", "created_at",
				}).AddRow(
					employeeID,
					"EMP-001",
					"Jordan Reyes",
					&titleID,
					"Welder",
					&categoryID,
					"Production",
					&supervisorID,
					&template,
					1,
					true,
					now,
				)

				mock.ExpectQuery(`SELECT e.id, e.employee_number, e.name`).
					WithArgs("EMP-001").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, got *domain.Employee) {
				assert.Equal(t, employeeID, got.ID)
				assert.Equal(t, "Jordan Reyes", got.Name)
				assert.Equal(t, "Welder", got.JobTitle)
				assert.Equal(t, "Production", got.Category)
				require.NotNil(t, got.CategoryID)
				assert.Equal(t, categoryID, *got.CategoryID)
				assert.Len(t, got.Template, domain.EncodingDim)
				assert.True(t, got.HasTemplate())
			},
		},
		{
			name:           "employee without template",
			employeeNumber: "EMP-002",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{
					"id", "employee_number", "name", "job_title_id", "job_title",
					"category_id", "category", "supervisor_id",
					"template", "template_version", "is_active", "created_at",
				}).AddRow(
					employeeID,
					"EMP-002",
					"Sam Okafor",
					nil,
					"",
					nil,
					"",
					nil,
					nil,
					0,
					true,
					now,
				)

				mock.ExpectQuery(`SELECT e.id, e.employee_number, e.name`).
					WithArgs("EMP-002").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, got *domain.Employee) {
				assert.False(t, got.HasTemplate())
				assert.Nil(t, got.CategoryID)
				assert.Nil(t, got.SupervisorID)
			},
		},
		{
			name:           "employee not found",
			employeeNumber: "EMP-404",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT e.id, e.employee_number, e.name`).
					WithArgs("EMP-404").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrEmployeeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewEmployeeRepository(mock)
			got, err := repo.GetByNumber(context.Background(), tt.employeeNumber)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				tt.check(t, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEmployeeRepository_SetTemplate(t *testing.T) {
	employeeID := uuid.New()
	template := make(domain.Encoding, domain.EncodingDim)
	for i := range template {
		template[i] = 0.5
	}

	t.Run("successful update", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE employees`).
			WithArgs(employeeID, pgxmock.AnyArg(), 1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewEmployeeRepository(mock)
		err = repo.SetTemplate(context.Background(), employeeID, template, 1)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("employee not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE employees`).
			WithArgs(employeeID, pgxmock.AnyArg(), 1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewEmployeeRepository(mock)
		err = repo.SetTemplate(context.Background(), employeeID, template, 1)

		assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	})
}

// AttendanceRepository Tests

func TestAttendanceRepository_Create(t *testing.T) {
	employeeID := uuid.New()
	supervisorID := uuid.New()
	now := time.Now()

	newRecord := func() *domain.AttendanceRecord {
		return &domain.AttendanceRecord{
			EmployeeID: employeeID,
			Date:       "2026-08-29",
			Time:       "08:15:42",
			MarkedByID: &supervisorID,
		}
	}

	t.Run("successful insert", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO attendance`).
			WithArgs(pgxmock.AnyArg(), employeeID, "2026-08-29", "08:15:42", pgxmock.AnyArg(), pgxmock.AnyArg(), &supervisorID).
			WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

		repo := NewAttendanceRepository(mock)
		record := newRecord()
		err = repo.Create(context.Background(), record)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.Equal(t, now, record.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate day maps to attendance exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO attendance`).
			WithArgs(pgxmock.AnyArg(), employeeID, "2026-08-29", "08:15:42", pgxmock.AnyArg(), pgxmock.AnyArg(), &supervisorID).
			WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "attendance_employee_id_date_key" (SQLSTATE 23505)`))

		repo := NewAttendanceRepository(mock)
		err = repo.Create(context.Background(), newRecord())

		assert.ErrorIs(t, err, domain.ErrAttendanceExists)
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO attendance`).
			WithArgs(pgxmock.AnyArg(), employeeID, "2026-08-29", "08:15:42", pgxmock.AnyArg(), pgxmock.AnyArg(), &supervisorID).
			WillReturnError(errors.New("connection refused"))

		repo := NewAttendanceRepository(mock)
		err = repo.Create(context.Background(), newRecord())

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrAttendanceExists)
		assert.Contains(t, err.Error(), "create attendance")
	})
}

func TestAttendanceRepository_GetByEmployeeAndDate(t *testing.T) {
	employeeID := uuid.New()
	recordID := uuid.New()
	now := time.Now()

	t.Run("record exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{
			"id", "employee_id", "employee_number", "name", "date", "time",
			"latitude", "longitude", "marked_by", "created_at",
		}).AddRow(
			recordID, employeeID, "EMP-001", "Jordan Reyes",
			"2026-08-29", "08:15:42", nil, nil, nil, now,
		)

		mock.ExpectQuery(`SELECT a.id, a.employee_id`).
			WithArgs(employeeID, "2026-08-29").
			WillReturnRows(rows)

		repo := NewAttendanceRepository(mock)
		got, err := repo.GetByEmployeeAndDate(context.Background(), employeeID, "2026-08-29")

		require.NoError(t, err)
		assert.Equal(t, "08:15:42", got.Time)
		assert.Equal(t, "EMP-001", got.EmployeeNumber)
	})

	t.Run("no record", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT a.id, a.employee_id`).
			WithArgs(employeeID, "2026-08-29").
			WillReturnError(pgx.ErrNoRows)

		repo := NewAttendanceRepository(mock)
		_, err = repo.GetByEmployeeAndDate(context.Background(), employeeID, "2026-08-29")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAttendanceRepository_ListByDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	firstID := uuid.New()
	secondID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "employee_id", "employee_number", "name", "date", "time",
		"latitude", "longitude", "job_title", "category",
		"marked_by", "marked_by_name", "created_at",
	}).AddRow(
		firstID, uuid.New(), "EMP-002", "Sam Okafor",
		"2026-08-29", "09:02:10", nil, nil, "Electrician", "Maintenance",
		nil, "", now,
	).AddRow(
		secondID, uuid.New(), "EMP-001", "Jordan Reyes",
		"2026-08-29", "08:15:42", nil, nil, "Welder", "Production",
		nil, "", now,
	)

	mock.ExpectQuery(`SELECT a.id, a.employee_id`).
		WithArgs("2026-08-29").
		WillReturnRows(rows)

	repo := NewAttendanceRepository(mock)
	records, err := repo.ListByDate(context.Background(), "2026-08-29")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "EMP-002", records[0].EmployeeNumber)
	assert.Equal(t, "Maintenance", records[0].Category)
	assert.Equal(t, "EMP-001", records[1].EmployeeNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// SupervisorRepository Tests

func TestSupervisorRepository_GetByUserID(t *testing.T) {
	userID := uuid.New()
	supervisorID := uuid.New()
	firstCategory := uuid.New()
	secondCategory := uuid.New()
	now := time.Now()

	t.Run("supervisor with categories", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT s.id, s.user_id, s.full_name`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "full_name", "created_at"}).
				AddRow(supervisorID, userID, "Alex Moreau", now))

		mock.ExpectQuery(`SELECT category_id`).
			WithArgs(supervisorID).
			WillReturnRows(pgxmock.NewRows([]string{"category_id"}).
				AddRow(firstCategory).
				AddRow(secondCategory))

		repo := NewSupervisorRepository(mock)
		got, err := repo.GetByUserID(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, supervisorID, got.ID)
		assert.Equal(t, "Alex Moreau", got.FullName)
		assert.Equal(t, []uuid.UUID{firstCategory, secondCategory}, got.AllowedCategoryIDs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("supervisor not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT s.id, s.user_id, s.full_name`).
			WithArgs(userID).
			WillReturnError(pgx.ErrNoRows)

		repo := NewSupervisorRepository(mock)
		_, err = repo.GetByUserID(context.Background(), userID)

		assert.ErrorIs(t, err, domain.ErrSupervisorNotFound)
	})
}

// UserRepository Tests

func TestUserRepository_GetByUsername(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	t.Run("successful retrieval", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{
			"id", "username", "email", "password_hash", "role", "full_name", "is_active", "created_at",
		}).AddRow(
			userID, "amoreau", "amoreau@example.com", "$2a$10$hash",
			domain.RoleSupervisor, "Alex Moreau", true, now,
		)

		mock.ExpectQuery(`SELECT id, username, email`).
			WithArgs("amoreau").
			WillReturnRows(rows)

		repo := NewUserRepository(mock)
		got, err := repo.GetByUsername(context.Background(), "amoreau")

		require.NoError(t, err)
		assert.Equal(t, domain.RoleSupervisor, got.Role)
		assert.True(t, got.IsActive)
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, username, email`).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		repo := NewUserRepository(mock)
		_, err = repo.GetByUsername(context.Background(), "ghost")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// VerificationRepository Tests

func TestVerificationRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	employeeID := uuid.New()
	supervisorID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO verifications`).
		WithArgs(pgxmock.AnyArg(), &employeeID, &supervisorID, false, 0.41, true,
			domain.ReasonNoMatch, domain.AlertMessage(domain.AlertUnauthorized), int64(230)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	repo := NewVerificationRepository(mock)
	v := &domain.Verification{
		EmployeeID:    &employeeID,
		SupervisorID:  &supervisorID,
		Success:       false,
		Confidence:    0.41,
		BlinkDetected: true,
		Reason:        domain.ReasonNoMatch,
		SecurityAlert: domain.AlertMessage(domain.AlertUnauthorized),
		LatencyMs:     230,
	}

	err = repo.Create(context.Background(), v)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
