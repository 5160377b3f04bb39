//go:build integration

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "attendance_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/attendance_test?sslmode=disable", host, port.Port())

	db, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		CREATE EXTENSION IF NOT EXISTS "vector";

		CREATE TABLE IF NOT EXISTS employees (
			id UUID PRIMARY KEY,
			employee_number VARCHAR(64) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			job_title_id UUID,
			template vector(128),
			template_version INT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS attendance (
			id UUID PRIMARY KEY,
			employee_id UUID NOT NULL REFERENCES employees(id),
			date DATE NOT NULL,
			time TIME NOT NULL,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			marked_by UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(employee_id, date)
		);
	`)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func insertTestEmployee(t *testing.T, db *pgxpool.Pool, number string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(),
		`INSERT INTO employees (id, employee_number, name) VALUES ($1, $2, $3)`,
		id, number, "Integration Employee",
	)
	require.NoError(t, err)
	return id
}

// TestAttendanceCreate_ConcurrentDuplicates drives N simultaneous inserts for
// the same employee and date against a real database. The unique constraint
// must let exactly one through and hand every loser ErrAttendanceExists.
func TestAttendanceCreate_ConcurrentDuplicates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewAttendanceRepository(db)
	employeeID := insertTestEmployee(t, db, "EMP-RACE")

	const attempts = 16

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			record := &domain.AttendanceRecord{
				EmployeeID: employeeID,
				Date:       "2025-03-14",
				Time:       fmt.Sprintf("08:00:%02d", i),
			}
			errs[i] = repo.Create(ctx, record)
		}(i)
	}

	close(start)
	wg.Wait()

	var committed, duplicates int
	for i, err := range errs {
		switch {
		case err == nil:
			committed++
		case assert.ErrorIs(t, err, domain.ErrAttendanceExists, "attempt %d returned unexpected error", i):
			duplicates++
		}
	}

	assert.Equal(t, 1, committed, "exactly one concurrent insert must win")
	assert.Equal(t, attempts-1, duplicates, "every loser must see the duplicate error")

	// The surviving row must be readable by the loser's recovery path.
	existing, err := repo.GetByEmployeeAndDate(ctx, employeeID, "2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, employeeID, existing.EmployeeID)
	assert.Equal(t, "2025-03-14", existing.Date)
}

func TestAttendanceCreate_DistinctDatesAndEmployees(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewAttendanceRepository(db)

	first := insertTestEmployee(t, db, "EMP-A")
	second := insertTestEmployee(t, db, "EMP-B")

	// Same employee on different dates, and different employees on the same
	// date, must all commit.
	records := []*domain.AttendanceRecord{
		{EmployeeID: first, Date: "2025-03-14", Time: "08:00:00"},
		{EmployeeID: first, Date: "2025-03-15", Time: "08:05:00"},
		{EmployeeID: second, Date: "2025-03-14", Time: "08:10:00"},
	}
	for _, record := range records {
		require.NoError(t, repo.Create(ctx, record))
	}

	listed, err := repo.ListByDate(ctx, "2025-03-14")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
