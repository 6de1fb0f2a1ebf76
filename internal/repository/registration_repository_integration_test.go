//go:build integration

// Run with: TEST_DATABASE_URL=postgres://... go test -tags=integration ./internal/repository/...
package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

func openIntegrationDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// temp tables live on one session
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TEMP TABLE registration_list (
	id BIGSERIAL PRIMARY KEY,
	student_id BIGINT NOT NULL,
	course_code TEXT NOT NULL,
	section_number INT NOT NULL,
	status TEXT NOT NULL,
	enrollment_date TIMESTAMPTZ NOT NULL
)`)
	require.NoError(t, err)
	return db
}

func TestRegistrationRepositoryWaitlistPositionIntegration(t *testing.T) {
	db := openIntegrationDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)

	insert := func(studentID int64, key models.SectionKey, status models.RegistrationStatus, at time.Time) {
		t.Helper()
		require.NoError(t, repo.Insert(ctx, db, &models.Registration{
			StudentID:      studentID,
			CourseCode:     key.CourseCode,
			SectionNumber:  key.SectionNumber,
			Status:         status,
			EnrollmentDate: at,
		}))
	}

	// inserted out of date order; 104 and 105 share a date and rank by id
	insert(103, section1, models.RegistrationStatusWaitlisted, base.Add(3*time.Minute))
	insert(101, section1, models.RegistrationStatusWaitlisted, base.Add(time.Minute))
	insert(200, section1, models.RegistrationStatusEnrolled, base)
	insert(104, section1, models.RegistrationStatusWaitlisted, base.Add(4*time.Minute))
	insert(105, section1, models.RegistrationStatusWaitlisted, base.Add(4*time.Minute))
	insert(102, section1, models.RegistrationStatusWaitlisted, base.Add(2*time.Minute))
	insert(300, models.SectionKey{CourseCode: "CPSC449", SectionNumber: 2}, models.RegistrationStatusWaitlisted, base)
	insert(301, models.SectionKey{CourseCode: "CPSC335", SectionNumber: 1}, models.RegistrationStatusWaitlisted, base)

	for want, studentID := range []int64{101, 102, 103, 104, 105} {
		position, err := repo.WaitlistPosition(ctx, section1, studentID)
		require.NoError(t, err)
		assert.Equal(t, want+1, position, "student %d", studentID)
	}

	_, err := repo.WaitlistPosition(ctx, section1, 200)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
