package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

// RegistrationRepository handles persistence of registration list rows.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// CountWaitlisted returns the number of waitlisted registrations for the
// section. sql.ErrNoRows is returned when the section does not exist, so a
// zero count always means an existing section with an empty waitlist.
func (r *RegistrationRepository) CountWaitlisted(ctx context.Context, key models.SectionKey) (int, error) {
	return r.countWaitlisted(ctx, r.db, key)
}

// CountWaitlistedTx is CountWaitlisted bound to an open transaction.
func (r *RegistrationRepository) CountWaitlistedTx(ctx context.Context, exec sqlx.QueryerContext, key models.SectionKey) (int, error) {
	return r.countWaitlisted(ctx, exec, key)
}

func (r *RegistrationRepository) countWaitlisted(ctx context.Context, exec sqlx.QueryerContext, key models.SectionKey) (int, error) {
	const query = `SELECT COUNT(rl.id)
FROM sections s
LEFT JOIN registration_list rl
	ON rl.course_code = s.course_code
	AND rl.section_number = s.section_number
	AND rl.status = $3
WHERE s.course_code = $1 AND s.section_number = $2
GROUP BY s.course_code, s.section_number`
	var count int
	if err := sqlx.GetContext(ctx, exec, &count, query, key.CourseCode, key.SectionNumber, models.RegistrationStatusWaitlisted); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("count waitlisted registrations: %w", err)
	}
	return count, nil
}

// ExistsActive checks whether the student holds a non-dropped registration for the section.
func (r *RegistrationRepository) ExistsActive(ctx context.Context, exec sqlx.QueryerContext, studentID int64, key models.SectionKey) (bool, error) {
	const query = `SELECT 1 FROM registration_list
WHERE student_id = $1 AND course_code = $2 AND section_number = $3 AND status <> $4 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, exec, &exists, query, studentID, key.CourseCode, key.SectionNumber, models.RegistrationStatusDropped); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check active registration: %w", err)
	}
	return true, nil
}

// Insert persists a new registration row and fills in its generated ID.
func (r *RegistrationRepository) Insert(ctx context.Context, exec sqlx.QueryerContext, registration *models.Registration) error {
	const query = `INSERT INTO registration_list (student_id, course_code, section_number, status, enrollment_date)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := exec.QueryRowxContext(ctx, query,
		registration.StudentID,
		registration.CourseCode,
		registration.SectionNumber,
		registration.Status,
		registration.EnrollmentDate,
	).Scan(&registration.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRegistration
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// WaitlistPosition returns the 1-based rank of the student on the section's
// waitlist, earliest enrollment date first. sql.ErrNoRows is returned when
// the student is not waitlisted for the section.
func (r *RegistrationRepository) WaitlistPosition(ctx context.Context, key models.SectionKey, studentID int64) (int, error) {
	const query = `WITH waitlist AS (
	SELECT student_id, ROW_NUMBER() OVER (ORDER BY enrollment_date ASC, id ASC) AS position
	FROM registration_list
	WHERE course_code = $1 AND section_number = $2 AND status = $3
)
SELECT position FROM waitlist WHERE student_id = $4`
	var position int
	if err := r.db.GetContext(ctx, &position, query, key.CourseCode, key.SectionNumber, models.RegistrationStatusWaitlisted, studentID); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("resolve waitlist position: %w", err)
	}
	return position, nil
}

// ListWaitlist returns the section's waitlisted students in position order.
func (r *RegistrationRepository) ListWaitlist(ctx context.Context, key models.SectionKey) ([]models.WaitlistEntry, error) {
	const query = `SELECT
	ROW_NUMBER() OVER (ORDER BY rl.enrollment_date ASC, rl.id ASC) AS position,
	rl.student_id,
	COALESCE(u.first_name || ' ' || u.last_name, '') AS student_name,
	rl.enrollment_date
FROM registration_list rl
LEFT JOIN users u ON u.cwid = rl.student_id
WHERE rl.course_code = $1 AND rl.section_number = $2 AND rl.status = $3
ORDER BY position ASC`
	var entries []models.WaitlistEntry
	if err := r.db.SelectContext(ctx, &entries, query, key.CourseCode, key.SectionNumber, models.RegistrationStatusWaitlisted); err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	return entries, nil
}
