package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

const selectCapacityQuery = `SELECT course_code, section_number, current_enrollment, max_enrollment, waitlist, status
FROM sections WHERE course_code = $1 AND section_number = $2`

// SectionRepository reads and updates the section counters.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// GetCapacity returns the counters for a section. sql.ErrNoRows is returned
// when the section does not exist.
func (r *SectionRepository) GetCapacity(ctx context.Context, key models.SectionKey) (*models.SectionCapacity, error) {
	var capacity models.SectionCapacity
	if err := r.db.GetContext(ctx, &capacity, selectCapacityQuery, key.CourseCode, key.SectionNumber); err != nil {
		return nil, err
	}
	return &capacity, nil
}

// LockCapacity reads the counters and holds a row lock on the section until
// the surrounding transaction ends.
func (r *SectionRepository) LockCapacity(ctx context.Context, exec sqlx.QueryerContext, key models.SectionKey) (*models.SectionCapacity, error) {
	var capacity models.SectionCapacity
	if err := sqlx.GetContext(ctx, exec, &capacity, selectCapacityQuery+" FOR UPDATE", key.CourseCode, key.SectionNumber); err != nil {
		return nil, err
	}
	return &capacity, nil
}

// IncrementEnrollment takes one seat. The update only applies while a seat is
// open; ErrSectionFull is returned otherwise.
func (r *SectionRepository) IncrementEnrollment(ctx context.Context, exec sqlx.ExecerContext, key models.SectionKey) error {
	const query = `UPDATE sections SET current_enrollment = current_enrollment + 1
WHERE course_code = $1 AND section_number = $2 AND current_enrollment < max_enrollment`
	result, err := exec.ExecContext(ctx, query, key.CourseCode, key.SectionNumber)
	if err != nil {
		return fmt.Errorf("increment section enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment section enrollment: %w", err)
	}
	if affected != 1 {
		return ErrSectionFull
	}
	return nil
}

// Ping verifies the underlying pool is reachable.
func (r *SectionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
