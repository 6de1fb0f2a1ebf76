package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

// CatalogRepository serves the read-only class listings students browse.
type CatalogRepository struct {
	db              *sqlx.DB
	defaultWaitlist int
}

// NewCatalogRepository constructs the repository. defaultWaitlist is reported
// for sections without a configured waitlist capacity.
func NewCatalogRepository(db *sqlx.DB, defaultWaitlist int) *CatalogRepository {
	return &CatalogRepository{db: db, defaultWaitlist: defaultWaitlist}
}

// ListAvailable returns every section offered by the department with its instructor.
func (r *CatalogRepository) ListAvailable(ctx context.Context, department string) ([]models.AvailableClass, error) {
	const query = `SELECT
	c.course_code,
	c.name AS course_name,
	c.department,
	s.section_number,
	s.current_enrollment,
	s.max_enrollment,
	COALESCE(s.waitlist, $2) AS waitlist,
	u.first_name AS instructor_first_name,
	u.last_name AS instructor_last_name
FROM classes c
JOIN sections s ON s.course_code = c.course_code
JOIN users u ON u.cwid = s.instructor_id
WHERE c.department = $1
ORDER BY c.course_code ASC, s.section_number ASC`
	var classes []models.AvailableClass
	if err := r.db.SelectContext(ctx, &classes, query, department, r.defaultWaitlist); err != nil {
		return nil, fmt.Errorf("list available classes: %w", err)
	}
	return classes, nil
}
