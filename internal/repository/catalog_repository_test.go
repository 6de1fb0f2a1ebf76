package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepositoryListAvailable(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCatalogRepository(db, 15)

	rows := sqlmock.NewRows([]string{"course_code", "course_name", "department", "section_number", "current_enrollment", "max_enrollment", "waitlist", "instructor_first_name", "instructor_last_name"}).
		AddRow("CPSC449", "Web Back-End Engineering", "CS", 1, 28, 30, 15, "Kenytt", "Avery").
		AddRow("CPSC449", "Web Back-End Engineering", "CS", 2, 30, 30, 15, "Kenytt", "Avery")
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(s.waitlist, $2) AS waitlist")).
		WithArgs("CS'; DROP TABLE sections; --", 15).
		WillReturnRows(rows)

	classes, err := repo.ListAvailable(context.Background(), "CS'; DROP TABLE sections; --")
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, 2, classes[1].SectionNumber)
	assert.Equal(t, "Avery", classes[0].InstructorLastName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
