package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

func TestTally(t *testing.T) {
	s := tally([]attempt{
		{Outcome: "enrolled", Duration: time.Millisecond},
		{Outcome: "waitlisted", Duration: 3 * time.Millisecond},
		{Outcome: "enrolled", Duration: 2 * time.Millisecond},
		{Err: errors.New("timeout")},
	})
	assert.Equal(t, 2, s.Outcomes["enrolled"])
	assert.Equal(t, 1, s.Outcomes["waitlisted"])
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 3*time.Millisecond, s.Slowest)
}

func TestCheckInvariants(t *testing.T) {
	before := snapshot{Section: &models.AvailableClass{CurrentEnrollment: 28, MaxEnrollment: 30, Waitlist: 5}, Waitlisted: 3}

	ok := checkInvariants(before,
		snapshot{Section: &models.AvailableClass{CurrentEnrollment: 30, MaxEnrollment: 30, Waitlist: 5}, Waitlisted: 5},
		summary{Outcomes: map[string]int{"enrolled": 2, "waitlisted": 2, "not_eligible": 6}})
	assert.Empty(t, ok)

	bad := checkInvariants(before,
		snapshot{Section: &models.AvailableClass{CurrentEnrollment: 31, MaxEnrollment: 30, Waitlist: 5}, Waitlisted: 6},
		summary{Outcomes: map[string]int{"enrolled": 3, "waitlisted": 3}})
	assert.Len(t, bad, 4)
}

func TestCheckInvariantsCountsExistingWaitlist(t *testing.T) {
	before := snapshot{Section: &models.AvailableClass{CurrentEnrollment: 30, MaxEnrollment: 30, Waitlist: 15}, Waitlisted: 14}
	after := snapshot{Section: &models.AvailableClass{CurrentEnrollment: 30, MaxEnrollment: 30, Waitlist: 15}, Waitlisted: 16}

	problems := checkInvariants(before, after, summary{Outcomes: map[string]int{"waitlisted": 2}})
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0], "2 students waitlisted into 1 free waitlist spots")
	assert.Contains(t, problems[1], "beyond capacity 15")
}

func TestCheckInvariantsRosterMismatch(t *testing.T) {
	before := snapshot{Section: &models.AvailableClass{CurrentEnrollment: 30, MaxEnrollment: 30, Waitlist: 15}, Waitlisted: 4}
	after := snapshot{Section: &models.AvailableClass{CurrentEnrollment: 30, MaxEnrollment: 30, Waitlist: 15}, Waitlisted: 4}

	problems := checkInvariants(before, after, summary{Outcomes: map[string]int{"waitlisted": 1}})
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "roster grew by 0")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	key := models.SectionKey{CourseCode: "CPSC449", SectionNumber: 1}
	printReport(&buf, key,
		snapshot{Section: &models.AvailableClass{CurrentEnrollment: 28, MaxEnrollment: 30, Waitlist: 15}, Waitlisted: 2},
		snapshot{Section: &models.AvailableClass{CurrentEnrollment: 30, MaxEnrollment: 30, Waitlist: 15}, Waitlisted: 3},
		summary{Outcomes: map[string]int{"waitlisted": 1, "enrolled": 2}, Slowest: time.Second})

	out := buf.String()
	assert.Contains(t, out, "28/30 before, 30/30 after")
	assert.Contains(t, out, "Waitlist: 2/15 before, 3/15 after")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("enrolled")), bytes.Index(buf.Bytes(), []byte("waitlisted")))
	assert.Contains(t, out, "slowest attempt: 1s")
}

func TestRootCmdRejectsNonPositiveStudents(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--students", "0"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--students")
}

func TestRootCmdDefaults(t *testing.T) {
	cmd := newRootCmd()
	flags := cmd.Flags()

	course, err := flags.GetString("course")
	require.NoError(t, err)
	assert.Equal(t, "CPSC449", course)

	students, err := flags.GetInt("students")
	require.NoError(t, err)
	assert.Equal(t, 50, students)
}
