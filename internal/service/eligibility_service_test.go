package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type countingWaitlist struct {
	count int
	err   error
	calls int
}

func (c *countingWaitlist) CountWaitlisted(ctx context.Context, key models.SectionKey) (int, error) {
	c.calls++
	return c.count, c.err
}

func TestEligibilityServiceDecide(t *testing.T) {
	tests := []struct {
		name     string
		section  models.SectionCapacity
		waitlist int
		want     models.EnrollmentDecision
		counted  bool
	}{
		{name: "open seat", section: models.SectionCapacity{CurrentEnrollment: 10, MaxEnrollment: 30, WaitlistCapacity: intPtr(15), Status: models.SectionStatusOpen}, want: models.DecisionEnrolled},
		{name: "last seat", section: models.SectionCapacity{CurrentEnrollment: 29, MaxEnrollment: 30, WaitlistCapacity: intPtr(15), Status: models.SectionStatusOpen}, want: models.DecisionEnrolled},
		{name: "full with waitlist room", section: models.SectionCapacity{CurrentEnrollment: 30, MaxEnrollment: 30, WaitlistCapacity: intPtr(15), Status: models.SectionStatusOpen}, waitlist: 10, want: models.DecisionWaitlisted, counted: true},
		{name: "waitlist exactly full", section: models.SectionCapacity{CurrentEnrollment: 30, MaxEnrollment: 30, WaitlistCapacity: intPtr(15), Status: models.SectionStatusOpen}, waitlist: 15, want: models.DecisionNotEligible, counted: true},
		{name: "closed with seats", section: models.SectionCapacity{CurrentEnrollment: 3, MaxEnrollment: 30, WaitlistCapacity: intPtr(15), Status: models.SectionStatusClosed}, want: models.DecisionNotEligible},
		{name: "null waitlist uses default", section: models.SectionCapacity{CurrentEnrollment: 30, MaxEnrollment: 30, Status: models.SectionStatusOpen}, waitlist: 14, want: models.DecisionWaitlisted, counted: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.section.CourseCode, tc.section.SectionNumber = cpsc449.CourseCode, cpsc449.SectionNumber
			counter := &countingWaitlist{count: tc.waitlist}
			svc := NewEligibilityService(newSectionStore(tc.section), counter, 15, nil, nil)

			decision, err := svc.Decide(context.Background(), cpsc449)
			require.NoError(t, err)
			assert.Equal(t, tc.want, decision)
			assert.Equal(t, tc.counted, counter.calls > 0)
		})
	}
}

func TestEligibilityServiceDecideMissingSection(t *testing.T) {
	svc := NewEligibilityService(newSectionStore(), &countingWaitlist{}, 15, nil, nil)

	_, err := svc.Decide(context.Background(), cpsc449)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "section_number:1 and course_code:CPSC449")
}

func TestEligibilityServiceDecideCountFailure(t *testing.T) {
	section := models.SectionCapacity{CourseCode: "CPSC449", SectionNumber: 1, CurrentEnrollment: 30, MaxEnrollment: 30, Status: models.SectionStatusOpen}
	svc := NewEligibilityService(newSectionStore(section), &countingWaitlist{err: errors.New("timeout")}, 15, nil, nil)

	_, err := svc.Decide(context.Background(), cpsc449)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

func TestEligibilityServiceValidatesKey(t *testing.T) {
	svc := NewEligibilityService(newSectionStore(), &countingWaitlist{}, 15, nil, nil)

	_, err := svc.Decide(context.Background(), models.SectionKey{CourseCode: "", SectionNumber: 1})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAdmitProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seats := rapid.IntRange(0, 200).Draw(rt, "max")
		current := rapid.IntRange(0, seats).Draw(rt, "current")
		waitlistCap := rapid.IntRange(0, 50).Draw(rt, "waitlistCap")
		waitlisted := rapid.IntRange(0, 60).Draw(rt, "waitlisted")
		closed := rapid.Bool().Draw(rt, "closed")
		requested := rapid.SampledFrom([]models.EnrollmentDecision{models.DecisionEnrolled, models.DecisionWaitlisted}).Draw(rt, "requested")

		status := models.SectionStatusOpen
		if closed {
			status = models.SectionStatusClosed
		}
		section := models.SectionCapacity{CurrentEnrollment: current, MaxEnrollment: seats, WaitlistCapacity: &waitlistCap, Status: status}

		counted := false
		decision, err := admit(requested, section, 15, func() (int, error) {
			counted = true
			return waitlisted, nil
		})
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}

		switch {
		case closed:
			if decision != models.DecisionNotEligible {
				rt.Fatalf("closed section admitted %s", decision)
			}
		case requested == models.DecisionEnrolled && seats-current >= 1:
			if decision != models.DecisionEnrolled || counted {
				rt.Fatalf("open seat should enroll without counting, got %s counted=%v", decision, counted)
			}
		case waitlistCap > waitlisted:
			if decision != models.DecisionWaitlisted {
				rt.Fatalf("waitlist room should waitlist, got %s", decision)
			}
		default:
			if decision != models.DecisionNotEligible {
				rt.Fatalf("exhausted section should reject, got %s", decision)
			}
		}
		if decision == models.DecisionEnrolled && current >= seats {
			rt.Fatalf("enrolled into a full section")
		}
	})
}
