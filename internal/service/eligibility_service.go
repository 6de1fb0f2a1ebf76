package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type capacityReader interface {
	GetCapacity(ctx context.Context, key models.SectionKey) (*models.SectionCapacity, error)
}

type waitlistCounter interface {
	CountWaitlisted(ctx context.Context, key models.SectionKey) (int, error)
}

// admit applies the two-tier admission policy to a counter snapshot.
// A closed section admits nobody. An ENROLLED request takes a seat while one
// is open. Otherwise the student is waitlisted only while the waitlist
// capacity is strictly greater than the number already waitlisted. The
// waitlist is counted lazily, so a section with open seats never pays for it.
func admit(requested models.EnrollmentDecision, capacity models.SectionCapacity, fallbackWaitlist int, countWaitlisted func() (int, error)) (models.EnrollmentDecision, error) {
	if capacity.Closed() {
		return models.DecisionNotEligible, nil
	}
	if requested == models.DecisionEnrolled && capacity.OpenSeats() >= 1 {
		return models.DecisionEnrolled, nil
	}
	waitlisted, err := countWaitlisted()
	if err != nil {
		return "", err
	}
	if capacity.Waitlist(fallbackWaitlist) > waitlisted {
		return models.DecisionWaitlisted, nil
	}
	return models.DecisionNotEligible, nil
}

// EligibilityService decides whether an enrollment attempt yields a seat, a
// waitlist slot or a rejection. It never writes.
type EligibilityService struct {
	capacity        capacityReader
	waitlist        waitlistCounter
	defaultWaitlist int
	metrics         *MetricsService
	logger          *zap.Logger
}

// NewEligibilityService constructs EligibilityService.
func NewEligibilityService(capacity capacityReader, waitlist waitlistCounter, defaultWaitlist int, metrics *MetricsService, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{capacity: capacity, waitlist: waitlist, defaultWaitlist: defaultWaitlist, metrics: metrics, logger: logger}
}

// Capacity returns the section counters.
func (s *EligibilityService) Capacity(ctx context.Context, key models.SectionKey) (*models.SectionCapacity, error) {
	if err := validateSectionKey(key); err != nil {
		return nil, err
	}
	capacity, err := s.capacity.GetCapacity(ctx, key)
	if err != nil {
		return nil, sectionLookupError(err, key, "failed to load section capacity")
	}
	return capacity, nil
}

// WaitlistCount returns the number of students waitlisted for the section.
func (s *EligibilityService) WaitlistCount(ctx context.Context, key models.SectionKey) (int, error) {
	if err := validateSectionKey(key); err != nil {
		return 0, err
	}
	count, err := s.waitlist.CountWaitlisted(ctx, key)
	if err != nil {
		return 0, sectionLookupError(err, key, "failed to count waitlisted registrations")
	}
	return count, nil
}

// Decide returns the admission outcome for the section at the moment of the read.
func (s *EligibilityService) Decide(ctx context.Context, key models.SectionKey) (models.EnrollmentDecision, error) {
	s.logger.Debug("checking enrollment eligibility", zap.Stringer("section", key))
	capacity, err := s.Capacity(ctx, key)
	if err != nil {
		return "", err
	}
	decision, err := admit(models.DecisionEnrolled, *capacity, s.defaultWaitlist, func() (int, error) {
		return s.WaitlistCount(ctx, key)
	})
	if err != nil {
		return "", err
	}
	s.metrics.RecordDecision(decision)
	return decision, nil
}

func validateSectionKey(key models.SectionKey) error {
	if key.CourseCode == "" || key.SectionNumber <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "course code and a positive section number are required")
	}
	return nil
}

// sectionLookupError maps a missing section to NotFound and keeps typed errors intact.
func sectionLookupError(err error, key models.SectionKey, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("record not found for given section_number:%d and course_code:%s", key.SectionNumber, key.CourseCode))
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
