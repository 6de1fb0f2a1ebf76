package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type eligibilityDecider interface {
	Decide(ctx context.Context, key models.SectionKey) (models.EnrollmentDecision, error)
}

type registrationCommitter interface {
	Commit(ctx context.Context, req models.CommitRequest) (*models.CommitResult, error)
}

type catalogInvalidator interface {
	Invalidate(ctx context.Context)
}

type registrationNotifier interface {
	RegistrationCommitted(ctx context.Context, registration models.Registration)
}

// EnrollmentService runs one enrollment attempt: decide, then commit.
type EnrollmentService struct {
	eligibility eligibilityDecider
	committer   registrationCommitter
	catalog     catalogInvalidator
	events      registrationNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. catalog and events may be nil.
func NewEnrollmentService(eligibility eligibilityDecider, committer registrationCommitter, catalog catalogInvalidator, events registrationNotifier, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{eligibility: eligibility, committer: committer, catalog: catalog, events: events, validator: validate, logger: logger}
}

// Enroll decides the attempt and, unless the student is not eligible,
// records it. The committer may downgrade the decision when another student
// took the last seat in between.
func (s *EnrollmentService) Enroll(ctx context.Context, req dto.EnrollmentRequest) (*dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	key := models.SectionKey{CourseCode: req.CourseCode, SectionNumber: req.SectionNumber}

	decision, err := s.eligibility.Decide(ctx, key)
	if err != nil {
		return nil, err
	}
	if decision == models.DecisionNotEligible {
		s.logger.Info("student not eligible", zap.Int64("student_id", req.StudentID), zap.Stringer("section", key))
		return &dto.EnrollmentResponse{EnrollmentStatus: string(models.DecisionNotEligible)}, nil
	}

	result, err := s.committer.Commit(ctx, models.CommitRequest{
		StudentID:     req.StudentID,
		CourseCode:    key.CourseCode,
		SectionNumber: key.SectionNumber,
		Decision:      decision,
	})
	if err != nil {
		return nil, err
	}
	if result.Status != models.QueryStatusSuccess || result.Registration == nil {
		return &dto.EnrollmentResponse{EnrollmentStatus: string(result.Decision)}, nil
	}

	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	if s.events != nil {
		s.events.RegistrationCommitted(ctx, *result.Registration)
	}

	enrolledAt := result.Registration.EnrollmentDate
	return &dto.EnrollmentResponse{
		EnrollmentStatus: string(result.Decision),
		EnrollmentDate:   &enrolledAt,
	}, nil
}
