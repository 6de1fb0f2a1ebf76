package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type txRunner interface {
	RunInTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error
}

type sectionLocker interface {
	LockCapacity(ctx context.Context, exec sqlx.QueryerContext, key models.SectionKey) (*models.SectionCapacity, error)
	IncrementEnrollment(ctx context.Context, exec sqlx.ExecerContext, key models.SectionKey) error
}

type registrationWriter interface {
	CountWaitlistedTx(ctx context.Context, exec sqlx.QueryerContext, key models.SectionKey) (int, error)
	ExistsActive(ctx context.Context, exec sqlx.QueryerContext, studentID int64, key models.SectionKey) (bool, error)
	Insert(ctx context.Context, exec sqlx.QueryerContext, registration *models.Registration) error
}

// errCapacityExhausted aborts the transaction when the locked counters no
// longer admit the request. It never leaves this file.
var errCapacityExhausted = errors.New("capacity exhausted")

// RegistrationService makes registrations durable together with their effect
// on the section's enrollment counter.
type RegistrationService struct {
	tx              txRunner
	sections        sectionLocker
	registrations   registrationWriter
	defaultWaitlist int
	validator       *validator.Validate
	metrics         *MetricsService
	logger          *zap.Logger
	now             func() time.Time
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(tx txRunner, sections sectionLocker, registrations registrationWriter, defaultWaitlist int, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		tx:              tx,
		sections:        sections,
		registrations:   registrations,
		defaultWaitlist: defaultWaitlist,
		validator:       validate,
		metrics:         metrics,
		logger:          logger,
		now:             time.Now,
	}
}

// Commit persists a decided registration in one transaction.
//
// The section row is locked first, so commits for the same section run one
// after another. The requested decision is re-checked against the locked
// counters: an ENROLLED request that lost the last seat falls back to the
// waitlist, and a request the section can no longer admit returns a FAILED
// result with decision NOT_ELIGIBLE without writing anything. Insert and seat
// increment either both commit or both roll back.
func (s *RegistrationService) Commit(ctx context.Context, req models.CommitRequest) (*models.CommitResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	key := req.Key()
	start := time.Now()
	s.logger.Info("starting registration", zap.Int64("student_id", req.StudentID), zap.Stringer("section", key), zap.String("requested", string(req.Decision)))

	var registration *models.Registration
	var decision models.EnrollmentDecision
	err := s.tx.RunInTx(ctx, func(exec sqlx.ExtContext) error {
		capacity, err := s.sections.LockCapacity(ctx, exec, key)
		if err != nil {
			return sectionLookupError(err, key, "failed to lock section")
		}

		exists, err := s.registrations.ExistsActive(ctx, exec, req.StudentID, key)
		if err != nil {
			return err
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "student already registered for section")
		}

		decision, err = admit(req.Decision, *capacity, s.defaultWaitlist, func() (int, error) {
			return s.registrations.CountWaitlistedTx(ctx, exec, key)
		})
		if err != nil {
			return err
		}
		if !decision.Committable() {
			return errCapacityExhausted
		}

		registration = &models.Registration{
			StudentID:      req.StudentID,
			CourseCode:     key.CourseCode,
			SectionNumber:  key.SectionNumber,
			Status:         decision.RegistrationStatus(),
			EnrollmentDate: s.now().UTC(),
		}
		if err := s.registrations.Insert(ctx, exec, registration); err != nil {
			if errors.Is(err, repository.ErrDuplicateRegistration) {
				return appErrors.Clone(appErrors.ErrConflict, "student already registered for section")
			}
			return err
		}
		if decision == models.DecisionEnrolled {
			return s.sections.IncrementEnrollment(ctx, exec, key)
		}
		return nil
	})
	duration := time.Since(start)

	if errors.Is(err, errCapacityExhausted) {
		s.metrics.RecordCommit(models.QueryStatusFailed, models.DecisionNotEligible, duration)
		s.logger.Info("registration rejected under lock", zap.Int64("student_id", req.StudentID), zap.Stringer("section", key))
		return &models.CommitResult{
			Status:   models.QueryStatusFailed,
			Decision: models.DecisionNotEligible,
			Detail:   "section has no open seat or waitlist slot",
		}, nil
	}
	if err != nil {
		s.metrics.RecordCommit(models.QueryStatusFailed, req.Decision, duration)
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code != appErrors.ErrInternal.Code {
			s.logger.Info("registration refused", zap.Int64("student_id", req.StudentID), zap.Stringer("section", key), zap.String("code", appErr.Code))
			return nil, appErr
		}
		s.logger.Error("registration rolled back", zap.Int64("student_id", req.StudentID), zap.Stringer("section", key), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrTransactionFailed.Code, appErrors.ErrTransactionFailed.Status, "fail to register")
	}

	s.metrics.RecordCommit(models.QueryStatusSuccess, decision, duration)
	s.metrics.ObserveDBQuery("commit_registration", duration)
	if decision != req.Decision {
		s.logger.Info("registration downgraded", zap.Int64("student_id", req.StudentID), zap.Stringer("section", key), zap.String("requested", string(req.Decision)), zap.String("committed", string(decision)))
	}
	return &models.CommitResult{Status: models.QueryStatusSuccess, Decision: decision, Registration: registration}, nil
}
