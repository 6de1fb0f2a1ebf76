package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/pkg/jobs"
)

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type eventPublisher interface {
	Publish(ctx context.Context, eventType string, event interface{}) error
}

// EventService hands committed registrations to the background queue.
// Dispatch never fails the request that produced the registration.
type EventService struct {
	queue  jobEnqueuer
	logger *zap.Logger
	now    func() time.Time
}

// NewEventService constructs EventService. A nil queue disables dispatch.
func NewEventService(queue jobEnqueuer, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{queue: queue, logger: logger, now: time.Now}
}

// RegistrationCommitted enqueues the event for a durable registration.
func (s *EventService) RegistrationCommitted(ctx context.Context, registration models.Registration) {
	if s == nil || s.queue == nil {
		return
	}
	event := models.RegistrationEvent{
		EventID:        uuid.NewString(),
		RegistrationID: registration.ID,
		StudentID:      registration.StudentID,
		CourseCode:     registration.CourseCode,
		SectionNumber:  registration.SectionNumber,
		Status:         registration.Status,
		EnrollmentDate: registration.EnrollmentDate,
		OccurredAt:     s.now().UTC(),
	}
	job := jobs.Job{ID: event.EventID, Type: models.EventRegistrationCommitted, Payload: event}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("registration event dropped", zap.String("event_id", event.EventID), zap.Int64("registration_id", registration.ID), zap.Error(err))
	}
}

// NewRegistrationEventHandler returns the queue handler that publishes
// registration events to the broker.
func NewRegistrationEventHandler(publisher eventPublisher, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(models.RegistrationEvent)
		if !ok {
			logger.Error("unexpected job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
			return nil
		}
		if err := publisher.Publish(ctx, job.Type, event); err != nil {
			return fmt.Errorf("publish registration event %s: %w", event.EventID, err)
		}
		logger.Debug("registration event published", zap.String("event_id", event.EventID), zap.Int("attempt", job.Attempt))
		return nil
	}
}
