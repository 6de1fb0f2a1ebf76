package models

import "time"

// EventRegistrationCommitted is published after a registration is durable.
const EventRegistrationCommitted = "registration.committed"

// RegistrationEvent is the message body announcing a committed registration.
type RegistrationEvent struct {
	EventID        string             `json:"event_id"`
	RegistrationID int64              `json:"registration_id"`
	StudentID      int64              `json:"student_id"`
	CourseCode     string             `json:"course_code"`
	SectionNumber  int                `json:"section_number"`
	Status         RegistrationStatus `json:"status"`
	EnrollmentDate time.Time          `json:"enrollment_date"`
	OccurredAt     time.Time          `json:"occurred_at"`
}
