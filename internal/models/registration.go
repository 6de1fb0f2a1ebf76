package models

import "time"

// RegistrationStatus represents the lifecycle of a registration row.
type RegistrationStatus string

// Possible registration statuses.
const (
	RegistrationStatusEnrolled    RegistrationStatus = "enrolled"
	RegistrationStatusWaitlisted  RegistrationStatus = "waitlisted"
	RegistrationStatusNotEligible RegistrationStatus = "not_eligible"
	RegistrationStatusDropped     RegistrationStatus = "dropped"
)

// EnrollmentDecision is the outcome of admission control for one attempt.
type EnrollmentDecision string

// Admission outcomes.
const (
	DecisionEnrolled    EnrollmentDecision = "enrolled"
	DecisionWaitlisted  EnrollmentDecision = "waitlisted"
	DecisionNotEligible EnrollmentDecision = "not_eligible"
)

// RegistrationStatus maps the decision onto the status persisted for it.
func (d EnrollmentDecision) RegistrationStatus() RegistrationStatus {
	switch d {
	case DecisionEnrolled:
		return RegistrationStatusEnrolled
	case DecisionWaitlisted:
		return RegistrationStatusWaitlisted
	default:
		return RegistrationStatusNotEligible
	}
}

// Committable reports whether a registration may be persisted for the decision.
func (d EnrollmentDecision) Committable() bool {
	return d == DecisionEnrolled || d == DecisionWaitlisted
}

// QueryStatus reports the outcome of a registration commit.
type QueryStatus string

// Commit outcomes.
const (
	QueryStatusSuccess QueryStatus = "success"
	QueryStatusFailed  QueryStatus = "failed"
)

// Registration is a row of the registration list.
type Registration struct {
	ID             int64              `db:"id" json:"id"`
	StudentID      int64              `db:"student_id" json:"student_id"`
	CourseCode     string             `db:"course_code" json:"course_code"`
	SectionNumber  int                `db:"section_number" json:"section_number"`
	Status         RegistrationStatus `db:"status" json:"status"`
	EnrollmentDate time.Time          `db:"enrollment_date" json:"enrollment_date"`
}

// Key returns the section the registration targets.
func (r Registration) Key() SectionKey {
	return SectionKey{CourseCode: r.CourseCode, SectionNumber: r.SectionNumber}
}

// CommitRequest carries a decided registration into the committer.
type CommitRequest struct {
	StudentID     int64              `validate:"required,gt=0"`
	CourseCode    string             `validate:"required"`
	SectionNumber int                `validate:"required,gt=0"`
	Decision      EnrollmentDecision `validate:"required,oneof=enrolled waitlisted"`
}

// Key returns the targeted section.
func (r CommitRequest) Key() SectionKey {
	return SectionKey{CourseCode: r.CourseCode, SectionNumber: r.SectionNumber}
}

// CommitResult describes what the committer persisted.
// A FAILED status with a NOT_ELIGIBLE decision means capacity ran out while
// the section was locked and nothing was written.
type CommitResult struct {
	Status       QueryStatus        `json:"status"`
	Decision     EnrollmentDecision `json:"decision"`
	Registration *Registration      `json:"registration,omitempty"`
	Detail       string             `json:"detail,omitempty"`
}

// WaitlistEntry is a waitlisted registration annotated with its rank.
type WaitlistEntry struct {
	Position       int       `db:"position" json:"position"`
	StudentID      int64     `db:"student_id" json:"student_id"`
	StudentName    string    `db:"student_name" json:"student_name"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
}
