package dto

import "time"

// EnrollmentRequest is the payload of an enrollment attempt.
type EnrollmentRequest struct {
	StudentID     int64  `json:"student_id" validate:"required,gt=0"`
	CourseCode    string `json:"course_code" validate:"required,max=16"`
	SectionNumber int    `json:"section_number" validate:"required,gt=0"`
}

// EnrollmentResponse reports what happened to the attempt. EnrollmentDate is
// only set when a registration was recorded.
type EnrollmentResponse struct {
	EnrollmentStatus string     `json:"enrollment_status"`
	EnrollmentDate   *time.Time `json:"enrollment_date,omitempty"`
}

// EligibilityResponse is the read-only admission outcome for a section.
type EligibilityResponse struct {
	CourseCode    string `json:"course_code"`
	SectionNumber int    `json:"section_number"`
	Decision      string `json:"decision"`
}

// WaitlistPositionResponse reports a student's rank on a waitlist.
type WaitlistPositionResponse struct {
	StudentID     int64  `json:"student_id"`
	CourseCode    string `json:"course_code"`
	SectionNumber int    `json:"section_number"`
	Position      int    `json:"position"`
}
