package models

import "fmt"

// SectionStatus tells whether a section still accepts registrations.
type SectionStatus string

// Possible section statuses.
const (
	SectionStatusOpen   SectionStatus = "open"
	SectionStatusClosed SectionStatus = "closed"
)

// SectionKey identifies one offering of a course.
type SectionKey struct {
	CourseCode    string `json:"course_code" validate:"required"`
	SectionNumber int    `json:"section_number" validate:"required,gt=0"`
}

// String renders the key as COURSE-SECTION for logs and cache keys.
func (k SectionKey) String() string {
	return fmt.Sprintf("%s-%d", k.CourseCode, k.SectionNumber)
}

// SectionCapacity is the counter snapshot the admission rules read.
type SectionCapacity struct {
	CourseCode        string        `db:"course_code" json:"course_code"`
	SectionNumber     int           `db:"section_number" json:"section_number"`
	CurrentEnrollment int           `db:"current_enrollment" json:"current_enrollment"`
	MaxEnrollment     int           `db:"max_enrollment" json:"max_enrollment"`
	WaitlistCapacity  *int          `db:"waitlist" json:"waitlist"`
	Status            SectionStatus `db:"status" json:"status"`
}

// Key returns the section identifier of the snapshot.
func (c SectionCapacity) Key() SectionKey {
	return SectionKey{CourseCode: c.CourseCode, SectionNumber: c.SectionNumber}
}

// OpenSeats reports how many seats remain before the section is full.
func (c SectionCapacity) OpenSeats() int {
	return c.MaxEnrollment - c.CurrentEnrollment
}

// Waitlist returns the configured waitlist capacity or fallback when unset.
func (c SectionCapacity) Waitlist(fallback int) int {
	if c.WaitlistCapacity == nil {
		return fallback
	}
	return *c.WaitlistCapacity
}

// Closed reports whether enrollment for the section has been frozen.
func (c SectionCapacity) Closed() bool {
	return c.Status == SectionStatusClosed
}
