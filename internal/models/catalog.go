package models

// AvailableClass is one section of a department's catalog listing.
type AvailableClass struct {
	CourseCode          string `db:"course_code" json:"course_code"`
	CourseName          string `db:"course_name" json:"course_name"`
	Department          string `db:"department" json:"department"`
	SectionNumber       int    `db:"section_number" json:"section_number"`
	CurrentEnrollment   int    `db:"current_enrollment" json:"current_enrollment"`
	MaxEnrollment       int    `db:"max_enrollment" json:"max_enrollment"`
	Waitlist            int    `db:"waitlist" json:"waitlist"`
	InstructorFirstName string `db:"instructor_first_name" json:"instructor_first_name"`
	InstructorLastName  string `db:"instructor_last_name" json:"instructor_last_name"`
}
