package domain

import "time"

type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "active"
	CourseStatusInactive CourseStatus = "inactive"
	CourseStatusDraft    CourseStatus = "draft"
)

// Course is a teaching course owned by a single teacher.
type Course struct {
	ID          int64
	Title       string
	Description string
	TeacherID   int64
	Status      CourseStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
