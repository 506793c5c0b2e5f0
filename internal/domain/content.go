package domain

import "time"

// CourseObjective holds the teaching goals attached to a course.
// At most one row exists per course; saves upsert in place.
type CourseObjective struct {
	ID             int64
	CourseID       int64
	CourseContent  string
	TeachingTarget string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CourseSyllabus is the course outline document, one per course.
type CourseSyllabus struct {
	ID        int64
	CourseID  int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CourseMaterial is the lecture material document, one per course.
type CourseMaterial struct {
	ID        int64
	CourseID  int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
