package repository

import (
	"context"

	"teachassist/internal/domain"
)

// ContentRepository manages the per-course teaching documents. Each kind
// keeps at most one row per course; Save methods upsert in place. Get
// methods return NotFound when no row exists yet.
type ContentRepository interface {
	Init(ctx context.Context) error

	GetObjective(ctx context.Context, courseID int64) (*domain.CourseObjective, error)
	SaveObjective(ctx context.Context, courseID int64, courseContent, teachingTarget string) (*domain.CourseObjective, error)

	GetSyllabus(ctx context.Context, courseID int64) (*domain.CourseSyllabus, error)
	SaveSyllabus(ctx context.Context, courseID int64, content string) (*domain.CourseSyllabus, error)

	GetMaterial(ctx context.Context, courseID int64) (*domain.CourseMaterial, error)
	SaveMaterial(ctx context.Context, courseID int64, content string) (*domain.CourseMaterial, error)
}
