package repository

import (
	"context"

	"teachassist/internal/domain"
)

// CourseRepository exposes persistence operations for Course aggregates.
type CourseRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, course *domain.Course) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Course, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.CourseStatus) (int64, error)
}
