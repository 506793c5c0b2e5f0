package service

import (
	"context"
	"errors"
	"strings"

	"teachassist/internal/apperr"
	"teachassist/internal/domain"
	"teachassist/internal/repository"
)

// CourseUpdate carries the mutable course fields; nil means "leave unchanged".
type CourseUpdate struct {
	Title       *string
	Description *string
	Status      *domain.CourseStatus
}

// CourseService coordinates course level operations backed by the course repository.
type CourseService interface {
	Create(ctx context.Context, title, description string, teacherID int64) (*domain.Course, error)
	Get(ctx context.Context, id int64) (*domain.Course, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Course, error)
	ListAll(ctx context.Context) ([]domain.Course, error)
	Update(ctx context.Context, id int64, update CourseUpdate) (*domain.Course, error)
	Delete(ctx context.Context, id int64) error
}

type courseService struct {
	courses repository.CourseRepository
}

func NewCourseService(courses repository.CourseRepository) CourseService {
	return &courseService{courses: courses}
}

func (s *courseService) Create(ctx context.Context, title, description string, teacherID int64) (*domain.Course, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Validation("course title must not be empty")
	}
	if teacherID <= 0 {
		return nil, apperr.Validation("teacher id is required")
	}

	course := &domain.Course{
		Title:       title,
		Description: description,
		TeacherID:   teacherID,
		Status:      domain.CourseStatusActive,
	}
	if _, err := s.courses.Create(ctx, course); err != nil {
		return nil, apperr.Internal("create course", err)
	}
	return course, nil
}

func (s *courseService) Get(ctx context.Context, id int64) (*domain.Course, error) {
	course, err := s.courses.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Internal("get course", err)
	}
	return course, nil
}

func (s *courseService) ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Course, error) {
	courses, err := s.courses.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, apperr.Internal("list teacher courses", err)
	}
	return courses, nil
}

func (s *courseService) ListAll(ctx context.Context) ([]domain.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list courses", err)
	}
	return courses, nil
}

func (s *courseService) Update(ctx context.Context, id int64, update CourseUpdate) (*domain.Course, error) {
	course, err := s.courses.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Internal("get course", err)
	}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return nil, apperr.Validation("course title must not be empty")
		}
		course.Title = *update.Title
	}
	if update.Description != nil {
		course.Description = *update.Description
	}
	if update.Status != nil {
		course.Status = *update.Status
	}

	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Internal("update course", err)
	}
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id int64) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Internal("delete course", err)
	}
	return nil
}
