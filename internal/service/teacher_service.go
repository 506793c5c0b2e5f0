package service

import (
	"context"
	"errors"
	"fmt"

	"teachassist/internal/apperr"
	"teachassist/internal/domain"
	"teachassist/internal/repository"
)

// TeacherService manages the per-course teaching documents: objective,
// syllabus and material. Generate produces placeholder text from a static
// template and persists it through the same upsert path as Save; plugging
// in a real generation backend later only changes the template call.
type TeacherService interface {
	GetObjective(ctx context.Context, courseID int64) (*domain.CourseObjective, error)
	GenerateObjective(ctx context.Context, courseID int64, prompt string) (*domain.CourseObjective, error)
	SaveObjective(ctx context.Context, courseID int64, courseContent, teachingTarget string) (*domain.CourseObjective, error)

	GetSyllabus(ctx context.Context, courseID int64) (*domain.CourseSyllabus, error)
	GenerateSyllabus(ctx context.Context, courseID int64, prompt string) (*domain.CourseSyllabus, error)
	SaveSyllabus(ctx context.Context, courseID int64, content string) (*domain.CourseSyllabus, error)

	GetMaterial(ctx context.Context, courseID int64) (*domain.CourseMaterial, error)
	GenerateMaterial(ctx context.Context, courseID int64, prompt string) (*domain.CourseMaterial, error)
	SaveMaterial(ctx context.Context, courseID int64, content string) (*domain.CourseMaterial, error)
}

type teacherService struct {
	content repository.ContentRepository
}

func NewTeacherService(content repository.ContentRepository) TeacherService {
	return &teacherService{content: content}
}

// GetObjective returns a zero-value objective (course id set, empty text)
// when none has been saved yet, so clients always get a renderable shape.
func (s *teacherService) GetObjective(ctx context.Context, courseID int64) (*domain.CourseObjective, error) {
	obj, err := s.content.GetObjective(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return &domain.CourseObjective{CourseID: courseID}, nil
		}
		return nil, apperr.Internal("get course objective", err)
	}
	return obj, nil
}

func (s *teacherService) GenerateObjective(ctx context.Context, courseID int64, prompt string) (*domain.CourseObjective, error) {
	content := generatedText("course objective", prompt)
	target := generatedText("teaching target", prompt)
	return s.SaveObjective(ctx, courseID, content, target)
}

func (s *teacherService) SaveObjective(ctx context.Context, courseID int64, courseContent, teachingTarget string) (*domain.CourseObjective, error) {
	obj, err := s.content.SaveObjective(ctx, courseID, courseContent, teachingTarget)
	if err != nil {
		return nil, apperr.Internal("save course objective", err)
	}
	return obj, nil
}

func (s *teacherService) GetSyllabus(ctx context.Context, courseID int64) (*domain.CourseSyllabus, error) {
	syl, err := s.content.GetSyllabus(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return &domain.CourseSyllabus{CourseID: courseID}, nil
		}
		return nil, apperr.Internal("get course syllabus", err)
	}
	return syl, nil
}

func (s *teacherService) GenerateSyllabus(ctx context.Context, courseID int64, prompt string) (*domain.CourseSyllabus, error) {
	return s.SaveSyllabus(ctx, courseID, generatedText("course syllabus", prompt))
}

func (s *teacherService) SaveSyllabus(ctx context.Context, courseID int64, content string) (*domain.CourseSyllabus, error) {
	syl, err := s.content.SaveSyllabus(ctx, courseID, content)
	if err != nil {
		return nil, apperr.Internal("save course syllabus", err)
	}
	return syl, nil
}

func (s *teacherService) GetMaterial(ctx context.Context, courseID int64) (*domain.CourseMaterial, error) {
	mat, err := s.content.GetMaterial(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return &domain.CourseMaterial{CourseID: courseID}, nil
		}
		return nil, apperr.Internal("get course material", err)
	}
	return mat, nil
}

func (s *teacherService) GenerateMaterial(ctx context.Context, courseID int64, prompt string) (*domain.CourseMaterial, error) {
	return s.SaveMaterial(ctx, courseID, generatedText("course material", prompt))
}

func (s *teacherService) SaveMaterial(ctx context.Context, courseID int64, content string) (*domain.CourseMaterial, error) {
	mat, err := s.content.SaveMaterial(ctx, courseID, content)
	if err != nil {
		return nil, apperr.Internal("save course material", err)
	}
	return mat, nil
}

// generatedText is the placeholder standing in for a real content
// generation backend.
func generatedText(kind, prompt string) string {
	return fmt.Sprintf("Draft %s generated from prompt %q. Replace with reviewed content before publishing.", kind, prompt)
}
