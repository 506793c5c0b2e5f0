package service

import (
	"context"
	"time"

	"teachassist/internal/apperr"
	"teachassist/internal/domain"
)

// In-memory repository fakes used across the service tests. They mirror
// the sqlite adapters' error translation: NotFound for missing rows,
// Validation for uniqueness violations.

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int64]*domain.User{}}
}

func (f *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	for _, u := range f.users {
		if u.Username == user.Username {
			return 0, apperr.Validation("username already exists")
		}
		if u.Email == user.Email {
			return 0, apperr.Validation("email already exists")
		}
	}
	user.ID = f.nextID
	f.nextID++
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = "active"
	}
	clone := *user
	f.users[user.ID] = &clone
	return user.ID, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	for id := int64(1); id < f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	user.UpdatedAt = time.Now().UTC()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperr.NotFound("user not found")
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var n int64
	for _, u := range f.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeCourseRepo struct {
	nextID  int64
	courses map[int64]*domain.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{nextID: 1, courses: map[int64]*domain.Course{}}
}

func (f *fakeCourseRepo) Init(ctx context.Context) error { return nil }

func (f *fakeCourseRepo) Create(ctx context.Context, course *domain.Course) (int64, error) {
	course.ID = f.nextID
	f.nextID++
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = domain.CourseStatusActive
	}
	clone := *course
	f.courses[course.ID] = &clone
	return course.ID, nil
}

func (f *fakeCourseRepo) Get(ctx context.Context, id int64) (*domain.Course, error) {
	if c, ok := f.courses[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, apperr.NotFound("course not found")
}

func (f *fakeCourseRepo) ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Course, error) {
	var courses []domain.Course
	for id := int64(1); id < f.nextID; id++ {
		if c, ok := f.courses[id]; ok && c.TeacherID == teacherID {
			courses = append(courses, *c)
		}
	}
	return courses, nil
}

func (f *fakeCourseRepo) List(ctx context.Context) ([]domain.Course, error) {
	var courses []domain.Course
	for id := int64(1); id < f.nextID; id++ {
		if c, ok := f.courses[id]; ok {
			courses = append(courses, *c)
		}
	}
	return courses, nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, course *domain.Course) error {
	if _, ok := f.courses[course.ID]; !ok {
		return apperr.NotFound("course not found")
	}
	course.UpdatedAt = time.Now().UTC()
	clone := *course
	f.courses[course.ID] = &clone
	return nil
}

func (f *fakeCourseRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.courses[id]; !ok {
		return apperr.NotFound("course not found")
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeCourseRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.courses)), nil
}

func (f *fakeCourseRepo) CountByStatus(ctx context.Context, status domain.CourseStatus) (int64, error) {
	var n int64
	for _, c := range f.courses {
		if c.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeContentRepo struct {
	nextID     int64
	objectives map[int64]*domain.CourseObjective
	syllabi    map[int64]*domain.CourseSyllabus
	materials  map[int64]*domain.CourseMaterial
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{
		nextID:     1,
		objectives: map[int64]*domain.CourseObjective{},
		syllabi:    map[int64]*domain.CourseSyllabus{},
		materials:  map[int64]*domain.CourseMaterial{},
	}
}

func (f *fakeContentRepo) Init(ctx context.Context) error { return nil }

func (f *fakeContentRepo) GetObjective(ctx context.Context, courseID int64) (*domain.CourseObjective, error) {
	if o, ok := f.objectives[courseID]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, apperr.NotFound("course objective not found")
}

func (f *fakeContentRepo) SaveObjective(ctx context.Context, courseID int64, courseContent, teachingTarget string) (*domain.CourseObjective, error) {
	now := time.Now().UTC()
	if o, ok := f.objectives[courseID]; ok {
		o.CourseContent = courseContent
		o.TeachingTarget = teachingTarget
		o.UpdatedAt = now
	} else {
		f.objectives[courseID] = &domain.CourseObjective{
			ID:             f.nextID,
			CourseID:       courseID,
			CourseContent:  courseContent,
			TeachingTarget: teachingTarget,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		f.nextID++
	}
	return f.GetObjective(ctx, courseID)
}

func (f *fakeContentRepo) GetSyllabus(ctx context.Context, courseID int64) (*domain.CourseSyllabus, error) {
	if s, ok := f.syllabi[courseID]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, apperr.NotFound("course syllabus not found")
}

func (f *fakeContentRepo) SaveSyllabus(ctx context.Context, courseID int64, content string) (*domain.CourseSyllabus, error) {
	now := time.Now().UTC()
	if s, ok := f.syllabi[courseID]; ok {
		s.Content = content
		s.UpdatedAt = now
	} else {
		f.syllabi[courseID] = &domain.CourseSyllabus{
			ID:        f.nextID,
			CourseID:  courseID,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		f.nextID++
	}
	return f.GetSyllabus(ctx, courseID)
}

func (f *fakeContentRepo) GetMaterial(ctx context.Context, courseID int64) (*domain.CourseMaterial, error) {
	if m, ok := f.materials[courseID]; ok {
		clone := *m
		return &clone, nil
	}
	return nil, apperr.NotFound("course material not found")
}

func (f *fakeContentRepo) SaveMaterial(ctx context.Context, courseID int64, content string) (*domain.CourseMaterial, error) {
	now := time.Now().UTC()
	if m, ok := f.materials[courseID]; ok {
		m.Content = content
		m.UpdatedAt = now
	} else {
		f.materials[courseID] = &domain.CourseMaterial{
			ID:        f.nextID,
			CourseID:  courseID,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		f.nextID++
	}
	return f.GetMaterial(ctx, courseID)
}
