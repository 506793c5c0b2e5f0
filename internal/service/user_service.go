package service

import (
	"context"
	"errors"
	"strings"

	"teachassist/internal/apperr"
	"teachassist/internal/auth"
	"teachassist/internal/domain"
	"teachassist/internal/repository"
)

// UserUpdate carries the mutable user fields; nil means "leave unchanged".
type UserUpdate struct {
	Username *string
	Email    *string
	Role     *domain.Role
}

// DashboardStats aggregates the counters shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers    int64
	TeacherCount  int64
	AdminCount    int64
	TotalCourses  int64
	ActiveCourses int64
}

// UserService implements the administrative user CRUD plus dashboard
// aggregation.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error)
	Update(ctx context.Context, id int64, update UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

type userService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
}

func NewUserService(users repository.UserRepository, courses repository.CourseRepository) UserService {
	return &userService{users: users, courses: courses}
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Internal("get user", err)
	}
	return sanitizeUser(user), nil
}

// Create runs admin-created accounts through the same bcrypt hasher as
// self-registration; there is no second hashing scheme.
func (s *userService) Create(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if password == "" {
		return nil, apperr.Validation("password is required")
	}
	if role == "" {
		role = domain.RoleTeacher
	}
	if !domain.ValidRole(role) {
		return nil, apperr.Validation("unknown role")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			return nil, err
		}
		return nil, apperr.Internal("create user", err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) Update(ctx context.Context, id int64, update UserUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Internal("get user", err)
	}

	if update.Username != nil {
		name := strings.TrimSpace(*update.Username)
		if name == "" {
			return nil, apperr.Validation("username must not be empty")
		}
		user.Username = name
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email == "" {
			return nil, apperr.Validation("email must not be empty")
		}
		user.Email = email
	}
	if update.Role != nil {
		if !domain.ValidRole(*update.Role) {
			return nil, apperr.Validation("unknown role")
		}
		user.Role = *update.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Internal("update user", err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Internal("delete user", err)
	}
	return nil
}

func (s *userService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, apperr.Internal("dashboard stats", err)
	}
	if stats.TeacherCount, err = s.users.CountByRole(ctx, domain.RoleTeacher); err != nil {
		return nil, apperr.Internal("dashboard stats", err)
	}
	if stats.AdminCount, err = s.users.CountByRole(ctx, domain.RoleAdmin); err != nil {
		return nil, apperr.Internal("dashboard stats", err)
	}
	if stats.TotalCourses, err = s.courses.Count(ctx); err != nil {
		return nil, apperr.Internal("dashboard stats", err)
	}
	if stats.ActiveCourses, err = s.courses.CountByStatus(ctx, domain.CourseStatusActive); err != nil {
		return nil, apperr.Internal("dashboard stats", err)
	}
	return stats, nil
}
