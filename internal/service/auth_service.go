package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"teachassist/internal/apperr"
	"teachassist/internal/auth"
	"teachassist/internal/domain"
	"teachassist/internal/repository"
)

// The same message covers a missing account, a wrong username and a wrong
// password so the response never reveals which field was incorrect.
const msgBadCredentials = "incorrect username, email or password"

// LoginResult is the success payload of a login.
type LoginResult struct {
	Token    string
	UserID   int64
	Username string
	Role     domain.Role
}

// AuthService composes the hasher, the token manager and the identity
// store into the login/registration/current-user flows.
type AuthService interface {
	Login(ctx context.Context, username, email, password string) (*LoginResult, error)
	AdminLogin(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, username, email, password string, role domain.Role) error
	CheckUsernameAvailable(ctx context.Context, username string) (bool, error)
	CheckEmailAvailable(ctx context.Context, email string) (bool, error)
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

type authService struct {
	users        repository.UserRepository
	tokens       *auth.TokenManager
	storeTimeout time.Duration
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, storeTimeout time.Duration) AuthService {
	return &authService{
		users:        users,
		tokens:       tokens,
		storeTimeout: storeTimeout,
	}
}

// storeCtx bounds every identity store call with a per-call deadline
// derived from the request context.
func (s *authService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *authService) Login(ctx context.Context, username, email, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}

	lookupCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	user, err := s.users.GetByEmail(lookupCtx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized(msgBadCredentials)
		}
		return nil, apperr.Internal("login failed", err)
	}

	if user.Username != username {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}

	return s.issueFor(user)
}

// AdminLogin authenticates against a stored user record like every other
// login; the only extra requirement is the admin role. There is no
// special-cased credential pair.
func (s *authService) AdminLogin(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}

	lookupCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	user, err := s.users.GetByUsername(lookupCtx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized(msgBadCredentials)
		}
		return nil, apperr.Internal("admin login failed", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}
	if user.Role != domain.RoleAdmin {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}

	return s.issueFor(user)
}

func (s *authService) issueFor(user *domain.User) (*LoginResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	return &LoginResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (s *authService) Register(ctx context.Context, username, email, password string, role domain.Role) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return apperr.Validation("username is required")
	}
	if email == "" {
		return apperr.Validation("email is required")
	}
	if password == "" {
		return apperr.Validation("password is required")
	}
	if role == "" {
		role = domain.RoleTeacher
	}
	if !domain.ValidRole(role) {
		return apperr.Validation("unknown role")
	}

	// Username first, then email: keeps the surfaced message deterministic
	// when both collide. The store's UNIQUE constraints backstop the race
	// between this check and the insert.
	taken, err := s.usernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Validation("username already exists")
	}

	taken, err = s.emailTaken(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Validation("email already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperr.Internal("hash password", err)
	}

	createCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	_, err = s.users.Create(createCtx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			return err
		}
		return apperr.Internal("create user", err)
	}
	return nil
}

func (s *authService) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.usernameTaken(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *authService) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *authService) usernameTaken(ctx context.Context, username string) (bool, error) {
	lookupCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	if _, err := s.users.GetByUsername(lookupCtx, username); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, apperr.Internal("lookup username", err)
	}
	return true, nil
}

func (s *authService) emailTaken(ctx context.Context, email string) (bool, error) {
	lookupCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	if _, err := s.users.GetByEmail(lookupCtx, email); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, apperr.Internal("lookup email", err)
	}
	return true, nil
}

// CurrentUser resolves a bearer token to a live user. Token validation is
// purely structural; the store lookup afterwards is what ties the claims
// back to an existing account.
func (s *authService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}
	id, err := claims.SubjectID()
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}

	lookupCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	user, err := s.users.GetByID(lookupCtx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized("user not found")
		}
		return nil, apperr.Internal("resolve current user", err)
	}
	return sanitizeUser(user), nil
}

// sanitizeUser strips the password digest before a user leaves the service layer.
func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
