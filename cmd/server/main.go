package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"teachassist/internal/apperr"
	"teachassist/internal/auth"
	"teachassist/internal/config"
	"teachassist/internal/domain"
	apphttp "teachassist/internal/http"
	"teachassist/internal/repository/sqlite"
	"teachassist/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}
	if cfg.UsesDefaultSecret() {
		logger.Warn("using the built-in development jwt secret; set TEACH_AUTH_JWTSECRET before deploying")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	courseRepo := sqlite.NewCourseRepository(db)
	contentRepo := sqlite.NewContentRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := courseRepo.Init(ctx); err != nil {
		logger.Fatalf("init course repository: %v", err)
	}
	if err := contentRepo.Init(ctx); err != nil {
		logger.Fatalf("init content repository: %v", err)
	}

	tokens := auth.NewTokenManager(
		[]byte(cfg.Auth.JWTSecret),
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
	)
	storeTimeout := time.Duration(cfg.Auth.StoreTimeoutSeconds) * time.Second

	authService := service.NewAuthService(userRepo, tokens, storeTimeout)
	userService := service.NewUserService(userRepo, courseRepo)
	courseService := service.NewCourseService(courseRepo)
	teacherService := service.NewTeacherService(contentRepo)

	if err := seedAdmin(ctx, cfg, userService, logger); err != nil {
		logger.Fatalf("seed admin account: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, userService, courseService, teacherService, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// seedAdmin creates the bootstrap admin account when configured. The
// account goes through the regular creation path (same hasher, same
// uniqueness rules); rerunning against an existing account is a no-op.
func seedAdmin(ctx context.Context, cfg config.Config, users service.UserService, logger *logrus.Logger) error {
	username := strings.TrimSpace(cfg.Bootstrap.AdminUsername)
	email := strings.TrimSpace(cfg.Bootstrap.AdminEmail)
	password := cfg.Bootstrap.AdminPassword
	if username == "" || email == "" || password == "" {
		return nil
	}

	_, err := users.Create(ctx, username, email, password, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			logger.Infof("bootstrap admin %q already present", username)
			return nil
		}
		return err
	}
	logger.Infof("bootstrap admin %q created", username)
	return nil
}
