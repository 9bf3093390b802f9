package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/classum/campus-backend/internal/config"
	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/handler"
	"github.com/classum/campus-backend/internal/logger"
	"github.com/classum/campus-backend/internal/repository"
	"github.com/classum/campus-backend/internal/router"
	"github.com/classum/campus-backend/internal/service"
	"github.com/classum/campus-backend/internal/storage"
	"github.com/classum/campus-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Campus Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	db := database.NewConn(pool)

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository()
	courseRepo := repository.NewCourseRepository()
	classRepo := repository.NewClassRepository()
	registrationRepo := repository.NewRegistrationRepository()
	submissionRepo := repository.NewSubmissionRepository()
	announcementRepo := repository.NewAnnouncementRepository()
	gradeRepo := repository.NewGradeRepository()

	submissionStorage := storage.NewLocal(cfg, log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(db, userRepo)
	courseService := service.NewCourseService(db, courseRepo, log)
	classService := service.NewClassService(db, courseRepo, classRepo, log)
	registrationService := service.NewRegistrationService(db, courseRepo, registrationRepo, log)
	announcementService := service.NewAnnouncementService(db, courseRepo, registrationRepo, announcementRepo, rdb, log)
	submissionService := service.NewSubmissionService(db, courseRepo, classRepo, registrationRepo, submissionRepo, submissionStorage, log)
	gradeService := service.NewGradeService(db, registrationRepo, gradeRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, userService),
		Course:       handler.NewCourseHandler(courseService),
		Class:        handler.NewClassHandler(classService, submissionService, cfg),
		Announcement: handler.NewAnnouncementHandler(announcementService),
		User:         handler.NewUserHandler(userService, registrationService, gradeService),
		WS:           handler.NewWSHandler(rdb, registrationService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
