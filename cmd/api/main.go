package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/teamlance/engine/internal/api"
	"github.com/teamlance/engine/internal/api/handlers"
	"github.com/teamlance/engine/internal/relay"
	"github.com/teamlance/engine/internal/repository"
	"github.com/teamlance/engine/internal/services"
	"github.com/teamlance/engine/pkg/config"
	"github.com/teamlance/engine/pkg/database"
	"github.com/teamlance/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting engine api",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("database connected")

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	hub := relay.NewHub(rdb)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer asynqClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	authSvc := services.NewAuthService(userRepo, candidateRepo, jwtSecret)
	projectSvc := services.NewProjectService(projectRepo, assignmentRepo, hub)
	assignmentSvc := services.NewAssignmentService(projectRepo, assignmentRepo, candidateRepo, asynqClient, hub)
	kickoffSvc := services.NewKickoffService(projectRepo, assignmentRepo, asynqClient, hub)

	router := api.NewRouter(api.Dependencies{
		HMACSecret:         jwtSecret,
		DB:                 db,
		AuthHandler:        handlers.NewAuthHandler(authSvc),
		ProjectsHandler:    handlers.NewProjectsHandler(projectSvc, kickoffSvc),
		AssignmentsHandler: handlers.NewAssignmentsHandler(assignmentSvc),
		CandidatesHandler:  handlers.NewCandidatesHandler(candidateRepo, notificationRepo),
		EventsHandler:      handlers.NewEventsHandler(projectSvc, hub),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// relay consumer: deltas published by the worker reach local SSE streams
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
