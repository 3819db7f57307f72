package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/teamlance/engine/pkg/config"
	"github.com/teamlance/engine/pkg/database"
	"github.com/teamlance/engine/pkg/logger"

	"github.com/teamlance/engine/internal/queue/tasks"
	"github.com/teamlance/engine/internal/relay"
	"github.com/teamlance/engine/internal/repository"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		},
		asynq.Config{
			Concurrency: cfg.AsynqConcurrency,
		},
	)

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.L().Fatal("failed to open database", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	kickoffRepo := repository.NewKickoffRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// deltas published here surface on api-side SSE streams through redis
	hub := relay.NewHub(rdb)

	matchHandler := tasks.NewMatchTaskHandler(assignmentRepo, candidateRepo, notificationRepo, hub)
	kickoffHandler := tasks.NewKickoffTaskHandler(
		projectRepo, assignmentRepo, candidateRepo, userRepo,
		rosterRepo, kickoffRepo, notificationRepo, hub, cfg.MeetingBaseURL,
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeMatchFanout, matchHandler.HandleMatchFanout)
	mux.HandleFunc(tasks.TypeKickoff, kickoffHandler.HandleKickoff)

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.L().Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.L().Error("worker stopped with error", zap.Error(err))
	}

	// allow in-flight tasks to finish gracefully
	srv.Shutdown()
}
