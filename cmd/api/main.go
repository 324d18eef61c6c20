package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/classroom-kit/student-records/internal/api/http"
	"github.com/classroom-kit/student-records/internal/api/http/handlers"
	"github.com/classroom-kit/student-records/internal/auth"
	"github.com/classroom-kit/student-records/internal/config"
	"github.com/classroom-kit/student-records/internal/events"
	"github.com/classroom-kit/student-records/internal/observability"
	"github.com/classroom-kit/student-records/internal/persistence"
	"github.com/classroom-kit/student-records/internal/repository"
	"github.com/classroom-kit/student-records/internal/repository/memory"
	"github.com/classroom-kit/student-records/internal/service"
	"github.com/classroom-kit/student-records/internal/storage"
	"github.com/classroom-kit/student-records/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	sessions := persistence.NewNoopSessionStore()
	if redis != nil {
		sessions = persistence.NewRedisSessionStore(redis.Client)
	}

	var (
		userRepo    repository.UserRepository
		studentRepo repository.StudentRepository
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		studentRepo = repository.NewStudentRepository(pg.PoolHandle())
	} else {
		userRepo = memory.NewUserRepository()
		studentRepo = memory.NewStudentRepository()
	}

	var archive storage.ObjectStorage
	if cfg.Storage.Enabled() {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Fatal("failed to init object storage", zap.Error(err))
		}
		if err := client.EnsureBucket(ctx); err != nil {
			logger.Fatal("failed to ensure export bucket", zap.Error(err))
		}
		archive = client
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, cfg, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err := authService.EnsureAdmin(ctx); err != nil {
		logger.Fatal("failed to ensure administrator account", zap.Error(err))
	}
	studentService := service.NewStudentService(service.StudentDependencies{
		StudentRepo: studentRepo,
		Archive:     archive,
		Logger:      logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, sessions, cfg.Admin.Email, logger)

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name, httptransport.ErrorHandler(logger, metrics))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Admin:          handlers.NewAdminHandler(authService),
		Students:       handlers.NewStudentsHandler(studentService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
