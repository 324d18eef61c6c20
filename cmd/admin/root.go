package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/classroom-kit/student-records/internal/config"
	"github.com/classroom-kit/student-records/internal/events"
	"github.com/classroom-kit/student-records/internal/observability"
	"github.com/classroom-kit/student-records/internal/persistence"
	"github.com/classroom-kit/student-records/internal/repository"
	"github.com/classroom-kit/student-records/internal/service"
	"github.com/classroom-kit/student-records/internal/worker"
)

// adminEnv holds everything a maintenance command needs.
type adminEnv struct {
	cfg      *config.Config
	logger   *zap.Logger
	pg       *persistence.Postgres
	auth     *service.AuthService
	students *service.StudentService
	closed   bool
}

func (e *adminEnv) close() {
	if e.closed {
		return
	}
	e.closed = true
	if e.pg != nil {
		e.pg.Close()
	}
	_ = e.logger.Sync()
}

type envLoader func(ctx context.Context) (*adminEnv, error)

var errNoDatabase = errors.New("POSTGRES_DSN is required for administrative commands")

// loadEnv connects to Postgres and builds the services. Mail notifications
// triggered by commands go through the same SMTP settings as the API.
func loadEnv(ctx context.Context) (*adminEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if !pg.Enabled() {
		return nil, errNoDatabase
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, cfg, logger)

	return &adminEnv{
		cfg:    cfg,
		logger: logger,
		pg:     pg,
		auth: service.NewAuthService(*cfg, service.AuthDependencies{
			UserRepo:   repository.NewUserRepository(pg.PoolHandle()),
			Dispatcher: dispatcher,
			Logger:     logger,
		}),
		students: service.NewStudentService(service.StudentDependencies{
			StudentRepo: repository.NewStudentRepository(pg.PoolHandle()),
			Logger:      logger,
		}),
	}, nil
}

// newRootCmd builds the command tree. The returned cleanup releases whatever
// PersistentPreRunE loaded and must run after Execute returns, including when
// a command fails.
func newRootCmd(load envLoader) (*cobra.Command, func()) {
	var (
		env   *adminEnv
		actor string
	)

	root := &cobra.Command{
		Use:          "student-admin",
		Short:        "Maintenance commands for the student records service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			env, err = load(cmd.Context())
			return err
		},
	}
	root.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "name recorded in the audit log for destructive actions")

	getEnv := func() *adminEnv { return env }
	getActor := func() string { return actor }

	root.AddCommand(
		newMigrateCmd(getEnv),
		newUsersCmd(getEnv, getActor),
		newStudentsCmd(getEnv),
	)

	cleanup := func() {
		if env != nil {
			env.close()
		}
	}
	return root, cleanup
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return "cli:" + u
	}
	return "cli"
}
