package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"marketplace-management-api/internal/config"
	"marketplace-management-api/internal/controller"
	"marketplace-management-api/internal/dispatcher"
	"marketplace-management-api/internal/feed"
	"marketplace-management-api/internal/repo"
	"marketplace-management-api/internal/repo/memdb"
	"marketplace-management-api/internal/service"
	"marketplace-management-api/pkg/http_server"
	"marketplace-management-api/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
)

func runMigrations(postgresDB *postgres.Postgres, dir string, logger *slog.Logger) error {
	driver, err := pgmigrate.WithInstance(postgresDB.Database, &pgmigrate.Config{})
	if err != nil {
		return err
	}

	migrations, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return err
	}

	if err := migrations.Up(); err != nil {
		if err == migrate.ErrNoChange {
			logger.Info("no change made by migration scripts")
			return nil
		}

		return err
	}

	return nil
}

// buildRepositories connects to postgres when POSTGRES_CONN is set and
// falls back to the in-memory store otherwise, which keeps local runs
// free of any infrastructure.
func buildRepositories(cfg *config.Config, logger *slog.Logger) (*repo.Repositories, func(), error) {
	if cfg.PostgresConn == "" {
		logger.Info("no postgres connection configured, using in-memory store")
		return memdb.NewRepositories(), func() {}, nil
	}

	logger.Info("connecting database")
	postgresDB, err := postgres.NewDB(cfg.PostgresConn)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("running migrations")
	if err := runMigrations(postgresDB, cfg.MigrationsDir, logger); err != nil {
		postgresDB.Close()
		return nil, nil, err
	}

	return repo.NewRepositories(postgresDB), func() { postgresDB.Close() }, nil
}

func Run() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	repositories, closeStore, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Error("build repositories", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	feedLog, err := feed.NewLog(context.Background(), repositories.Event, cfg.FeedRetention, logger)
	if err != nil {
		logger.Error("open change feed", "err", err)
		os.Exit(1)
	}

	services := service.NewServices(repositories, feedLog, logger)
	deltaDispatcher := dispatcher.New(feedLog, repositories, cfg.SubscriberQueue, logger)

	handler := echo.New()

	logger.Info("setup routes")
	controller.SetupRoutesHandlers(handler, services, deltaDispatcher)

	logger.Info("starting server", "addr", cfg.Addr)
	httpServer := http_server.New(handler, cfg.Addr)

	logger.Info("ready to process requests")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		logger.Info("got signal", "signal", s.String())
	case err = <-httpServer.Notify():
		logger.Error("server stopped", "err", err)
	}

	logger.Info("shutting down")
	if err := httpServer.Shutdown(); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	deltaDispatcher.Shutdown()
	feedLog.Close()
	logger.Info("successful shutdown")
}
