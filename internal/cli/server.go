package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/audit"
	"live-quiz-service/internal/broadcast"
	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/domain"
	pgcatalog "live-quiz-service/internal/infra/postgres"
	transport "live-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	var loader catalog.Loader = catalog.NewStaticLoader(sampleQuestions())
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgcatalog.NewCatalogLoader(pool)
	case cfg.Catalog.Path != "":
		loader = catalog.NewFileLoader(cfg.Catalog.Path)
	}

	cat, err := catalog.New(ctx, loader)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "questions", cat.Len())

	recorder, closeAudit, err := buildRecorder(cfg)
	if err != nil {
		return err
	}
	defer closeAudit()

	scorer := buildScorer(cfg)
	hub := broadcast.NewHub(logger)
	session := app.NewSession(cat, scorer)
	service := app.NewService(cat, session, hub, recorder, logger)

	wsTimeout := config.Duration(cfg.Server.WSWriteTimeout, 5*time.Second)
	wsHandler := transport.NewWSHandler(service, hub, wsTimeout, logger)
	handler := transport.NewHandler(service, wsHandler, cfg.Server.AllowedOrigins, logger)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     handler.Router(),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz server", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildScorer(cfg config.Config) app.Scorer {
	if cfg.Scoring.Rule != config.RuleSpeed {
		return app.FlatScorer{}
	}
	s := app.SpeedScorer{
		Base:  cfg.Scoring.Base,
		Rate:  cfg.Scoring.Rate,
		Floor: cfg.Scoring.Floor,
	}
	if s.Base == 0 {
		s.Base = app.DefaultSpeedBase
	}
	if s.Rate == 0 {
		s.Rate = app.DefaultSpeedRate
	}
	if s.Floor == 0 {
		s.Floor = app.DefaultSpeedFloor
	}
	return s
}

func buildRecorder(cfg config.Config) (audit.Recorder, func(), error) {
	switch cfg.Audit.Sink {
	case "file":
		rec, err := audit.NewFileRecorder(cfg.Audit.Path)
		if err != nil {
			return nil, nil, err
		}
		return rec, func() { _ = rec.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rec := audit.NewRedisRecorder(client, cfg.Audit.Key)
		return rec, func() { _ = client.Close() }, nil
	default:
		return audit.Noop{}, func() {}, nil
	}
}

// sampleQuestions is the built-in demo catalog; point catalog.path or
// postgres.url at real content in production.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:           1,
			Prompt:       "What is 2 + 2?",
			Options:      []string{"3", "4", "5"},
			CorrectIndex: 1,
		},
		{
			ID:           2,
			Prompt:       "Which planet is known as the Red Planet?",
			Options:      []string{"Venus", "Jupiter", "Mars"},
			CorrectIndex: 2,
		},
	}
}
