package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"shorts_factory/internal/archive"
	"shorts_factory/internal/captions"
	"shorts_factory/internal/config"
	"shorts_factory/internal/dedup"
	"shorts_factory/internal/llm"
	"shorts_factory/internal/media/pexels"
	"shorts_factory/internal/publisher"
	"shorts_factory/internal/render"
	"shorts_factory/internal/service"
	"shorts_factory/internal/source/newsapi"
	"shorts_factory/internal/source/reddit"
	"shorts_factory/internal/storage/postgres"
	"shorts_factory/internal/tts"
	"shorts_factory/internal/youtube"
)

// app holds the wired pipeline and everything that must be closed with it.
type app struct {
	db        *sqlx.DB
	publisher *publisher.RabbitMQ
	pipeline  *service.Pipeline
	logger    *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")

	a := &app{db: db, logger: logger}

	taskStore := postgres.NewTaskStore(db)
	deps := service.Dependencies{
		Tasks:     taskStore,
		RunLog:    postgres.NewRunLogStore(db),
		TxManager: postgres.NewTransactionManager(db),
		Gate:      dedup.NewGate(taskStore, logger),

		Writer:      llm.New(cfg.LLM, logger),
		Synthesizer: tts.NewEdgeTTS(cfg.TTS, logger),
		Prober:      tts.NewFFprobe(cfg.TTS.FFprobeCommand),
		Images:      pexels.New(cfg.Media, logger),
		Renderer:    render.New(cfg.Render, captions.StyleFromConfig(cfg.Captions, cfg.Render), logger),
		Transcriber: captions.NewWhisper(cfg.Captions, logger),
		Uploader:    youtube.New(cfg.YouTube, logger),
	}

	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		a.publisher = rabbitMQ
		deps.Publisher = rabbitMQ
	}

	if cfg.Archive.Enabled {
		store, err := archive.NewMinIO(cfg.Archive, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create archive client: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure archive bucket: %w", err)
		}
		deps.Archiver = store
	}

	if cfg.Sources.NewsAPI.Enabled {
		deps.Sources = append(deps.Sources, newsapi.New(cfg.Sources.NewsAPI, logger))
	}
	if cfg.Sources.Reddit.Enabled {
		src, err := reddit.New(cfg.Sources.Reddit, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Sources = append(deps.Sources, src)
	}

	a.pipeline = service.NewPipeline(deps, cfg.DomainSlots(), cfg.DomainNiches(), cfg.Pipeline, logger)
	return a, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close publisher", "error", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

// withApp runs fn against a freshly wired app and closes it afterwards.
func (c *commandContext) withApp(ctx context.Context, fn func(*app) error) error {
	cfg, logger, err := c.ensureConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}
	defer a.Close()
	return fn(a)
}
