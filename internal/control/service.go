// Package control wires the application together: configuration in,
// running service out.
package control

import (
	"context"
	"fmt"
	"log/slog"

	"adpilot/internal/core/config"
	"adpilot/internal/core/worker"
	redisclient "adpilot/internal/infra/redis"
	"adpilot/internal/infra/storage"
	"adpilot/internal/infra/storage/memory"
	"adpilot/internal/infra/storage/postgres"
	"adpilot/internal/llm"
	"adpilot/internal/llm/provider"
	"adpilot/internal/llm/retry"
	"adpilot/internal/notify"

	"github.com/pressly/goose/v3"
)

// Service is the composed application: the LLM client, its storage and
// the background workers, plus the admin HTTP server.
type Service struct {
	cfg         *config.AppConfig
	client      *llm.Client
	upstream    *provider.Client
	usage       storage.UsageRepository
	db          *postgres.DB
	redisClient *redisclient.Client
	scheduler   *notify.Scheduler
	pruner      *worker.Pruner
	server      *Server
	log         *slog.Logger
}

// NewService creates a Service with all dependencies initialized.
func NewService(cfg *config.AppConfig) (*Service, error) {

	// 1. Initialize usage storage
	var usage storage.UsageRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		usage = postgres.NewUsageRepo(db)
		slog.Info("Using PostgreSQL usage storage")
	} else {
		usage = memory.NewUsageRepo()
		slog.Info("Using memory usage storage")
	}

	// 2. Initialize the upstream client and the resilience facade
	upstream := provider.NewClient(cfg.LLM.APIBase, cfg.LLM.Timeout)

	client := llm.New(llm.Config{
		Chat:           upstream.Chat,
		APIKeys:        cfg.LLM.APIKeys,
		MaxKeyFailures: cfg.LLM.MaxKeyFailure,
		CacheEnabled:   cfg.LLM.CacheEnabled,
		CacheTTL:       cfg.LLM.CacheTTL,
		Coalesce:       cfg.LLM.Coalesce,
		Policy: retry.Policy{
			MaxAttempts:   cfg.LLM.MaxAttempts,
			BackoffFactor: cfg.LLM.BackoffFactor,
		},
		DefaultModel:   cfg.LLM.DefaultModel,
		Models:         cfg.LLM.Models,
		Rates:          cfg.Usage.Rates,
		DailyCallLimit: cfg.LLM.DailyCallLimit,
		Usage:          usage,
	})

	// 3. Initialize the daily digest scheduler. Redis-backed history
	// when available, in-memory otherwise.
	var redisClient *redisclient.Client
	var scheduler *notify.Scheduler

	if cfg.Notify.Enabled {
		var history notify.History = notify.NewMemoryHistory()
		if cfg.Redis.URL != "" {
			var err error
			redisClient, err = redisclient.NewClient(cfg.Redis)
			if err != nil {
				slog.Warn("Failed to connect to Redis, digest dedupe is process-local", "error", err)
			} else {
				history = redisClient
			}
		}

		scheduler = notify.NewScheduler(notify.Config{
			Interval: cfg.Notify.Interval,
			Features: cfg.Notify.Features,
		}, usage, history, logSender)
	}

	// 4. Initialize the usage pruner
	var pruner *worker.Pruner
	if cfg.Usage.Retention > 0 {
		pruner = worker.NewPruner(cfg.Usage.Retention, usage)
	}

	svc := &Service{
		cfg:         cfg,
		client:      client,
		upstream:    upstream,
		usage:       usage,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
		pruner:      pruner,
		log:         slog.Default(),
	}
	svc.server = NewServer(svc, cfg.Server.Port)
	return svc, nil
}

// Client returns the composed LLM client.
func (s *Service) Client() *llm.Client { return s.client }

// Usage returns the usage repository.
func (s *Service) Usage() storage.UsageRepository { return s.usage }

// Start starts the admin server and the background workers.
func (s *Service) Start(ctx context.Context) error {
	go func() {
		if err := s.server.Start(); err != nil {
			s.log.Error("Admin server failed", "error", err)
		}
	}()

	if s.scheduler != nil {
		s.log.Info("Starting digest scheduler", "features", s.cfg.Notify.Features)
		go s.scheduler.Start(ctx)
	}
	if s.pruner != nil {
		s.log.Info("Starting usage pruner", "retention", s.cfg.Usage.Retention)
		go s.pruner.Start(ctx)
	}

	return nil
}

// Stop shuts the service down.
func (s *Service) Stop(ctx context.Context) error {
	s.log.Info("Stopping service...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("Failed to close database", "error", err)
		}
	}

	return s.server.Stop(ctx)
}

// logSender writes digests to the log. Real transports (email, chat
// webhooks) slot in here.
func logSender(ctx context.Context, feature, digest string) error {
	slog.Info("Usage digest", "feature", feature, "digest", digest)
	return nil
}
