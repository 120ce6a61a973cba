package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/spinwin/internal/common/clock"
	"github.com/KirkDiggler/spinwin/internal/common/logging"
	"github.com/KirkDiggler/spinwin/internal/common/random"
	"github.com/KirkDiggler/spinwin/internal/common/uuid"
	"github.com/KirkDiggler/spinwin/internal/config"
	"github.com/KirkDiggler/spinwin/internal/handlers/api"
	"github.com/KirkDiggler/spinwin/internal/metrics"
	"github.com/KirkDiggler/spinwin/internal/repositories/entry"
	"github.com/KirkDiggler/spinwin/internal/services/announce"
	"github.com/KirkDiggler/spinwin/internal/services/campaign"
	"github.com/KirkDiggler/spinwin/internal/services/feed"
	"github.com/KirkDiggler/spinwin/internal/services/leaderboard"
	"github.com/KirkDiggler/spinwin/internal/services/notifier"
	"github.com/KirkDiggler/spinwin/internal/services/synthetic"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "spinwin: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(&logging.Config{
		ServiceName: cfg.ServiceName,
		Level:       cfg.LogLevel,
		ElasticURL:  cfg.ElasticURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	redisErr := redisClient.Ping(pingCtx).Err()
	cancel()

	// Initialize repository
	var repo entry.Repository
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to create postgres pool: %w", err)
		}
		defer pool.Close()

		pgRepo, err := entry.NewPostgres(&entry.PostgresConfig{Pool: pool})
		if err != nil {
			return fmt.Errorf("failed to create entry repository: %w", err)
		}
		if err := pgRepo.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		repo = pgRepo
	default:
		if redisErr != nil {
			return fmt.Errorf("failed to connect to Redis: %w", redisErr)
		}
		redisRepo, err := entry.NewRedis(&entry.RedisConfig{RedisClient: redisClient})
		if err != nil {
			return fmt.Errorf("failed to create entry repository: %w", err)
		}
		repo = redisRepo
	}

	// Initialize live feed; without Redis the feed only reaches this process
	var liveFeed feed.Feed
	if redisErr == nil {
		redisFeed, err := feed.NewRedis(&feed.RedisConfig{RedisClient: redisClient, Logger: logger})
		if err != nil {
			return fmt.Errorf("failed to create feed: %w", err)
		}
		liveFeed = redisFeed
	} else {
		logger.Warn("redis unavailable, using in-process feed", zap.Error(redisErr))
		liveFeed = feed.NewMemory()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	rnd := random.New(&random.Config{Seed: cfg.RandomSeed})
	clk := &clock.DefaultClock{}
	ids := uuid.New()

	announcer, err := announce.NewService(&announce.ServiceConfig{Random: rnd})
	if err != nil {
		return fmt.Errorf("failed to create announcer: %w", err)
	}

	notify, closeNotifiers, err := buildNotifiers(cfg, announcer, logger)
	if err != nil {
		return err
	}
	defer closeNotifiers()

	table := cfg.Campaign.Table()
	policy, err := cfg.Campaign.SelectionPolicy()
	if err != nil {
		return fmt.Errorf("failed to build selection policy: %w", err)
	}

	campaignSvc, err := campaign.New(&campaign.Config{
		Repository:     repo,
		Feed:           liveFeed,
		Notifier:       notify,
		Clock:          clk,
		UUID:           ids,
		Random:         rnd,
		Logger:         logger.Named("campaign"),
		Metrics:        m,
		Table:          table,
		Geometry:       cfg.Campaign.Geometry,
		Policy:         policy,
		MinTurns:       cfg.MinTurns,
		MaxTurns:       cfg.MaxTurns,
		SpinDuration:   cfg.SpinDuration,
		DuplicateCheck: cfg.Campaign.DuplicateCheck,
		SessionTTL:     cfg.SessionTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create campaign service: %w", err)
	}
	// deferred after the stores and notifiers so accepted spins are stored
	// before those connections close
	defer campaignSvc.Close()

	var generator leaderboard.Generator
	if cfg.FakeEntries {
		gen, err := synthetic.New(&synthetic.Config{
			Clock:        clk,
			Random:       rnd,
			UUID:         ids,
			Logger:       logger.Named("synthetic"),
			Cap:          cfg.FakeCap,
			InitialDelay: cfg.FakeInitialDelay,
			MinInterval:  cfg.FakeMinInterval,
			MaxInterval:  cfg.FakeMaxInterval,
		})
		if err != nil {
			return fmt.Errorf("failed to create synthetic generator: %w", err)
		}
		generator = gen
	}

	board, err := leaderboard.New(&leaderboard.Config{
		Repository: repo,
		Feed:       liveFeed,
		Clock:      clk,
		Logger:     logger.Named("leaderboard"),
		Generator:  generator,
		RealLimit:  cfg.LeaderboardSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create leaderboard: %w", err)
	}
	if err := board.Start(ctx); err != nil {
		return fmt.Errorf("failed to start leaderboard: %w", err)
	}
	defer board.Stop()

	server, err := api.New(&api.Config{
		Campaign:          campaignSvc,
		Board:             board,
		Announcer:         announcer,
		Storage:           repo,
		Logger:            logger.Named("http"),
		Gatherer:          registry,
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}
	defer server.Close()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", httpServer.Addr),
			zap.String("storage", cfg.StorageDriver),
			zap.String("policy", policy.Name()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// websocket connections are hijacked and not tracked by Shutdown
	server.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	return nil
}

// buildNotifiers returns nil when nothing is configured
func buildNotifiers(cfg *config.Config, announcer announce.Service, logger *zap.Logger) (notifier.Notifier, func(), error) {
	var notifiers notifier.Multi
	closeFn := func() {}

	if cfg.WebhookURL != "" {
		webhook, err := notifier.NewWebhook(&notifier.WebhookConfig{
			URL:     cfg.WebhookURL,
			Timeout: cfg.WebhookTimeout,
		})
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to create webhook notifier: %w", err)
		}
		notifiers = append(notifiers, webhook)
	}

	if cfg.DiscordWebhookID != "" {
		discord, err := notifier.NewDiscord(&notifier.DiscordConfig{
			WebhookID:    cfg.DiscordWebhookID,
			WebhookToken: cfg.DiscordWebhookToken,
			Username:     "Spin & Win",
			Announcer:    announcer,
		})
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to create Discord notifier: %w", err)
		}
		notifiers = append(notifiers, discord)
	}

	if cfg.AMQPURL != "" {
		bus, err := notifier.NewAMQP(&notifier.AMQPConfig{
			URL:      cfg.AMQPURL,
			Exchange: cfg.AMQPExchange,
		})
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to create AMQP notifier: %w", err)
		}
		notifiers = append(notifiers, bus)
		closeFn = func() {
			if err := bus.Close(); err != nil {
				logger.Warn("failed to close AMQP connection", zap.Error(err))
			}
		}
	}

	logger.Info("notifiers configured", zap.Int("count", len(notifiers)))
	if len(notifiers) == 0 {
		return nil, closeFn, nil
	}
	return notifiers, closeFn, nil
}
