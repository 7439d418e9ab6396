package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/lifehub/internal/config"
	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/lifehub/internal/index"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
	"github.com/MrSnakeDoc/lifehub/internal/metrics"
	"github.com/MrSnakeDoc/lifehub/internal/player"
	"github.com/MrSnakeDoc/lifehub/internal/redis"
	"github.com/MrSnakeDoc/lifehub/internal/scheduler"
	"github.com/MrSnakeDoc/lifehub/internal/sources/catalog"
	"github.com/MrSnakeDoc/lifehub/internal/store"
	redisstore "github.com/MrSnakeDoc/lifehub/internal/store/redis"
	"github.com/MrSnakeDoc/lifehub/internal/version"
)

// catalogMaxWait caps a single wait between catalog read retries.
const catalogMaxWait = 5 * time.Second

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	registry    *index.Registry
	reloader    *scheduler.CatalogReloader
	flusher     *scheduler.ProjectionFlusher // nil when memory only
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	m := metrics.New()

	// Initialize Redis early - fail fast if configured but unavailable
	var redisClient *goredis.Client
	if cfg.Redis() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient.Named("redis"))
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		redisClient = client
		loggerClient.Info("Redis initialized successfully")
	} else {
		loggerClient.Warn("LIFEHUB_REDIS_ADDR not set, state is kept in memory only")
	}

	// The flusher needs the registry and the collections need the flusher
	// as change hook; the hook reads the variable at call time.
	var flusher *scheduler.ProjectionFlusher
	registry := index.NewRegistry(store.Options{
		Weights:       cfg.Weights,
		HistoryLimit:  cfg.HistoryLimit,
		SearchLatency: cfg.SearchLatency,
		Logger:        loggerClient.Named("store"),
		Metrics:       m,
		OnChange: func(kind domain.Kind) {
			if flusher != nil {
				flusher.Notify(kind)
			}
		},
	})

	if redisClient != nil {
		projections := redisstore.NewStore(redisClient)

		// Restore persisted state before the first request can mutate it
		syncer := scheduler.NewProjectionSyncer(projections, registry, loggerClient.Named("sync"), scheduler.SyncRetry{
			Attempts: cfg.SyncRetries,
			Initial:  cfg.SyncRetryWait,
			MaxWait:  cfg.RedisMaxWait,
		})
		syncCtx, cancel := context.WithTimeout(context.Background(), cfg.SyncTimeout)
		err := syncer.Sync(syncCtx)
		cancel()
		if err != nil {
			// Serving from defaults would overwrite the stored state on the first flush
			loggerClient.Errorf("Failed to restore projections from Redis: %v", err)
			os.Exit(1)
		}

		flusher = scheduler.NewProjectionFlusher(projections, registry, loggerClient.Named("flusher"), m, cfg.FlushInterval)
	}

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	source := catalog.NewSource(cfg.CatalogFile, catalog.RetryOptions{
		Attempts: cfg.CatalogRetries,
		Initial:  cfg.CatalogRetryWait,
		MaxWait:  catalogMaxWait,
	}, loggerClient.Named("catalog"))
	reloader := scheduler.NewCatalogReloader(source, registry, loggerClient.Named("reloader"), cfg.ReloadInterval, reloadTrigger)

	// Finished listens land in the music history
	music, err := registry.Collection(domain.KindMusic)
	if err != nil {
		loggerClient.Errorf("music store not registered: %v", err)
		os.Exit(1)
	}
	players := player.NewSessions(music, loggerClient.Named("player"))

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		RateBurst:     cfg.RateBurst,
		RatePerMin:    cfg.RatePerMin,
		RedisClient:   redisClient,
		Registry:      registry,
		Metrics:       m,
		Players:       players,
		Flusher:       flusher,
		ReloadTrigger: reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		registry:    registry,
		reloader:    reloader,
		flusher:     flusher,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting LifeHub %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start catalog reloader (loads every catalog and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	// Start projection flusher
	if a.flusher != nil {
		if err := a.flusher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start projection flusher: %w", err)
		}
		a.logger.Info("projection flusher started",
			logger.Duration("interval", a.cfg.FlushInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop reloader
	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// No request can mutate state anymore: cancel searches, persist the rest
	a.registry.Close()
	if a.flusher != nil {
		a.flusher.Stop()
		a.logger.Info("✅ Projections flushed")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ LifeHub stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
