package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/colocapp/colocourses/internal/catalog"
	"github.com/colocapp/colocourses/internal/config"
	"github.com/colocapp/colocourses/internal/domain"
	"github.com/colocapp/colocourses/internal/httpserver"
	"github.com/colocapp/colocourses/internal/httpserver/deps"
	"github.com/colocapp/colocourses/internal/hub"
	"github.com/colocapp/colocourses/internal/logger"
	"github.com/colocapp/colocourses/internal/metrics"
	"github.com/colocapp/colocourses/internal/redis"
	"github.com/colocapp/colocourses/internal/registry"
	"github.com/colocapp/colocourses/internal/scheduler"
	"github.com/colocapp/colocourses/internal/store"
	memstore "github.com/colocapp/colocourses/internal/store/memory"
	redisstore "github.com/colocapp/colocourses/internal/store/redis"
	"github.com/colocapp/colocourses/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	trimmer     *scheduler.MessageTrimmer
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Pick the store: in-memory in dev mode, Redis otherwise.
	var (
		st          store.Store
		redisClient *goredis.Client
		trimmer     *scheduler.MessageTrimmer
	)
	if cfg.DevMode {
		loggerClient.Info("dev mode: using in-memory store")
		st = memstore.New(cfg.MessageRetention)
	} else {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
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
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")

		rstore := redisstore.NewStore(client, cfg.MessageRetention)
		trimmer = scheduler.NewMessageTrimmer(rstore, loggerClient, cfg.TrimInterval)
		st = rstore
		redisClient = client
	}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		loggerClient.Errorf("Failed to load catalog: %v", err)
		os.Exit(1)
	}

	codes := domain.NewCodeGenerator(cat.CodeWords)
	reg := registry.New(st, codes, loggerClient)
	m := metrics.New(prometheus.DefaultRegisterer)
	h := hub.New(st, loggerClient, m)

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		Store:        st,
		Registry:     reg,
		Hub:          h,
		Catalog:      cat,
		Metrics:      m,
		RedisClient:  redisClient,
		PromGatherer: prometheus.DefaultGatherer,
		CreateBurst:  cfg.CreateBurst,
		CreatePerMin: cfg.CreatePerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		trimmer:     trimmer,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Colocourses v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Colocourses %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.trimmer != nil {
		a.trimmer.Start(ctx)
		a.logger.Info("chat trimmer started",
			logger.Duration("interval", a.cfg.TrimInterval))
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

	if a.trimmer != nil {
		a.trimmer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Colocourses stopped cleanly")
	return nil
}
