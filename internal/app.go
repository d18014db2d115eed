package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"filevault-api/config"
	"filevault-api/internal/application/ports"
	"filevault-api/internal/application/services"
	"filevault-api/internal/infrastructure/blob"
	"filevault-api/internal/infrastructure/cache"
	"filevault-api/internal/infrastructure/clock"
	"filevault-api/internal/infrastructure/db/postgres"
	"filevault-api/internal/infrastructure/db/postgres/audit"
	"filevault-api/internal/infrastructure/db/postgres/backup"
	"filevault-api/internal/infrastructure/db/postgres/policy"
	"filevault-api/internal/infrastructure/db/postgres/store"
	"filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/infrastructure/metrics"
	"filevault-api/internal/infrastructure/mq"
	"filevault-api/internal/infrastructure/tracing"
	"filevault-api/internal/interface/api/rest"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/pkg/rmqconsumer"
	"filevault-api/pkg/schedule"
)

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	blobs      ports.BlobStore
	redis      *redis.Client
	locker     ports.Locker
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	mq         ports.RabbitMQ
	mqConsumer ports.RMQConsumer
	jobs       *services.Jobs
	shutdownFn func(context.Context) error
}

func NewApp(ctx context.Context) (*App, error) {
	// logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}
	defer logger.Sync()

	// config
	if err = godotenv.Load(".env"); err != nil {
		logger.Warn("no .env file, using process environment", zap.Error(err))
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	if cfg.App.JWTSecret == "" {
		logger.Fatal("SERVICE_JWT_SECRET is required")
	}

	// tracing
	shutdownTracing, err := tracing.Init(ctx, logger, cfg.App.Name, cfg.Tracing.Endpoint)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	// metrics
	mCounter := metrics.NewCounter()

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogGin(logger, mCounter))

	// httpServer
	httpSrv := &http.Server{
		Addr:    cfg.App.Host + ":" + cfg.App.Port,
		Handler: otelhttp.NewHandler(r, cfg.App.Name),
	}

	// db
	dbDsn, err := cfg.DBDSN()
	if err != nil {
		logger.Fatal("DB config error", zap.Error(err))
	}
	dbPool, err := postgres.New(ctx, logger, dbDsn)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err = postgres.Migrate(ctx, dbPool); err != nil {
		logger.Fatal("failed to apply schema", zap.Error(err))
	}

	// blob store
	blobs, err := blob.New(ctx, logger, cfg.Blob)
	if err != nil {
		logger.Fatal("failed to connect to object storage", zap.Error(err))
	}

	// job lock
	var (
		rdb    *redis.Client
		locker ports.Locker = cache.LocalLocker{}
	)
	if addr := cfg.RedisAddr(); addr != "" {
		rdb, err = cache.NewClient(ctx, logger, addr, cfg.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		locker = cache.NewLocker(rdb, logger)
	} else {
		logger.Warn("redis is not configured, background jobs run without a distributed lock")
	}

	// rabbitMQ
	rabbitDsn, err := cfg.AMQPDSN()
	if err != nil {
		logger.Fatal("RabbitMQ config error", zap.Error(err))
	}
	rbMQ := mq.New(cfg.MQ, logger, mCounter)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		logger.Fatal("failed to connect to rabbitMQ", zap.Error(err))
	}
	if err = rbMQ.Init(); err != nil {
		logger.Fatal("failed init rabbitMQ", zap.Error(err))
	}
	// rmqConsumer persists the audit trail
	rmqConsumer := rmqconsumer.New(cfg.MQ, logger, audit.NewRepository(dbPool))
	if err = rmqConsumer.Connect(rabbitDsn); err != nil {
		logger.Fatal("failed to connect rabbitMQ consumer", zap.Error(err))
	}
	if err = rmqConsumer.Init(); err != nil {
		logger.Fatal("failed to init rabbitMQ consumer", zap.Error(err))
	}

	return &App{
		logger:     logger,
		cfg:        cfg,
		db:         dbPool,
		blobs:      blobs,
		redis:      rdb,
		locker:     locker,
		httpSrv:    httpSrv,
		router:     r,
		mCounter:   mCounter,
		mq:         rbMQ,
		mqConsumer: rmqConsumer,
		shutdownFn: shutdownTracing,
	}, nil
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.mq != nil && a.mq.GetConn() != nil {
		a.mq.GetConn().Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.shutdownFn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownPeriod)
		defer cancel()
		if err := a.shutdownFn(ctx); err != nil {
			a.logger.Error("tracing shutdown error", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		a.mq.PublisherWorker(ctx)
		return nil
	})

	g.Go(func() error {
		a.mqConsumer.DeliveryWorker(ctx)
		return nil
	})

	// background jobs
	if a.jobs != nil {
		g.Go(func() error {
			return schedule.Daily(ctx, a.logger, "purge", a.cfg.Lifecycle.PurgeAt, a.jobs.Purge)
		})
		if a.cfg.Lifecycle.BackupEnabled {
			g.Go(func() error {
				return schedule.Daily(ctx, a.logger, "backup", a.cfg.Lifecycle.BackupAt, a.jobs.Backup)
			})
		}
	}

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownPeriod)
	defer shutdownCancel()
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) InitControllers() {
	// store
	tm := store.NewTxManager(a.db, a.logger)
	clk := clock.System{}

	// services
	jwtService := jwt.New(a.cfg.App.JWTSecret)
	lifecycleService := services.NewLifecycleService(tm, a.blobs, clk, a.mq, a.logger, a.mCounter)
	sharingService := services.NewSharingService(tm, clk, a.mq, a.mCounter)
	folderService := services.NewFolderService(tm, lifecycleService, sharingService, clk, a.mq, a.mCounter)
	fileService := services.NewFileService(tm, a.blobs, sharingService, lifecycleService, clk, a.mq, a.logger, a.mCounter)
	uploadService := services.NewUploadService(tm, a.blobs, clk, a.mq, a.logger, a.mCounter)
	accountService := services.NewAccountService(tm, lifecycleService, clk, a.mq, a.cfg.App.DefaultQuota, a.mCounter)
	backupService := services.NewBackupService(tm, backup.NewRepository(a.db), a.blobs, clk, a.mq, a.logger, a.mCounter)
	policies := policy.NewRepository(a.db)
	termsService := services.NewTermsService(tm, policies, lifecycleService, clk, a.mq, a.mCounter)

	// jobs
	a.jobs = services.NewJobs(
		lifecycleService,
		backupService,
		policies,
		a.locker,
		a.cfg.Lifecycle.Retention,
		a.cfg.Redis.LockTTL,
		a.logger,
		metrics.NewJobHistogram(),
	)

	// controllers
	rest.NewFolderController(a.router, folderService, sharingService, a.logger, jwtService, termsService)
	rest.NewFileController(a.router, uploadService, fileService, a.logger, jwtService, termsService, a.cfg.App.MaxUploadBytes)
	rest.NewShareController(a.router, sharingService, fileService, clk, a.logger, jwtService, termsService)
	rest.NewAccountController(a.router, accountService, a.logger, jwtService)
	rest.NewTermsController(a.router, termsService, a.logger, jwtService)
	rest.NewBackupController(a.router, backupService, a.logger, jwtService, termsService)

	// ops
	a.router.GET(rest.RouteHealth, func(c *gin.Context) {
		if err := a.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))
}

func (a *App) Logger() *zap.Logger { return a.logger }
