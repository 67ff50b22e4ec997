package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/procesos/product-directory/internal/auth"
	config "github.com/procesos/product-directory/internal/cfg"
	v1Grpc "github.com/procesos/product-directory/internal/delivery/v1/grpc"
	v1Http "github.com/procesos/product-directory/internal/delivery/v1/http"
	"github.com/procesos/product-directory/internal/infrastructure/catalog"
	"github.com/procesos/product-directory/internal/infrastructure/kafka"
	s3Repo "github.com/procesos/product-directory/internal/repository/minio"
	"github.com/procesos/product-directory/internal/repository/pgdb"
	"github.com/procesos/product-directory/internal/repository/redis"
	"github.com/procesos/product-directory/internal/usecase"
	"github.com/procesos/product-directory/pkg/clients"
	"github.com/procesos/product-directory/pkg/closer"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/logger"
	"github.com/procesos/product-directory/pkg/postgres"
	"github.com/procesos/product-directory/pkg/tr"
)

const (
	initTimeout         = 10 * time.Second
	shutdownTimeout     = 10 * time.Second
	healthCheckInterval = 15 * time.Second
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv      *v1Http.Server
	grpcSrv      *v1Grpc.GRPCServer
	health       *v1Grpc.HealthReporter
	outboxWorker *kafka.OutboxWorker
}

// NewApp поднимает все зависимости. Уже открытые ресурсы закрываются, если инициализация упала.
func NewApp(cfg *config.Config, logger logger.Logger) (_ *App, err error) {
	resources := closer.NewCloser(0)
	app := &App{
		cfg:    cfg,
		logger: logger,
		closer: resources,
	}
	defer func() {
		if err != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if closeErr := resources.Close(ctx); closeErr != nil {
				logger.Warnf("cleanup after failed init: %v", closeErr)
			}
		}
	}()

	initCtx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err := initPGDB(initCtx, logger, cfg)
	if err != nil {
		return nil, err
	}
	resources.Add("postgres", func(context.Context) error {
		db.Close()
		logger.Infof("postgres pool closed")
		return nil
	})

	redisClient := clients.NewRedisClient(cfg.Redis)
	if err := redisClient.Ping(initCtx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	resources.Add("redis", func(context.Context) error {
		return redisClient.Close()
	})

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.EnsureBucket(initCtx, minioClient, cfg.Minio.BucketName); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	producer := kafka.NewProducer(logger, cfg.Kafka)
	if err := producer.EnsureTopic(initTimeout); err != nil {
		// брокер может подняться позже, события дождутся его в outbox
		logger.Warnf("kafka topic check failed: %v", err)
	}
	resources.Add("kafka producer", func(context.Context) error {
		return producer.Close()
	})

	productRepo := pgdb.NewProductRepo(db.Pool)
	userRepo := pgdb.NewUserRepo(db.Pool)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool)
	cacheRepo := redis.NewCacheRepo(redisClient, cfg.Redis, logger)
	snapshotRepo := s3Repo.NewSnapshotRepo(minioClient, cfg.Minio)
	catalogClient := catalog.NewClient(cfg.Catalog, logger)

	productUC := usecase.NewProductUC(
		productRepo,
		userRepo,
		outboxRepo,
		cacheRepo,
		tr.NewManager(db.Pool),
		catalogClient,
		snapshotRepo,
		kafka.NewProtoEncoder(),
		logger,
	)

	app.outboxWorker = kafka.NewOutboxWorker(
		outboxRepo,
		logger,
		producer,
		db.Dsn(),
		pgdb.OutboxChannel,
		cfg.Kafka.OutboxBatchSize,
		cfg.Kafka.OutboxLease,
	)

	app.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, logger)
	app.grpcSrv.RegisterServices()
	app.health = v1Grpc.NewHealthReporter(app.grpcSrv.Health(), map[string]v1Grpc.Pinger{
		"postgres": db,
		"redis":    redisClient,
	}, healthCheckInterval, logger)

	router := v1Http.NewRouter(chi.NewRouter(), logger)
	router.Init(productUC, auth.NewTokenAuthenticator(cfg.Jwt), cfg.Http.SwaggerHost)
	app.httpSrv = v1Http.NewServer(router.Handler(), cfg.Http)

	return app, nil
}

// Run запускает серверы и фоновые воркеры и блокируется до сигнала остановки или фатальной ошибки.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.outboxWorker.Start(ctx)
	a.closer.Add("outbox worker", func(context.Context) error {
		a.outboxWorker.Stop()
		a.logger.Infof("outbox worker stopped")
		return nil
	})

	a.health.Start(ctx)
	a.closer.Add("health reporter", func(context.Context) error {
		a.health.Stop()
		return nil
	})

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			grpcErrCh <- err
		}
	}()
	a.closer.Add("grpc server", func(ctx context.Context) error {
		err := a.grpcSrv.Stop(ctx)
		if errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warnf("gRPC server shutdown timeout")
			return nil
		}
		return err
	})

	httpErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			httpErrCh <- err
		}
	}()
	a.closer.Add("http server", func(ctx context.Context) error {
		if err := a.httpSrv.Stop(ctx); err != nil {
			return e.Wrap("HTTP server shutdown", err)
		}
		a.logger.Infof("HTTP server stopped")
		return nil
	})

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-httpErrCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	// Серверы закрываются первыми (LIFO), затем воркеры и клиенты.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}
	cancel()

	a.logger.Infof("application shutdown complete")
	return appErr
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
