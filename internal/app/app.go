package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/insumos-backend/internal/cfg"
	v1Http "github.com/DRSN-tech/insumos-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/insumos-backend/internal/infrastructure/catalogfeed"
	"github.com/DRSN-tech/insumos-backend/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/insumos-backend/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/insumos-backend/internal/repository/minio"
	"github.com/DRSN-tech/insumos-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/insumos-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/insumos-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/insumos-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/clients"
	"github.com/DRSN-tech/insumos-backend/pkg/closer"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/DRSN-tech/insumos-backend/pkg/postgres"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App держит собранные зависимости сервиса и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv  *v1Http.Server
	outbox   *kafka.OutboxWorker
	feed     *catalogfeed.Feed
	feedDone chan struct{}

	// ctx живёт до начала остановки; фоновые задачи завершаются по его отмене.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp подключается к внешним сервисам, применяет миграции и собирает слои.
// При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(2 * time.Second),
		ctx:    ctx,
		cancel: cancel,
		// Закрыт заранее: если Run не вызывался, ждать нечего.
		feedDone: closedChan(),
	}

	if err := a.init(); err != nil {
		cancel()
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		if cerr := a.closer.Close(closeCtx); cerr != nil {
			log.Warnf("cleanup after failed start: %v", cerr)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	cfg, log := a.cfg, a.logger

	startCtx, startCancel := context.WithTimeout(a.ctx, startupTimeout)
	defer startCancel()

	// === PostgreSQL ===
	db, err := postgres.Connect(startCtx, cfg.Db)
	if err != nil {
		log.Errorf(err, "failed to connect to database")
		return err
	}
	a.closer.AddSimple("postgres", db.Close)

	if err := postgres.RunMigrations(db.Dsn, postgres.DefaultMigrationsURL, log); err != nil {
		log.Errorf(err, "failed to run migrations")
		return err
	}

	trManager := manager.Must(trmpgx.NewDefaultFactory(db.Pool))

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.NewProductConverterImpl(), log)
	adminRepo := pgdb.NewAdminRepo(db.Pool, pgdbConv.NewAdminConverterImpl())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverterImpl(), pgdb.DefaultStaleAfter)

	// === MinIO ===
	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return err
	}
	if err := clients.EnsureBucket(startCtx, minioClient, cfg.Minio.BucketName); err != nil {
		log.Errorf(err, "failed to initialize MinIO bucket")
		return err
	}

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, a.ctx)

	// === Redis ===
	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", redisClient.Close)
	if err := redisClient.Ping(startCtx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return err
	}

	redisConverter := redisConv.NewConverterImpl()
	cacheRepo := redis.NewCacheRepo(redisClient, redisConverter, cfg.Redis, log)
	cartRepo := redis.NewCartRepo(redisClient, redisConverter, cfg.Redis)
	sessionRepo := redis.NewSessionRepo(redisClient)

	// === Kafka ===
	producer := kafka.NewProducer(log, cfg.Kafka)
	a.closer.Add("kafka producer", producer.Close)
	if err := producer.EnsureTopic(startupTimeout); err != nil {
		// Брокер может подняться позже; события дождутся его в outbox.
		log.Warnf("kafka topic %s not ensured: %v", cfg.Kafka.Topic, err)
	}

	a.outbox = kafka.NewOutboxWorker(
		outboxRepo,
		log,
		producer,
		postgres.NewListener(db.Pool, pgdb.OutboxChannel, cfg.Catalog.FeedReconnectMaxDelay, log),
		cfg.Kafka.OutboxInterval,
		cfg.Kafka.OutboxBatch,
	)
	a.closer.Add("outbox worker", a.outbox.Stop)

	// === Catalog feed ===
	a.feed = catalogfeed.NewFeed(
		productRepo,
		postgres.NewListener(db.Pool, catalogfeed.Channel, cfg.Catalog.FeedReconnectMaxDelay, log),
		log,
	)

	// === Usecases ===
	productUC := usecase.NewProductUC(
		productRepo,
		outboxRepo,
		trManager,
		imagesInfra,
		cacheRepo,
		log,
		cfg.Catalog.CleanupOrphanedImages,
	)

	policy := usecase.ResetOnQueryChange
	if cfg.Catalog.KeepPageOnQueryChange {
		policy = usecase.KeepPageOnQueryChange
	}
	catalogUC := usecase.NewCatalogUC(productUC, a.feed, cfg.Catalog.AdminPageSize, policy)

	checkout := usecase.NewCheckoutBuilder(cfg.Checkout.Host, cfg.Checkout.Destination)
	if cfg.Checkout.Destination == "" {
		log.Warnf("CHECKOUT_DESTINATION is empty, checkout will not produce links")
	}
	cartUC := usecase.NewCartUC(cartRepo, productUC, checkout, log)
	authUC := usecase.NewAuthUC(adminRepo, sessionRepo, cfg.Auth.SessionTTL, log)

	// === HTTP ===
	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(v1Http.UseCases{
		Product: productUC,
		Catalog: catalogUC,
		Cart:    cartUC,
		Auth:    authUC,
	}, v1Http.Options{
		SecureCookie:  cfg.Http.SecureCookie,
		MaxImageBytes: cfg.Minio.MaxImageBytes,
	})

	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	// Closer работает в обратном порядке: HTTP, очистка MinIO, фоновые задачи.
	a.closer.Add("catalog feed", a.waitFeed)
	a.closer.AddSimple("background tasks", a.cancel)
	a.closer.Add("minio cleanup", imagesInfra.WaitForCleanup)
	a.closer.Add("http server", a.httpSrv.Stop)

	return nil
}

// Run запускает фоновые задачи и HTTP-сервер и блокируется до сигнала или фатальной ошибки.
func (a *App) Run() error {
	log := a.logger

	a.outbox.Start(a.ctx)

	a.feedDone = make(chan struct{})
	go func() {
		defer close(a.feedDone)
		a.feed.Run(a.ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			log.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		log.Errorf(appErr, "HTTP server fatal error")
	case sig := <-shutdown:
		log.Infof("Received %s, stopping gracefully...", sig)
	}

	// === Graceful shutdown ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		log.Errorf(err, "shutdown finished with errors")
		if appErr == nil {
			appErr = err
		}
	}

	log.Infof("Application shutdown complete")
	return appErr
}

func (a *App) waitFeed(ctx context.Context) error {
	select {
	case <-a.feedDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
