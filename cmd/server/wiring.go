package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/achledger/internal/adapter/http"
	"github.com/iho/achledger/internal/adapter/http/handler"
	"github.com/iho/achledger/internal/adapter/http/middleware"
	"github.com/iho/achledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/achledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/achledger/internal/adapter/repository/redis"
	"github.com/iho/achledger/internal/infrastructure/config"
	"github.com/iho/achledger/internal/infrastructure/crypto"
	"github.com/iho/achledger/internal/infrastructure/eventpublisher"
	"github.com/iho/achledger/internal/infrastructure/metrics"
	"github.com/iho/achledger/internal/infrastructure/postgres"
	"github.com/iho/achledger/internal/infrastructure/redis"
	"github.com/iho/achledger/internal/infrastructure/scheduler"
	"github.com/iho/achledger/internal/nacha"
	"github.com/iho/achledger/internal/usecase"
)

// storage is the set of repositories behind the use cases.
type storage struct {
	txManager usecase.TransactionManager
	entries   usecase.EntryRepository
	groups    usecase.GroupRepository
	files     usecase.FileRepository
	holidays  usecase.HolidayRepository
	sequence  usecase.SequenceGenerator
	outbox    usecase.OutboxRepository
	retrier   usecase.Retrier
	checks    map[string]handler.Pinger
	close     func()
}

// app is everything the server runs.
type app struct {
	router      http.Handler
	scheduler   *scheduler.Scheduler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	close       func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")

		store := memory.NewStore()

		return &storage{
			txManager: memory.NewTxManager(store),
			entries:   memory.NewEntryRepository(store),
			groups:    memory.NewGroupRepository(store),
			files:     memory.NewFileRepository(store),
			holidays:  memory.NewHolidayRepository(store).WithFederalHolidays(usecase.SystemClock{}),
			sequence:  memory.NewSequenceGenerator(store),
			outbox:    memory.NewOutboxRepository(store),
			checks:    map[string]handler.Pinger{},
			close:     func() {},
		}, nil
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &storage{
		txManager: postgresRepo.NewTxManager(pool),
		entries:   postgresRepo.NewEntryRepository(pool),
		groups:    postgresRepo.NewGroupRepository(pool),
		files:     postgresRepo.NewFileRepository(pool),
		holidays:  postgresRepo.NewHolidayRepository(pool).WithFederalHolidays(usecase.SystemClock{}),
		sequence:  postgresRepo.NewSequenceGenerator(pool),
		outbox:    postgresRepo.NewOutboxRepository(pool),
		retrier:   postgresRepo.NewRetrier(log, m),
		checks:    map[string]handler.Pinger{"postgres": pool.Ping},
		close:     pool.Close,
	}, nil
}

func openRedis(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*goredis.Client, error) {
	client, err := redis.NewClient(ctx, cfg.RedisURL, redis.Options{
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if errors.Is(err, redis.ErrDisabled) {
		log.Warn().Msg("REDIS_URL is empty: idempotency keys, shared holiday cache and batch lock are disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	log.Info().Msg("connected to redis")
	return client, nil
}

func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	maxAmount, _ := cfg.TransferLimit()

	m := metrics.New(reg)

	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryptor: %w", err)
	}

	st, err := openStorage(ctx, cfg, log, m)
	if err != nil {
		return nil, err
	}
	closers := []func(){st.close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	redisClient, err := openRedis(ctx, cfg, log)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	holidays := st.holidays
	var (
		idempotency usecase.IdempotencyStore
		locker      usecase.Locker
	)
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
		holidays = redisRepo.NewHolidayCache(redisClient, st.holidays, cfg.HolidayCacheTTL, m, log)
		idempotency = redisRepo.NewIdempotencyStore(redisClient)
		locker = redisRepo.NewLocker(redisClient)
		st.checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	outbox := st.outbox
	if !cfg.OutboxEnabled {
		outbox = postgresRepo.NewNullOutboxRepository()
	}

	var verifier func([]byte) error
	if cfg.NACHAVerifyOutput {
		verifier = nacha.VerifyContent
	}

	clock := usecase.SystemClock{}
	idGen := postgresRepo.NewULIDGenerator()

	calendar := usecase.NewBusinessDayCalendar(holidays, clock, cfg.CalendarStaleness, m, log)
	ledger := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager: st.txManager,
		Entries:   st.entries,
		Groups:    st.groups,
		Outbox:    outbox,
		Calendar:  calendar,
		Encryptor: encryptor,
		IDGen:     idGen,
		Retrier:   st.retrier,
		Clock:     clock,
		Metrics:   m,
		Logger:    log,
		MaxAmount: maxAmount,
		Timeout:   cfg.StorageTimeout,
	})
	batch := usecase.NewBatchUseCase(usecase.BatchConfig{
		TxManager:   st.txManager,
		Ledger:      ledger,
		Files:       st.files,
		Sequence:    st.sequence,
		Outbox:      outbox,
		Encoder:     nacha.NewEncoder(),
		Verifier:    verifier,
		IDGen:       idGen,
		Clock:       clock,
		Metrics:     m,
		Logger:      log,
		Settings:    cfg.NACHASettings(),
		Policy:      usecase.ClaimPolicy(cfg.ClaimPolicy),
		MaxAttempts: cfg.MaxAssemblyAttempts,
		Timeout:     cfg.StorageTimeout,
	})
	reconciler := usecase.NewReconciliationUseCase(st.files, st.entries, nil, clock)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransferHandler:  handler.NewTransferHandler(ledger, log),
		EntryHandler:     handler.NewEntryHandler(ledger, log),
		CalendarHandler:  handler.NewCalendarHandler(calendar, log),
		BatchHandler:     handler.NewBatchHandler(batch, clock, log),
		FileHandler:      handler.NewFileHandler(batch, reconciler, log),
		HealthHandler:    handler.NewHealthHandler(st.checks),
		IdempotencyStore: idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:           log,
	})

	a := &app{router: router, rateLimiter: rateLimiter, close: closeAll}

	if cfg.SchedulerEnabled {
		a.scheduler, err = scheduler.New(scheduler.Config{
			Assembler:    batch,
			Locker:       locker,
			Clock:        clock,
			Logger:       log,
			Times:        cfg.BatchSchedule,
			RunOnStartup: cfg.BatchRunOnStartup,
			LockTTL:      cfg.BatchLockTTL,
		})
		if err != nil {
			closeAll()
			return nil, err
		}
	}

	if cfg.OutboxEnabled {
		a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: st.outbox,
			Publisher:  eventpublisher.NewLogPublisher(log),
			Clock:      clock,
			Metrics:    m,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  7 * 24 * time.Hour,
		})
	}

	return a, nil
}
