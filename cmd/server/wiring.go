package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/splitledger/internal/adapter/http"
	"github.com/iho/splitledger/internal/adapter/http/handler"
	"github.com/iho/splitledger/internal/adapter/http/middleware"
	"github.com/iho/splitledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/splitledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/splitledger/internal/adapter/repository/redis"
	"github.com/iho/splitledger/internal/adapter/repository/sqlite"
	"github.com/iho/splitledger/internal/infrastructure/auth"
	"github.com/iho/splitledger/internal/infrastructure/config"
	"github.com/iho/splitledger/internal/infrastructure/eventpublisher"
	"github.com/iho/splitledger/internal/infrastructure/idgen"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
	"github.com/iho/splitledger/internal/infrastructure/postgres"
	"github.com/iho/splitledger/internal/infrastructure/redis"
	"github.com/iho/splitledger/internal/usecase"
)

type userDirectory interface {
	usecase.UserDirectory
	middleware.UserRegistrar
}

// storage groups the repositories of one storage driver.
type storage struct {
	tx          usecase.TransactionManager
	expenses    usecase.ExpenseRepository
	shares      usecase.ShareRepository
	settlements usecase.SettlementRepository
	ledger      usecase.LedgerRepository
	outbox      usecase.OutboxRepository
	users       userDirectory
	retrier     usecase.Retrier
	ping        handler.HealthCheck
	close       func()

	// shared is set when several processes may serve the same database;
	// in-process caches and locks would then diverge between them.
	shared      bool
	idempotency *postgresRepo.IdempotencyStore
}

// coordination holds the cache, lock and idempotency backends.
type coordination struct {
	cache       usecase.BalanceCache
	locker      usecase.Locker
	idempotency usecase.IdempotencyStore
	ping        handler.HealthCheck
	purge       func(context.Context) error
	close       func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		defer cancel()

		pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info().Msg("connected to postgres")

		return &storage{
			tx:          postgresRepo.NewTxManager(pool),
			expenses:    postgresRepo.NewExpenseRepository(pool),
			shares:      postgresRepo.NewShareRepository(pool),
			settlements: postgresRepo.NewSettlementRepository(pool),
			ledger:      postgresRepo.NewLedgerRepository(pool),
			outbox:      postgresRepo.NewOutboxRepository(pool),
			users:       postgresRepo.NewUserDirectory(pool),
			retrier:     postgresRepo.NewRetrier(logger, m),
			ping:        pool.Ping,
			close:       pool.Close,
			shared:      true,
			idempotency: postgresRepo.NewIdempotencyStore(pool),
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite database")

		return &storage{
			tx:          sqlite.NewTxManager(db),
			expenses:    sqlite.NewExpenseRepository(db),
			shares:      sqlite.NewShareRepository(db),
			settlements: sqlite.NewSettlementRepository(db),
			ledger:      sqlite.NewLedgerRepository(db),
			outbox:      sqlite.NewOutboxRepository(db),
			users:       sqlite.NewUserDirectory(db),
			ping:        db.PingContext,
			close:       func() { _ = db.Close() },
		}, nil

	case config.DriverMemory:
		store := memory.NewStore()
		logger.Warn().Msg("using in-memory storage; data is lost on restart")

		return &storage{
			tx:          memory.NewTxManager(store),
			expenses:    memory.NewExpenseRepository(store),
			shares:      memory.NewShareRepository(store),
			settlements: memory.NewSettlementRepository(store),
			ledger:      memory.NewLedgerRepository(store),
			outbox:      memory.NewOutboxRepository(store),
			users:       memory.NewUserDirectory(store),
			close:       func() {},
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.StorageDriver)
}

func openCoordination(ctx context.Context, cfg *config.Config, st *storage, logger zerolog.Logger) (*coordination, error) {
	if !cfg.RedisEnabled && st.shared {
		// no balance cache and no advisory lock; the row locks keep settlements serial
		logger.Warn().Msg("redis disabled; serving balances uncached with database-backed idempotency")
		return &coordination{
			idempotency: st.idempotency,
			purge:       st.idempotency.Purge,
			close:       func() {},
		}, nil
	}

	if !cfg.RedisEnabled {
		return &coordination{
			cache:       memory.NewBalanceCache(cfg.BalanceCacheTTL),
			locker:      memory.NewLocker(),
			idempotency: memory.NewIdempotencyStore(),
			close:       func() {},
		}, nil
	}

	client, err := redis.NewClientWithOptions(ctx, cfg.RedisURL, redis.ClientOptions{
		PoolSize:    cfg.RedisPoolSize,
		DialTimeout: cfg.RedisDialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info().Msg("connected to redis")

	lockOpts := redisRepo.DefaultLockOptions()
	if cfg.SettleLockExpiry > 0 {
		lockOpts.Expiry = cfg.SettleLockExpiry
	}

	return &coordination{
		cache:       redisRepo.NewBalanceCache(client, cfg.BalanceCacheTTL),
		locker:      redisRepo.NewSettleLocker(client, lockOpts, logger),
		idempotency: redisRepo.NewIdempotencyStore(client),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		close: func() { _ = client.Close() },
	}, nil
}

// openPublisher returns the outbox sink and a func releasing it.
func openPublisher(cfg *config.Config, logger zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	if cfg.AMQPURL == "" {
		return eventpublisher.NewLogPublisher(logger), func() {}, nil
	}

	pub, err := eventpublisher.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("exchange", cfg.AMQPExchange).Msg("connected to message broker")

	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close broker connection")
		}
	}, nil
}

func newTokenVerifier(cfg *config.Config) middleware.TokenVerifier {
	if !cfg.AuthEnabled {
		return nil
	}
	return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
}

// newRouter assembles the use cases and the HTTP surface over st and co.
func newRouter(cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics, st *storage, co *coordination, limiter *middleware.RateLimiter) http.Handler {
	opts := usecase.Options{
		Retrier: st.retrier,
		Locker:  co.locker,
		Cache:   co.cache,
		Metrics: m,
		Logger:  &logger,
	}
	ids := idgen.NewULIDGenerator()

	expenseUC := usecase.NewExpenseUseCase(st.tx, st.expenses, st.shares, st.outbox, ids, cfg.Currency, opts)
	settlementUC := usecase.NewSettlementUseCase(st.tx, st.shares, st.settlements, st.outbox, ids, cfg.Currency, opts)
	balanceUC := usecase.NewBalanceUseCase(st.shares, st.users, opts)
	ledgerUC := usecase.NewLedgerUseCase(expenseUC, settlementUC, balanceUC)
	reconUC := usecase.NewReconciliationUseCase(st.ledger)

	checks := map[string]handler.HealthCheck{}
	if st.ping != nil {
		checks["database"] = st.ping
	}
	if co.ping != nil {
		checks["redis"] = co.ping
	}

	return httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ExpenseHandler:    handler.NewExpenseHandler(ledgerUC),
		SettlementHandler: handler.NewSettlementHandler(ledgerUC),
		LedgerHandler:     handler.NewLedgerHandler(reconUC, cfg.LedgerOperators),
		HealthHandler:     handler.NewHealthHandler(checks),
		Authenticator:     middleware.NewAuthenticator(newTokenVerifier(cfg), st.users, logger),
		IdempotencyStore:  co.idempotency,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		RateLimiter:       limiter,
		Metrics:           m,
		Logger:            logger,
	})
}
