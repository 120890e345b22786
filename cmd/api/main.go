package main

import (
	"context"
	"expvar"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"paygate/internal/db"
	"paygate/internal/domain/storage"
	"paygate/internal/logging"
	"paygate/internal/payments"
	"paygate/internal/ratelimiter"
	"paygate/internal/reconcile"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "1.0.0"

//	@title			Paygate API
//	@description	Paystack payment initialization, verification and transaction lookup.

//	@BasePath					/v1
//	@securityDefinitions.basic	BasicAuth

func main() {
	if err := serve(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serve wires the service and blocks until it has shut down. Cleanup runs
// through defers, so main only exits non-zero on a real error.
func serve() error {
	logger, err := logging.New()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Infow("no .env file loaded, using process environment", "error", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.db, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.paystack.secretKey == "" {
		logger.Warn("PAYSTACK_SECRET_KEY is not set; every provider call will fail")
	}
	gateway := payments.NewPaystack(payments.PaystackConfig{
		SecretKey: cfg.paystack.secretKey,
		BaseURL:   cfg.paystack.baseURL,
		Timeout:   cfg.paystack.timeout,
	}, logger)

	app := &application{
		config:       cfg,
		store:        store,
		logger:       logger,
		gateway:      gateway,
		reconciler:   reconcile.NewService(gateway, store.Transactions, logger),
		rateLimiter:  ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame),
		newReference: uuid.NewString,
	}

	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	if cfg.reconcile.interval > 0 {
		// the store must outlive the sweep
		sweepDone := app.reconcilePendingEvery(ctx, cfg.reconcile.interval)
		defer func() {
			stop()
			<-sweepDone
		}()
	}

	err = app.run(ctx, app.mount())
	if err != nil {
		logger.Errorw("server stopped with error", "error", err)
	}
	return err
}

// openStore connects to Postgres and applies the schema, or falls back to the
// in-memory store when DB_ADDR is empty.
func openStore(ctx context.Context, cfg dbConfig, logger *zap.SugaredLogger) (*storage.Container, func(), error) {
	if cfg.addr == "" {
		logger.Warn("DB_ADDR is not set; transactions are kept in memory only")
		return storage.NewMemoryContainer(), func() {}, nil
	}

	pool, err := db.New(ctx, db.Config{
		Addr:        cfg.addr,
		MaxConns:    cfg.maxConns,
		MaxIdleTime: cfg.maxIdleTime,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connection pool established")

	store := storage.NewContainer(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]int64{
			"total_conns":    int64(s.TotalConns()),
			"idle_conns":     int64(s.IdleConns()),
			"acquired_conns": int64(s.AcquiredConns()),
			"acquire_count":  s.AcquireCount(),
		}
	}))

	return store, pool.Close, nil
}
