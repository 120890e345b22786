package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"paygate/internal/db"
	"paygate/internal/domain/storage"
	"paygate/internal/logging"
	"paygate/internal/payments"
	"paygate/internal/reconcile"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "1.0.0"

// deps is everything a subcommand needs; built lazily so --help works
// without a database.
type deps struct {
	store   *storage.Container
	service *reconcile.Service
	logger  *zap.SugaredLogger
	close   func()
}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "reconcile",
		Short:        "Re-run Paystack verification against stored transactions",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Minute, "overall deadline for the command")

	rootCmd.AddCommand(verifyCmd(openDeps))
	rootCmd.AddCommand(pendingCmd(openDeps))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDeps(ctx context.Context) (*deps, error) {
	sugar, err := logging.New()
	if err != nil {
		return nil, err
	}

	addr := os.Getenv("DB_ADDR")
	if addr == "" {
		return nil, fmt.Errorf("DB_ADDR is required")
	}
	secret := os.Getenv("PAYSTACK_SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("PAYSTACK_SECRET_KEY is required")
	}

	pool, err := db.New(ctx, db.Config{Addr: addr, MaxConns: 4})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	store := storage.NewContainer(pool)

	gateway := payments.NewPaystack(payments.PaystackConfig{
		SecretKey: secret,
		BaseURL:   os.Getenv("PAYSTACK_BASE_URL"),
	}, sugar)

	return &deps{
		store:   store,
		service: reconcile.NewService(gateway, store.Transactions, sugar),
		logger:  sugar,
		close: func() {
			pool.Close()
			_ = sugar.Sync()
		},
	}, nil
}
