package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"paygate/internal/payments"
	"paygate/internal/ratelimiter"
)

type config struct {
	addr        string
	env         string
	apiURL      string
	db          dbConfig
	paystack    paystackConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
	reconcile   reconcileConfig
}

// reconcileConfig drives the background sweep of pending transactions.
// A zero interval disables it.
type reconcileConfig struct {
	interval time.Duration
	batch    int
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type paystackConfig struct {
	secretKey string
	baseURL   string
	timeout   time.Duration
}

type authConfig struct {
	basic basicConfig
}

type basicConfig struct {
	user string
	pass string
}

// loadConfig reads the service configuration from the environment.
func loadConfig() (config, error) {
	maxConns, err := envInt("DB_MAX_CONNS", 10)
	if err != nil {
		return config{}, err
	}
	timeout, err := envDuration("PAYSTACK_TIMEOUT", payments.DefaultPaystackTimeout)
	if err != nil {
		return config{}, err
	}
	requests, err := envInt("RATELIMITER_REQUESTS_COUNT", 200)
	if err != nil {
		return config{}, err
	}
	limiterOn, err := envBool("RATE_LIMITER_ENABLED", false)
	if err != nil {
		return config{}, err
	}
	sweepEvery, err := envDuration("RECONCILE_INTERVAL", 0)
	if err != nil {
		return config{}, err
	}
	sweepBatch, err := envInt("RECONCILE_BATCH", 50)
	if err != nil {
		return config{}, err
	}

	return config{
		addr:   envString("ADDR", ":8080"),
		env:    envString("ENV", "development"),
		apiURL: envString("EXTERNAL_URL", "localhost:8080"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(maxConns),
			maxIdleTime: envString("DB_MAX_IDLE_TIME", "15m"),
		},
		paystack: paystackConfig{
			secretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
			baseURL:   envString("PAYSTACK_BASE_URL", payments.DefaultPaystackBaseURL),
			timeout:   timeout,
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
		},
		rateLimiter: ratelimiter.Config{
			RequestsPerTimeFrame: requests,
			TimeFrame:            5 * time.Second,
			Enabled:              limiterOn,
		},
		reconcile: reconcileConfig{
			interval: sweepEvery,
			batch:    sweepBatch,
		},
	}, nil
}

func envString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
