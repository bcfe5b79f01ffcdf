package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/dancingpony/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	dialTimeout       = 10 * time.Second
	healthPingTimeout = 2 * time.Second
	firstRetryDelay   = 500 * time.Millisecond
	maxRetryDelay     = 8 * time.Second
)

// DB owns the pgx pool shared by every repository.
type DB struct {
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

// New wraps an existing pool, mainly for tests that build their own.
func New(pool *pgxpool.Pool, logger *slog.Logger) *DB {
	return &DB{Pool: pool, logger: logger}
}

// NewConnection opens the pool and waits for Postgres to answer, retrying
// up to cfg.ConnectAttempts times with a doubling delay.
func NewConnection(cfg *config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	pc, err := buildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := waitForPostgres(pool, cfg.ConnectAttempts, logger); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Name),
		slog.Int("max_conns", int(pc.MaxConns)))

	return New(pool, logger), nil
}

func buildPoolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= pc.MaxConns {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	pc.ConnConfig.ConnectTimeout = dialTimeout
	return pc, nil
}

func waitForPostgres(pool *pgxpool.Pool, attempts int, logger *slog.Logger) error {
	if attempts < 1 {
		attempts = 1
	}

	delay := firstRetryDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		err = pool.Ping(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		logger.Warn("postgres not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", err))
		time.Sleep(delay)
		delay = nextRetryDelay(delay)
	}
	return fmt.Errorf("ping postgres after %d attempts: %w", attempts, err)
}

func nextRetryDelay(d time.Duration) time.Duration {
	return min(d*2, maxRetryDelay)
}

func (db *DB) Close() {
	db.logger.Info("closing postgres pool")
	db.Pool.Close()
}

// HealthCheck pings with a short deadline so /health never hangs.
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}
