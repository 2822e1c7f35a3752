package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/crypto"
	"github.com/teresa-solution/firm-management-service/internal/logger"
	"github.com/teresa-solution/firm-management-service/internal/monitoring"
)

// DefaultCallTimeout bounds every store call unless configured otherwise.
const DefaultCallTimeout = 5 * time.Second

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// rowScanner is implemented by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Store is the tenant-scoped data access layer. Every method takes the
// tenant id explicitly; rows of other tenants are never returned and never
// modified.
type Store struct {
	pool    *pgxpool.Pool
	cipher  *crypto.Cipher
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

func New(pool *pgxpool.Pool, cipher *crypto.Cipher, callTimeout time.Duration) *Store {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Store{
		pool:    pool,
		cipher:  cipher,
		timeout: callTimeout,
		now:     time.Now,
		log:     logger.WithComponent("store"),
	}
}

// Connect opens a pgx pool against dsn and verifies it answers.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.run(ctx, "ping", func(ctx context.Context) error {
		return s.pool.Ping(ctx)
	})
}

func (s *Store) Close() {
	s.pool.Close()
}

// run executes fn under the call timeout, maps its error into an apperr kind
// and records the call latency.
func (s *Store) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := mapErr(op, fn(ctx))
	kind := "ok"
	if err != nil {
		kind = string(apperr.KindOf(err))
	}
	monitoring.StoreCallDuration.WithLabelValues(op, kind).Observe(time.Since(start).Seconds())
	if kind == string(apperr.KindInternal) {
		s.log.Error().Err(err).Str("op", op).Msg("store call failed")
	}
	return err
}

// inTx runs fn inside a transaction under the call timeout. The transaction
// commits only when fn returns nil.
func (s *Store) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return s.run(ctx, op, func(ctx context.Context) error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		if err := fn(ctx, tx); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

func (s *Store) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
