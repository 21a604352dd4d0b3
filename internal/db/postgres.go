package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

// DefaultConnectAttempts is how many times Open tries to reach Postgres before giving up.
const DefaultConnectAttempts = 5

// DBTX is the subset of *pgxpool.Pool used by repositories. pgxmock.PgxPoolIface satisfies it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Open opens a Postgres pool using the given DSN and pings it, retrying with backoff
// while the server is unreachable. Caller must call Close when done.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return OpenWithAttempts(ctx, dsn, DefaultConnectAttempts)
}

// OpenWithAttempts is Open with an explicit attempt budget (minimum 1).
func OpenWithAttempts(ctx context.Context, dsn string, attempts int) (*pgxpool.Pool, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("db: DATABASE_URL is not set")
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if attempts < 1 {
		attempts = 1
	}

	var pool *pgxpool.Pool
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			log.Warn().Err(err).Msg("db: ping failed, retrying")
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// InTx runs fn inside a transaction, committing when fn returns nil and rolling back otherwise.
func InTx(ctx context.Context, db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
