package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brewvote/server/internal/config"
	"github.com/brewvote/server/internal/domain/access"
	"github.com/brewvote/server/internal/domain/events"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/brewvote/server/internal/domain/voters"
	"github.com/brewvote/server/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Open creates a connection pool and verifies it with a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MaxIdle > 0 && int32(cfg.MaxIdle) <= poolCfg.MaxConns {
		poolCfg.MinConns = int32(cfg.MaxIdle)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// queryer is satisfied by *pgxpool.Pool and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// observe records query metrics; use with a named error result:
//
//	defer observe("voters.get", time.Now(), &err)
func observe(operation string, start time.Time, err *error) {
	if isNotFound(*err) {
		metrics.RecordQuery(operation, start, nil)
		return
	}
	metrics.RecordQuery(operation, start, *err)
}

func isNotFound(err error) bool {
	return errors.Is(err, shortcodes.ErrNotFound) ||
		errors.Is(err, voters.ErrNotFound) ||
		errors.Is(err, access.ErrNotFound) ||
		errors.Is(err, events.ErrNotFound) ||
		errors.Is(err, events.ErrAlreadyAssigned)
}
