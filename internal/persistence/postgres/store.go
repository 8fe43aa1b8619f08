// Package postgres implements the domain ledgers on PostgreSQL using pgx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vibe-with-wyn/green-roots/internal/domain"
)

// DBTX is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Connect opens and pings a connection pool.
func Connect(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Store runs ledger operations inside pgx transactions.
type Store struct {
	pool      *pgxpool.Pool
	txOptions pgx.TxOptions
}

// NewStore constructs a Store. Transactions use READ COMMITTED; legacy activity
// claims rely on row locks rather than a stricter isolation level.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, txOptions: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}}
}

// WithinTx implements domain.Store. Panics roll back and are rethrown.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, l domain.Ledgers) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, s.txOptions)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			return
		}
		if cerr := tx.Commit(ctx); cerr != nil {
			err = fmt.Errorf("commit tx: %w", cerr)
		}
	}()

	err = fn(ctx, Ledgers(tx))
	return err
}

// Ledgers binds the three ledgers to db.
func Ledgers(db DBTX) domain.Ledgers {
	return domain.Ledgers{
		Submissions: NewSubmissionLedger(db),
		Activities:  NewActivityLedger(db),
		Users:       NewUserLedger(db),
	}
}
