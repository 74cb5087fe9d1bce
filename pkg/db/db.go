package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trekbooking/pkg/config"
)

// Open builds the API pool from cfg and pings it before returning.
func Open(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pcfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func poolConfig(cfg config.Config) (*pgxpool.Config, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.RuntimeDSN())
	if err != nil {
		return nil, err
	}
	if cfg.DB.SimpleProtocol {
		pcfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
		pcfg.ConnConfig.StatementCacheCapacity = 0
		pcfg.ConnConfig.DescriptionCacheCapacity = 0
	}
	if cfg.DB.MaxConns > 0 {
		pcfg.MaxConns = cfg.DB.MaxConns
	}
	if cfg.DB.MaxConnIdle > 0 {
		pcfg.MaxConnIdleTime = cfg.DB.MaxConnIdle
	}
	if cfg.DB.ApplicationName != "" {
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.DB.ApplicationName
	}
	return pcfg, nil
}

// WithTx runs fn in a transaction. Returning pgx.ErrTxCommitRollback from fn rolls back
// without the caller treating it as a failure (handlers use it after writing a response).
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
