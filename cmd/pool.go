package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// dbPool creates a pgxpool.Pool from cfg.Store and verifies connectivity.
func dbPool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := cfg.Store.DatabaseURL
	if dsn == "" {
		return nil, eris.New("store: no database_url configured (set store.database_url or DATAPULSE_STORE_DATABASE_URL)")
	}

	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse database url")
	}
	if cfg.Store.MaxConns > 0 {
		pc.MaxConns = cfg.Store.MaxConns
	}
	if cfg.Store.MinConns > 0 {
		pc.MinConns = cfg.Store.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, eris.Wrap(err, "store: create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping database")
	}

	fmt.Println("Connected to database")
	return pool, nil
}
