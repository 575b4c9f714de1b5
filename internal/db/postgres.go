package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

var (
	newPool = func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
		return pgxpool.New(ctx, dsn)
	}
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// InitPostgres connects the global pool. A missing DSN leaves Pool nil
// and the service runs without candle persistence.
func InitPostgres(ctx context.Context, dsn string) {
	if dsn == "" {
		log.Println("DATABASE_URL not set, skipping Postgres connection")
		return
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to create Postgres pool: %v", err)
	}
	if err := pingPool(ctx, pool); err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}

	Pool = pool
	log.Println("Connected to Postgres")
}
