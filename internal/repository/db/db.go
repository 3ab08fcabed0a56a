package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, letting the same
// *Queries run against the pool for reads and against a transaction for
// multi-statement writes (see trm-service's qtx := db.New(tx) convention).
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Queries is the concrete, pgx-backed implementation of Querier.
type Queries struct {
	db DBTX
}

// New builds a Queries bound to dbtx — a pool for standalone calls, or a
// transaction when the caller needs several statements to commit atomically.
func New(dbtx DBTX) *Queries {
	return &Queries{db: dbtx}
}

var _ Querier = (*Queries)(nil)
