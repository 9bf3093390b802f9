package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the querying surface shared by *pgxpool.Pool and pgx.Tx.
// Repository methods take a DBTX so the same SQL runs either directly on
// the pool or inside the caller's transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is a transaction handle. pgx.Tx satisfies it directly.
type Tx interface {
	DBTX
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is what services hold: plain queries plus the ability to open the
// single transaction each operation runs in.
type Conn interface {
	DBTX
	Begin(ctx context.Context) (Tx, error)
}

type poolConn struct {
	*pgxpool.Pool
}

func (p poolConn) Begin(ctx context.Context) (Tx, error) {
	return p.Pool.Begin(ctx)
}

// NewConn wraps a pgxpool.Pool as a Conn.
func NewConn(pool *pgxpool.Pool) Conn {
	return poolConn{pool}
}
