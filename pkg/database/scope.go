package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Scope pins a single pooled connection for the duration of a request so that
// every repository call in that request shares it. Services open transactions
// on the pinned connection and repository statements join the open
// transaction automatically.
type Scope struct {
	Conn *pgxpool.Conn
}

// Close releases the connection back to the pool.
// This MUST be called to avoid leaking connections between requests.
func (s *Scope) Close() {
	if s.Conn == nil {
		return
	}
	s.Conn.Release()
}

// AcquireScope pins a connection from the pool.
// The returned Scope MUST be closed with defer scope.Close().
func (db *DB) AcquireScope(ctx context.Context) (*Scope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Scope{Conn: conn}, nil
}
