package db

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// Session adapts one acquired pool connection to benchload.DBSession.
// Session state such as search_path and open transactions lives on that
// connection, so every statement of a run goes through the same Session.
//
// Not safe for concurrent use.
type Session struct {
	conn *pgxpool.Conn
}

func NewSession(conn *pgxpool.Conn) *Session {
	return &Session{conn: conn}
}

// Exec runs sql. Without arguments pgx uses the simple protocol, so sql may
// hold several statements.
func (s *Session) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.conn.Exec(ctx, sql, args...)
}

func (s *Session) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.conn.Query(ctx, sql, args...)
}

// CopyFrom streams r to a COPY ... FROM STDIN statement.
func (s *Session) CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error) {
	return s.conn.Conn().PgConn().CopyFrom(ctx, r, sql)
}

// Release returns the connection to the pool.
func (s *Session) Release() {
	s.conn.Release()
}

var _ benchload.DBSession = (*Session)(nil)
