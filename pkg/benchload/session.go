package benchload

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBSession is the single dedicated connection a load run executes on.
// Transactions are driven with explicit BEGIN/COMMIT statements, so every
// statement of a run must go through the same DBSession.
//
// Thread-Safety: NOT safe for concurrent use.
type DBSession interface {
	// Exec executes SQL without returning rows. Without arguments the simple
	// protocol is used and the SQL may contain several statements.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Query executes SQL that returns rows. The caller must close the rows.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// CopyFrom streams r to the server as the input of a COPY ... FROM STDIN statement.
	CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error)
}
