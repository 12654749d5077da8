package bulk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// PostgreSQL error codes inspected by this package.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeDuplicateSchema       = "42P06"
	pgCodeInsufficientPrivilege = "42501"
)

// hasCode reports whether err carries the given SQLSTATE.
func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// qualifiedName returns "schema"."table".
func qualifiedName(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

// copyStatement returns the COPY ... FROM STDIN statement for target.
func copyStatement(target string, opts benchload.CSVOptions, header bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "COPY %s FROM STDIN WITH (FORMAT csv", target)
	if d := opts.Comma(); d != ',' {
		fmt.Fprintf(&b, ", DELIMITER %s", quoteLiteral(string(d)))
	}
	if header {
		b.WriteString(", HEADER true")
	}
	b.WriteString(")")
	return b.String()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
