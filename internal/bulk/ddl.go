package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// ApplyDDL executes script as-is in one round trip. The server runs it as a
// single implicit transaction, so a failure leaves no partial DDL behind.
// name identifies the script in error messages.
func ApplyDDL(ctx context.Context, session benchload.DBSession, name, script string) error {
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("%w: %s is empty", benchload.ErrDDLFailed, name)
	}

	if _, err := session.Exec(ctx, script); err != nil {
		return fmt.Errorf("%w: %s", benchload.ErrDDLFailed, describeScriptError(err, name, script))
	}
	return nil
}

// describeScriptError locates a server error in script using the error
// position and returns an error naming the line.
func describeScriptError(err error, name, script string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Position <= 0 {
		return fmt.Errorf("%s: %w", name, err)
	}

	line, text := lineAt(script, int(pgErr.Position))
	if line == 0 {
		return fmt.Errorf("%s: %w", name, err)
	}
	return fmt.Errorf("%s line %d: %w\n  > %s", name, line, err, preview(text))
}

// lineAt returns the 1-based line number and text of the character at the
// 1-based character position pos. It returns 0 when pos is out of range.
func lineAt(script string, pos int) (int, string) {
	line, start, chars := 1, 0, 0
	for i, r := range script {
		chars++
		if chars == pos {
			end := strings.IndexByte(script[i:], '\n')
			if end < 0 {
				end = len(script)
			} else {
				end += i
			}
			return line, strings.TrimRight(script[start:end], "\r")
		}
		if r == '\n' {
			line++
			start = i + 1
		}
	}
	return 0, ""
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > benchload.MaxErrorPreviewLength {
		return s[:benchload.MaxErrorPreviewLength] + "..."
	}
	return s
}
