package bulk

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// foreignKeysQuery lists the foreign keys on either side of a table.
// incoming is true for keys declared on other tables that reference it.
const foreignKeysQuery = `
SELECT conrelid::regclass::text,
       conname::text,
       pg_get_constraintdef(oid),
       convalidated,
       (confrelid = $1::regclass AND conrelid <> confrelid)
FROM pg_constraint
WHERE contype = 'f'
  AND (conrelid = $1::regclass OR confrelid = $1::regclass)
ORDER BY 1, 2`

type foreignKey struct {
	owner      string
	name       string
	definition string
	validated  bool
	incoming   bool
}

// Load replaces the contents of schema.table with the CSV read from r in one
// transaction. Foreign keys touching the table are re-declared NOT VALID and
// all triggers on it are disabled, so the table is left pending integrity
// until Repair runs. Disabling system triggers needs superuser.
func Load(ctx context.Context, session benchload.DBSession, schema, table string, r io.Reader, opts benchload.CSVOptions) (int64, error) {
	target := qualifiedName(schema, table)

	if _, err := session.Exec(ctx, "BEGIN"); err != nil {
		return 0, fmt.Errorf("%w: %s: begin: %w", benchload.ErrLoadFailed, table, err)
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = session.Exec(context.WithoutCancel(ctx), "ROLLBACK")
		}
	}()

	keys, err := foreignKeys(ctx, session, target)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: reading foreign keys: %w", benchload.ErrLoadFailed, table, err)
	}

	referenced := false
	for _, fk := range keys {
		if fk.incoming {
			referenced = true
		}
		if !fk.validated {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s, ADD CONSTRAINT %s %s NOT VALID",
			fk.owner, quoteIdent(fk.name), quoteIdent(fk.name), fk.definition)
		if _, err := session.Exec(ctx, stmt); err != nil {
			return 0, fmt.Errorf("%w: %s: deferring constraint %s: %w", benchload.ErrLoadFailed, table, fk.name, err)
		}
	}

	if _, err := session.Exec(ctx, "ALTER TABLE "+target+" DISABLE TRIGGER ALL"); err != nil {
		if hasCode(err, pgCodeInsufficientPrivilege) {
			return 0, fmt.Errorf("%w: %s: bulk load needs superuser to disable triggers; run without --load to import instead: %w",
				benchload.ErrLoadFailed, table, err)
		}
		return 0, fmt.Errorf("%w: %s: disabling triggers: %w", benchload.ErrLoadFailed, table, err)
	}

	// TRUNCATE refuses tables referenced by a foreign key.
	wipe := "TRUNCATE ONLY " + target
	if referenced {
		wipe = "DELETE FROM ONLY " + target
	}
	if _, err := session.Exec(ctx, wipe); err != nil {
		return 0, fmt.Errorf("%w: %s: clearing existing rows: %w", benchload.ErrLoadFailed, table, err)
	}

	tag, err := session.CopyFrom(ctx, r, copyStatement(target, opts, opts.Header))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", benchload.ErrLoadFailed, table, err)
	}

	if _, err := session.Exec(ctx, "COMMIT"); err != nil {
		return 0, fmt.Errorf("%w: %s: commit: %w", benchload.ErrLoadFailed, table, err)
	}
	committed = true
	return tag.RowsAffected(), nil
}

func foreignKeys(ctx context.Context, session benchload.DBSession, target string) ([]foreignKey, error) {
	rows, err := session.Query(ctx, foreignKeysQuery, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []foreignKey
	for rows.Next() {
		var fk foreignKey
		if err := rows.Scan(&fk.owner, &fk.name, &fk.definition, &fk.validated, &fk.incoming); err != nil {
			return nil, err
		}
		keys = append(keys, fk)
	}
	return keys, rows.Err()
}
