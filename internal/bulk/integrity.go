package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// pendingQuery reports the integrity state of every table in a schema.
const pendingQuery = `
SELECT c.relname::text,
       ARRAY(SELECT k.conname::text
             FROM pg_constraint k
             WHERE k.conrelid = c.oid AND NOT k.convalidated
             ORDER BY k.conname),
       EXISTS(SELECT 1 FROM pg_trigger g WHERE g.tgrelid = c.oid AND g.tgenabled = 'D'),
       c.relpersistence = 'u'
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1
  AND c.relkind IN ('r', 'p')
ORDER BY c.relname`

// PendingTables returns the tables of schema that are pending integrity.
func PendingTables(ctx context.Context, session benchload.DBSession, schema string) ([]benchload.PendingTable, error) {
	rows, err := session.Query(ctx, pendingQuery, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []benchload.PendingTable
	for rows.Next() {
		var t benchload.PendingTable
		if err := rows.Scan(&t.Name, &t.UncheckedConstraints, &t.TriggersDisabled, &t.Unlogged); err != nil {
			return nil, err
		}
		if t.IsPending() {
			pending = append(pending, t)
		}
	}
	return pending, rows.Err()
}

// RepairScript returns one script that brings every pending table back to a
// checked state. Tables that are not pending contribute nothing.
func RepairScript(schema string, tables []benchload.PendingTable) string {
	var b strings.Builder
	for _, t := range tables {
		if !t.IsPending() {
			continue
		}
		target := qualifiedName(schema, t.Name)

		var actions []string
		if t.TriggersDisabled {
			actions = append(actions, "ENABLE TRIGGER ALL")
		}
		for _, c := range t.UncheckedConstraints {
			actions = append(actions, "VALIDATE CONSTRAINT "+quoteIdent(c))
		}
		if len(actions) > 0 {
			fmt.Fprintf(&b, "ALTER TABLE %s %s;\n", target, strings.Join(actions, ", "))
		}
		if t.Unlogged {
			fmt.Fprintf(&b, "ALTER TABLE %s SET LOGGED;\n", target)
		}
	}
	return b.String()
}

// Repair detects the pending tables of schema and checks all of them in one
// script. It returns the repaired table names, in catalog order.
func Repair(ctx context.Context, session benchload.DBSession, schema string) ([]string, error) {
	pending, err := PendingTables(ctx, session, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pending tables of %s: %w (loaded tables may be unusable until checked)",
			benchload.ErrIntegrityCheckFailed, schema, err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	names := make([]string, len(pending))
	for i, t := range pending {
		names[i] = t.Name
	}

	if _, err := session.Exec(ctx, RepairScript(schema, pending)); err != nil {
		return nil, fmt.Errorf("%w: checking %s: %w (loaded tables may be unusable until checked)",
			benchload.ErrIntegrityCheckFailed, strings.Join(names, ", "), err)
	}
	return names, nil
}
