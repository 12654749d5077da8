package bulk

import (
	"context"
	"fmt"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// CreateSchema creates schema. An existing schema is not an error; created
// reports which case occurred. Only SQLSTATE 42P06 counts as "exists".
func CreateSchema(ctx context.Context, session benchload.DBSession, schema string) (created bool, err error) {
	_, err = session.Exec(ctx, "CREATE SCHEMA "+quoteIdent(schema))
	if err == nil {
		return true, nil
	}
	if hasCode(err, pgCodeDuplicateSchema) {
		return false, nil
	}
	return false, fmt.Errorf("%w: create schema %s: %w", benchload.ErrSchemaFailed, schema, err)
}

// SetSearchPath makes schema the session's active schema.
func SetSearchPath(ctx context.Context, session benchload.DBSession, schema string) error {
	if _, err := session.Exec(ctx, "SET search_path TO "+quoteIdent(schema)); err != nil {
		return fmt.Errorf("%w: set search_path to %s: %w", benchload.ErrSchemaFailed, schema, err)
	}
	return nil
}
