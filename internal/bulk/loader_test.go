package bulk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/vvka-141/benchload/internal/testing"
	"github.com/vvka-141/benchload/pkg/benchload"
)

func foreignKeyRows(rows ...[]any) func(string, []any) ([][]any, error) {
	return func(sql string, args []any) ([][]any, error) {
		if strings.Contains(sql, "pg_constraint") {
			return rows, nil
		}
		return nil, nil
	}
}

func TestLoad_StatementOrder(t *testing.T) {
	session := &testhelpers.FakeSession{
		QueryRows: foreignKeyRows(
			[]any{"orders", "orders_customer_fk", "FOREIGN KEY (customer_id) REFERENCES customer(id)", true, false},
		),
	}

	rows, err := Load(context.Background(), session, "BENCH", "orders",
		strings.NewReader("1,10\n2,20\n"), benchload.CSVOptions{})

	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.Equal(t, []string{
		"BEGIN",
		foreignKeysQuery,
		`ALTER TABLE orders DROP CONSTRAINT "orders_customer_fk", ADD CONSTRAINT "orders_customer_fk" FOREIGN KEY (customer_id) REFERENCES customer(id) NOT VALID`,
		`ALTER TABLE "BENCH"."orders" DISABLE TRIGGER ALL`,
		`TRUNCATE ONLY "BENCH"."orders"`,
		`COPY "BENCH"."orders" FROM STDIN WITH (FORMAT csv)`,
		"COMMIT",
	}, session.Statements)
}

func TestLoad_ReferencedTableIsDeleted(t *testing.T) {
	session := &testhelpers.FakeSession{
		QueryRows: foreignKeyRows(
			[]any{"orders", "orders_customer_fk", "FOREIGN KEY (customer_id) REFERENCES customer(id)", false, true},
		),
	}

	_, err := Load(context.Background(), session, "BENCH", "customer", strings.NewReader("1\n"), benchload.CSVOptions{})

	require.NoError(t, err)
	assert.Len(t, session.ExecsContaining("DELETE FROM ONLY \"BENCH\".\"customer\""), 1)
	assert.Empty(t, session.ExecsContaining("TRUNCATE"))
	assert.Empty(t, session.ExecsContaining("DROP CONSTRAINT"), "already unvalidated keys are left alone")
}

func TestLoad_HeaderGoesToServer(t *testing.T) {
	session := &testhelpers.FakeSession{}

	_, err := Load(context.Background(), session, "BENCH", "orders",
		strings.NewReader("id\n1\n"), benchload.CSVOptions{Header: true, Delimiter: ';'})

	require.NoError(t, err)
	require.Len(t, session.Copies, 1)
	assert.Equal(t, `COPY "BENCH"."orders" FROM STDIN WITH (FORMAT csv, DELIMITER ';', HEADER true)`, session.Copies[0].SQL)
	assert.Equal(t, "id\n1\n", session.Copies[0].Data)
}

func TestLoad_InsufficientPrivilegeHint(t *testing.T) {
	session := &testhelpers.FakeSession{
		ExecErr: func(sql string) error {
			if strings.Contains(sql, "DISABLE TRIGGER") {
				return &pgconn.PgError{Code: "42501", Message: `permission denied: "RI_ConstraintTrigger" is a system trigger`}
			}
			return nil
		},
	}

	_, err := Load(context.Background(), session, "BENCH", "orders", strings.NewReader("1\n"), benchload.CSVOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, benchload.ErrLoadFailed))
	assert.Contains(t, err.Error(), "without --load")
	assert.Equal(t, "ROLLBACK", session.Execs[len(session.Execs)-1])
	assert.Empty(t, session.Copies)
}

func TestLoad_CopyFailureRollsBack(t *testing.T) {
	session := &testhelpers.FakeSession{
		CopyErr: func(sql, data string) error { return errors.New("extra data after last expected column") },
	}

	_, err := Load(context.Background(), session, "BENCH", "orders", strings.NewReader("1,2,3\n"), benchload.CSVOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders")
	assert.Equal(t, "ROLLBACK", session.Execs[len(session.Execs)-1])
	assert.Empty(t, session.ExecsContaining("COMMIT"))
}

func TestLoad_BeginFailure(t *testing.T) {
	session := &testhelpers.FakeSession{
		ExecErr: func(sql string) error {
			if sql == "BEGIN" {
				return errors.New("conn closed")
			}
			return nil
		},
	}

	_, err := Load(context.Background(), session, "BENCH", "orders", strings.NewReader("1\n"), benchload.CSVOptions{})

	require.Error(t, err)
	assert.Equal(t, []string{"BEGIN"}, session.Execs, "nothing to roll back")
}
