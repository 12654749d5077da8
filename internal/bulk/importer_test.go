package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/vvka-141/benchload/internal/testing"
	"github.com/vvka-141/benchload/pkg/benchload"
)

func csvRows(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d,name-%d\n", i, i)
	}
	return b.String()
}

func TestImport_BatchesOfImportCommitCount(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a 250k row input")
	}
	session := &testhelpers.FakeSession{}
	var commits []int64

	rows, err := Import(context.Background(), session, "BENCH", "orders",
		strings.NewReader(csvRows(250001)),
		ImportOptions{OnCommit: func(n int64) { commits = append(commits, n) }})

	require.NoError(t, err)
	assert.Equal(t, int64(250001), rows)
	require.Len(t, session.Copies, 3)
	assert.Equal(t, 100000, strings.Count(session.Copies[0].Data, "\n"))
	assert.Equal(t, 100000, strings.Count(session.Copies[1].Data, "\n"))
	assert.Equal(t, 1, strings.Count(session.Copies[2].Data, "\n"))
	assert.Equal(t, []int64{100000, 200000, 250001}, commits)
	assert.Empty(t, session.Execs, "COPY batches commit on their own")
}

func TestImport_ExactMultipleHasNoEmptyBatch(t *testing.T) {
	session := &testhelpers.FakeSession{}

	rows, err := Import(context.Background(), session, "BENCH", "orders",
		strings.NewReader(csvRows(6)), ImportOptions{BatchSize: 3})

	require.NoError(t, err)
	assert.Equal(t, int64(6), rows)
	assert.Len(t, session.Copies, 2)
}

func TestImport_Statement(t *testing.T) {
	session := &testhelpers.FakeSession{}

	_, err := Import(context.Background(), session, "BENCH", "Line Item",
		strings.NewReader("1|a\n"), ImportOptions{CSV: benchload.CSVOptions{Delimiter: '|'}})

	require.NoError(t, err)
	require.Len(t, session.Copies, 1)
	assert.Equal(t, `COPY "BENCH"."Line Item" FROM STDIN WITH (FORMAT csv, DELIMITER '|')`, session.Copies[0].SQL)
}

func TestImport_SkipsHeaderLocally(t *testing.T) {
	session := &testhelpers.FakeSession{}

	rows, err := Import(context.Background(), session, "BENCH", "orders",
		strings.NewReader("id,name\n1,a\n2,b\n"),
		ImportOptions{CSV: benchload.CSVOptions{Header: true}, BatchSize: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	require.Len(t, session.Copies, 2)
	assert.Equal(t, "1,a\n", session.Copies[0].Data)
	assert.NotContains(t, session.Copies[0].SQL, "HEADER")
}

func TestImport_EmptyFile(t *testing.T) {
	session := &testhelpers.FakeSession{}

	rows, err := Import(context.Background(), session, "BENCH", "orders", strings.NewReader(""), ImportOptions{})

	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.Empty(t, session.Copies)
}

func TestImport_FailureKeepsEarlierBatches(t *testing.T) {
	calls := 0
	session := &testhelpers.FakeSession{
		CopyErr: func(sql, data string) error {
			calls++
			if calls == 2 {
				return errors.New("invalid input syntax for type integer")
			}
			return nil
		},
	}

	rows, err := Import(context.Background(), session, "BENCH", "orders",
		strings.NewReader(csvRows(5)), ImportOptions{BatchSize: 2})

	require.Error(t, err)
	assert.True(t, errors.Is(err, benchload.ErrLoadFailed))
	assert.Contains(t, err.Error(), "rows 3-4")
	assert.Equal(t, int64(2), rows)
	assert.Len(t, session.Copies, 2, "no batch after the failing one")
}

func TestImport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := &testhelpers.FakeSession{}

	_, err := Import(ctx, session, "BENCH", "orders", strings.NewReader(csvRows(3)), ImportOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, session.Copies)
}
