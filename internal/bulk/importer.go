package bulk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// ImportOptions controls an Import.
type ImportOptions struct {
	CSV benchload.CSVOptions

	// BatchSize is the number of records per committed batch. Zero means
	// benchload.ImportCommitCount.
	BatchSize int

	// OnCommit is called after each committed batch with the running total
	// of rows in the table.
	OnCommit func(rows int64)
}

// Import appends the CSV records read from r to schema.table. Every batch is
// sent as its own COPY statement, which the server commits on completion, so
// a failure keeps all earlier batches. It returns the number of rows
// committed.
func Import(ctx context.Context, session benchload.DBSession, schema, table string, r io.Reader, opts ImportOptions) (int64, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = benchload.ImportCommitCount
	}

	target := qualifiedName(schema, table)
	stmt := copyStatement(target, opts.CSV, false)
	records := newRecordReader(r)

	if opts.CSV.Header {
		var discard bytes.Buffer
		if err := records.appendNext(&discard); err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: %s: reading header: %w", benchload.ErrLoadFailed, table, err)
		}
	}

	var (
		batch     bytes.Buffer
		inBatch   int
		committed int64
	)

	flush := func() error {
		if inBatch == 0 {
			return nil
		}
		first := committed + 1
		tag, err := session.CopyFrom(ctx, &batch, stmt)
		if err != nil {
			return fmt.Errorf("%w: %s: batch of rows %d-%d: %w", benchload.ErrLoadFailed, table, first, committed+int64(inBatch), err)
		}
		committed += tag.RowsAffected()
		batch.Reset()
		inBatch = 0
		if opts.OnCommit != nil {
			opts.OnCommit(committed)
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return committed, err
		}

		err := records.appendNext(&batch)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return committed, fmt.Errorf("%w: %s: %w", benchload.ErrLoadFailed, table, err)
		}

		inBatch++
		if inBatch == batchSize {
			if err := flush(); err != nil {
				return committed, err
			}
		}
	}

	if err := flush(); err != nil {
		return committed, err
	}
	return committed, nil
}
