package benchload

// Progress receives per-table progress events from a load run.
// Events arrive sequentially from the goroutine running the load.
type Progress interface {
	// TableStarted is called before a table's CSV file is read.
	// index is zero-based; total is the number of tables in the run.
	TableStarted(table string, index, total int)

	// RowsCommitted is called after each committed import batch with the
	// running row count for the table.
	RowsCommitted(table string, rows int64)

	// TableFinished is called after a table's data is committed.
	TableFinished(table string, rows int64)

	// TableFailed is called when a table fails; no further events follow.
	TableFailed(table string, err error)

	// Stop releases the reporter. It is safe to call more than once.
	Stop()
}
