package tui

import (
	"io"
	"sync"
	"time"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// LogProgress reports progress through a logger, one line per event.
// Batch commits are verbose-only.
type LogProgress struct {
	logger benchload.Logger

	mu      sync.Mutex
	started time.Time
}

func NewLogProgress(logger benchload.Logger) *LogProgress {
	return &LogProgress{logger: logger}
}

func (p *LogProgress) TableStarted(table string, index, total int) {
	p.mu.Lock()
	p.started = time.Now()
	p.mu.Unlock()
	p.logger.Info("[%d/%d] Loading %s", index+1, total, table)
}

func (p *LogProgress) RowsCommitted(table string, rows int64) {
	p.logger.Verbose("%s: %s rows committed", table, FormatRows(rows))
}

func (p *LogProgress) TableFinished(table string, rows int64) {
	p.mu.Lock()
	elapsed := time.Since(p.started)
	p.mu.Unlock()
	p.logger.Info("%s %s: %s rows in %s", SymbolCheck, table, FormatRows(rows), FormatElapsed(elapsed))
}

// TableFailed only logs verbosely; the error itself is reported by the caller.
func (p *LogProgress) TableFailed(table string, err error) {
	p.logger.Verbose("%s %s failed: %v", SymbolCross, table, err)
}

func (p *LogProgress) Stop() {}

// NewProgress returns a live display on stderr when running interactively
// and a logger-backed reporter otherwise.
func NewProgress(logger benchload.Logger, out io.Writer) benchload.Progress {
	if IsInteractive() {
		return NewTerminalProgress(out)
	}
	return NewLogProgress(logger)
}

var _ benchload.Progress = (*LogProgress)(nil)
