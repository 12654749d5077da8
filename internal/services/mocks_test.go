package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/benchload/pkg/benchload"
)

type mockConnector struct {
	pool *pgxpool.Pool
	err  error
}

func (m *mockConnector) Connect(_ context.Context) (*pgxpool.Pool, error) {
	return m.pool, m.err
}

type closingConnector struct {
	mockConnector
	closed bool
}

func (c *closingConnector) Close() error {
	c.closed = true
	return nil
}

type mockLogger struct{}

func (m *mockLogger) Verbose(_ string, _ ...interface{}) {}
func (m *mockLogger) Info(_ string, _ ...interface{})    {}
func (m *mockLogger) Error(_ string, _ ...interface{})   {}

// recordingProgress records progress events as strings.
type recordingProgress struct {
	mu      sync.Mutex
	events  []string
	stopped int
}

func (p *recordingProgress) record(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, fmt.Sprintf(format, args...))
}

func (p *recordingProgress) TableStarted(table string, index, total int) {
	p.record("start %s %d/%d", table, index+1, total)
}

func (p *recordingProgress) RowsCommitted(table string, rows int64) {
	p.record("commit %s %d", table, rows)
}

func (p *recordingProgress) TableFinished(table string, rows int64) {
	p.record("finish %s %d", table, rows)
}

func (p *recordingProgress) TableFailed(table string, _ error) {
	p.record("fail %s", table)
}

func (p *recordingProgress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped++
}

var _ benchload.Progress = (*recordingProgress)(nil)
